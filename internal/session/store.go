// Package session holds the signed-in user's token pair.
package session

import (
	"context"
	"sync"
)

// Tokens is the access/refresh token pair issued at login.
type Tokens struct {
	Access  string
	Refresh string
}

// Store defines the interface for token pair storage.
// It is pure storage: refresh and expiry logic live in apiclient.
type Store interface {
	// Tokens returns the current pair. Missing tokens are empty strings.
	Tokens(ctx context.Context) (Tokens, error)

	// SetTokens replaces both tokens.
	SetTokens(ctx context.Context, t Tokens) error

	// SetAccessToken replaces the access token and keeps the refresh token.
	SetAccessToken(ctx context.Context, access string) error

	// Clear removes both tokens.
	Clear(ctx context.Context) error
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the pair in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens Tokens
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Tokens(context.Context) (Tokens, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, nil
}

func (s *MemoryStore) SetTokens(_ context.Context, t Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = t
	return nil
}

func (s *MemoryStore) SetAccessToken(_ context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens.Access = access
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitsync/internal/apiclient"
	"github.com/mmynk/splitsync/internal/middleware"
	"github.com/mmynk/splitsync/internal/session"
)

const testAccess = "access-1"

// ledger is a fake service that counts hits per route pattern.
type ledger struct {
	t    *testing.T
	mux  *http.ServeMux
	mu   sync.Mutex
	hits map[string]int
}

func newLedger(t *testing.T) *ledger {
	return &ledger{t: t, mux: http.NewServeMux(), hits: map[string]int{}}
}

// handle registers h for pattern. Authenticated routes reject any token
// other than testAccess.
func (l *ledger) handle(pattern string, authenticated bool, h http.HandlerFunc) {
	l.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		l.mu.Lock()
		l.hits[pattern]++
		l.mu.Unlock()

		if authenticated && middleware.BearerToken(r.Header.Get("Authorization")) != testAccess {
			writeError(w, http.StatusUnauthorized, "auth.token.invalid", "invalid token")
			return
		}
		h(w, r)
	})
}

func (l *ledger) count(pattern string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hits[pattern]
}

// decodeBody reads a JSON request body into v.
func decodeBody(t *testing.T, r *http.Request, v any) {
	t.Helper()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		t.Errorf("failed to decode request body: %v", err)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": false,
		"error":  map[string]any{"code": code, "message": message},
	})
}

// newTestClient starts the ledger and returns a signed-in Client.
func newTestClient(t *testing.T, l *ledger) (*Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(l.mux)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	require.NoError(t, store.SetTokens(context.Background(), session.Tokens{Access: testAccess, Refresh: "refresh-1"}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api, err := apiclient.New(apiclient.Config{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		Logger:     logger,
		Registerer: prometheus.NewRegistry(),
	}, store)
	require.NoError(t, err)

	return NewClient(api, Options{Logger: logger, Registerer: prometheus.NewRegistry()}), store
}

func TestPath(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{name: "plain", segments: []string{"groups", "g1", "members"}, want: "/groups/g1/members"},
		{name: "slash escaped", segments: []string{"invitations", "a/b"}, want: "/invitations/a%2Fb"},
		{name: "query characters escaped", segments: []string{"invitations", "x?y#z"}, want: "/invitations/x%3Fy%23z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, path(tt.segments...))
		})
	}
	assert.Equal(t, "/groups/g%201/debts", groupPath("g 1", "debts"))
}

func TestPage_Defaults(t *testing.T) {
	p := Page{Offset: -3}.withDefaultLimit(10)
	assert.Equal(t, Page{Limit: 10, Offset: 0}, p)
	assert.Equal(t, "limit=10&offset=0", p.query().Encode())

	p = Page{Limit: 5, Offset: 20}.withDefaultLimit(10)
	assert.Equal(t, Page{Limit: 5, Offset: 20}, p)
}

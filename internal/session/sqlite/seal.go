package sqlite

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealed is returned when a stored token cannot be opened with the
// configured passphrase.
var ErrSealed = errors.New("stored session is sealed with a different passphrase")

const (
	formatPlain  byte = 0
	formatSealed byte = 1

	saltKey = "kdf_salt"
)

// sealer encrypts token values at rest. A nil aead stores plaintext.
type sealer struct {
	aead cipher.AEAD
}

// newSealer derives an XChaCha20-Poly1305 key from passphrase with Argon2id.
// The salt is created on first use and kept in session_meta.
func newSealer(ctx context.Context, db *sql.DB, passphrase string) (*sealer, error) {
	if passphrase == "" {
		return &sealer{}, nil
	}

	salt, err := loadSalt(ctx, db)
	if err != nil {
		return nil, err
	}

	key := argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return &sealer{aead: aead}, nil
}

func loadSalt(ctx context.Context, db *sql.DB) ([]byte, error) {
	var salt []byte
	err := db.QueryRowContext(ctx, "SELECT value FROM session_meta WHERE key = ?", saltKey).Scan(&salt)
	if err == nil {
		return salt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to read salt: %w", err)
	}

	salt = make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO session_meta (key, value) VALUES (?, ?)", saltKey, salt); err != nil {
		return nil, fmt.Errorf("failed to store salt: %w", err)
	}
	return salt, nil
}

func (s *sealer) seal(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	if s.aead == nil {
		return append([]byte{formatPlain}, value...), nil
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := append([]byte{formatSealed}, nonce...)
	return s.aead.Seal(out, nonce, []byte(value), nil), nil
}

func (s *sealer) open(stored []byte) (string, error) {
	if len(stored) == 0 {
		return "", nil
	}

	switch stored[0] {
	case formatPlain:
		return string(stored[1:]), nil
	case formatSealed:
		if s.aead == nil {
			return "", ErrSealed
		}
		body := stored[1:]
		if len(body) < s.aead.NonceSize() {
			return "", ErrSealed
		}
		nonce, ciphertext := body[:s.aead.NonceSize()], body[s.aead.NonceSize():]
		plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
		if err != nil {
			return "", ErrSealed
		}
		return string(plain), nil
	default:
		return "", fmt.Errorf("unknown token format %d", stored[0])
	}
}

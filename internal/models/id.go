package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID is an entity identifier in canonical string form.
type ID string

// rawUUID is the tagged binary form produced by the service's database layer.
type rawUUID struct {
	Bytes []int `json:"Bytes"`
	Valid bool  `json:"Valid"`
}

// UnmarshalJSON accepts a plain string, a tagged binary UUID, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}
		*id = ParseID(s)
		return nil
	case '{':
		var raw rawUUID
		if err := json.Unmarshal(data, &raw); err != nil {
			// A shape we cannot read is treated like an invalid UUID.
			*id = ""
			return nil
		}
		*id = raw.id()
		return nil
	default:
		return fmt.Errorf("unsupported id encoding: %s", data)
	}
}

func (r rawUUID) id() ID {
	if !r.Valid || len(r.Bytes) != 16 {
		return ""
	}
	var b [16]byte
	for i, v := range r.Bytes {
		if v < 0 || v > 255 {
			return ""
		}
		b[i] = byte(v)
	}
	return ID(uuid.UUID(b).String())
}

// ParseID normalizes a string identifier. UUIDs in any accepted spelling
// become lowercase-hyphenated; anything else is kept as trimmed.
func ParseID(s string) ID {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if u, err := uuid.Parse(s); err == nil {
		return ID(u.String())
	}
	return ID(s)
}

// String returns the identifier.
func (id ID) String() string { return string(id) }

// IsZero reports whether the identifier is empty.
func (id ID) IsZero() bool { return id == "" }

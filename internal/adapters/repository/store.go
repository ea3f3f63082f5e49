// Package repository persists game sessions between requests.
package repository

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/okian/legend/internal/domain/game"
)

// Store provides read/write access to game sessions. Implementations hand
// out copies: mutating a loaded session never changes the stored one until
// it is saved again.
type Store interface {
	// Save creates or replaces a session and refreshes its expiry.
	Save(ctx context.Context, s *game.Session) error
	// Load returns the session or ErrNotFound.
	Load(ctx context.Context, id string) (*game.Session, error)
	// Delete removes the session. Deleting an unknown id returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// Count returns the number of live sessions.
	Count(ctx context.Context) (int, error)
	// Close releases backend resources.
	Close() error
}

func encode(s *game.Session) ([]byte, error) {
	if s == nil || s.ID == "" {
		return nil, ErrInvalidSession
	}
	return json.Marshal(s)
}

func decode(data []byte) (*game.Session, error) {
	var s game.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

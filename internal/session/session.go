// Package session persists calculator states between requests.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Simplici0/movequote/internal/calculator"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Store saves and loads calculator states by session id. Save creates the
// session when it does not exist yet.
type Store interface {
	Get(ctx context.Context, id string) (calculator.State, error)
	Save(ctx context.Context, id string, state calculator.State) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id has the shape of an id returned by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func encode(state calculator.State) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode session state: %w", err)
	}
	return data, nil
}

func decode(data []byte) (calculator.State, error) {
	var state calculator.State
	if err := json.Unmarshal(data, &state); err != nil {
		return calculator.State{}, fmt.Errorf("decode session state: %w", err)
	}
	return state, nil
}

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Simplici0/movequote/internal/calculator"
)

// SQLStore keeps sessions in the sessions table.
type SQLStore struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewSQLStore(db *sql.DB, ttl time.Duration) *SQLStore {
	return &SQLStore{db: db, ttl: ttl, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, id string) (calculator.State, error) {
	state, _, err := s.getExpiring(ctx, id)
	return state, err
}

func (s *SQLStore) getExpiring(ctx context.Context, id string) (calculator.State, time.Time, error) {
	var (
		data      []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT state_json, expires_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`, id, s.now().Unix()).Scan(&data, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return calculator.State{}, time.Time{}, ErrNotFound
		}
		return calculator.State{}, time.Time{}, fmt.Errorf("query session %s: %w", id, err)
	}
	state, err := decode(data)
	if err != nil {
		return calculator.State{}, time.Time{}, err
	}
	return state, time.Unix(expiresAt, 0), nil
}

// expiryAfterSave is the expiry a Save made now would store.
func (s *SQLStore) expiryAfterSave() time.Time {
	return time.Unix(s.now().Add(s.ttl).Unix(), 0)
}

func (s *SQLStore) Save(ctx context.Context, id string, state calculator.State) error {
	data, err := encode(state)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, current_step, state_json, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_step = excluded.current_step,
			state_json = excluded.state_json,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, id, string(state.CurrentStep), string(data), s.expiryAfterSave().Unix())
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// PurgeExpired deletes expired sessions and returns how many were removed.
func (s *SQLStore) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return n, nil
}

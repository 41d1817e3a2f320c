package notify

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/movequote/internal/calculator"
)

// ErrNotFound is returned when no callback request exists for a session.
var ErrNotFound = errors.New("callback request not found")

// Outbox records callback requests in the callback_requests table. A
// session can be recorded at most once.
type Outbox struct {
	db  *sql.DB
	now func() time.Time
}

func NewOutbox(db *sql.DB) *Outbox {
	return &Outbox{db: db, now: time.Now}
}

// Record stores req unless its session was already recorded. inserted is
// true only for the first call per session; req.ID and req.CreatedAt are
// filled in when empty.
func (o *Outbox) Record(ctx context.Context, req *CallbackRequest) (inserted bool, err error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = o.now().UTC()
	}

	reasons, err := json.Marshal(req.Reasons)
	if err != nil {
		return false, fmt.Errorf("encode callback reasons: %w", err)
	}
	state, err := json.Marshal(req.State)
	if err != nil {
		return false, fmt.Errorf("encode callback state: %w", err)
	}
	email := ""
	if req.Contact != nil {
		email = req.Contact.Email
	}

	result, err := o.db.ExecContext(ctx, `
		INSERT INTO callback_requests (id, session_id, reasons_json, state_json, estimated_cubes, contact_email, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO NOTHING
	`, req.ID, req.SessionID, string(reasons), string(state), req.EstimatedCubes, email, req.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("insert callback request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert callback request: %w", err)
	}
	return affected == 1, nil
}

// Find returns the request recorded for sessionID.
func (o *Outbox) Find(ctx context.Context, sessionID string) (CallbackRequest, error) {
	var (
		req       CallbackRequest
		reasons   []byte
		state     []byte
		createdAt string
	)
	err := o.db.QueryRowContext(ctx, `
		SELECT id, session_id, reasons_json, state_json, estimated_cubes, created_at
		FROM callback_requests
		WHERE session_id = ?
	`, sessionID).Scan(&req.ID, &req.SessionID, &reasons, &state, &req.EstimatedCubes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallbackRequest{}, ErrNotFound
		}
		return CallbackRequest{}, fmt.Errorf("query callback request: %w", err)
	}

	if err := json.Unmarshal(reasons, &req.Reasons); err != nil {
		return CallbackRequest{}, fmt.Errorf("decode callback reasons: %w", err)
	}
	var s calculator.State
	if err := json.Unmarshal(state, &s); err != nil {
		return CallbackRequest{}, fmt.Errorf("decode callback state: %w", err)
	}
	req.State = s
	req.Contact = s.Contact
	if req.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return CallbackRequest{}, fmt.Errorf("parse callback created_at: %w", err)
	}
	return req, nil
}

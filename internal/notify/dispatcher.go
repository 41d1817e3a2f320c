package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Dispatcher records a callback request and notifies only on the first
// recording, so retried or repeated requests never page twice.
type Dispatcher struct {
	outbox   *Outbox
	notifier Notifier
	log      *zap.Logger
}

func NewDispatcher(outbox *Outbox, notifier Notifier, log *zap.Logger) *Dispatcher {
	return &Dispatcher{outbox: outbox, notifier: notifier, log: log}
}

// Dispatch returns whether this call recorded the request. A delivery
// failure is logged and returned; the request stays recorded.
func (d *Dispatcher) Dispatch(ctx context.Context, req CallbackRequest) (bool, error) {
	inserted, err := d.outbox.Record(ctx, &req)
	if err != nil {
		return false, err
	}
	if !inserted {
		d.log.Debug("callback request already recorded", zap.String("session_id", req.SessionID))
		return false, nil
	}

	if err := d.notifier.Notify(ctx, req); err != nil {
		d.log.Error("callback notification failed",
			zap.String("session_id", req.SessionID),
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
		return true, fmt.Errorf("notify callback request %s: %w", req.ID, err)
	}
	return true, nil
}

// Find returns the request recorded for sessionID.
func (d *Dispatcher) Find(ctx context.Context, sessionID string) (CallbackRequest, error) {
	return d.outbox.Find(ctx, sessionID)
}

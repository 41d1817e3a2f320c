// Package notify delivers callback requests to the operations team.
package notify

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/Simplici0/movequote/internal/calculator"
	"github.com/Simplici0/movequote/internal/pricing"
)

// CallbackRequest is the escalated session handed to a human.
type CallbackRequest struct {
	ID             string                   `json:"id"`
	SessionID      string                   `json:"session_id"`
	Reasons        []pricing.CallbackReason `json:"reasons"`
	EstimatedCubes float64                  `json:"estimated_cubes"`
	Contact        *calculator.Contact      `json:"contact,omitempty"`
	State          calculator.State         `json:"state"`
	CreatedAt      time.Time                `json:"created_at"`
}

// Notifier delivers a callback request through one channel.
type Notifier interface {
	Notify(ctx context.Context, req CallbackRequest) error
}

// Multi fans a request out to every notifier. All notifiers run even when
// one fails; the failures are combined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, req CallbackRequest) error {
	var err error
	for _, n := range m {
		err = multierr.Append(err, n.Notify(ctx, req))
	}
	return err
}

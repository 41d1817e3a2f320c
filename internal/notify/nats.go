package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const (
	streamName      = "MOVEQUOTE"
	callbackSubject = "movequote.callback.requested"
)

// Publisher publishes callback requests to a JetStream stream.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewPublisher connects to url and makes sure the stream exists.
func NewPublisher(ctx context.Context, url string, log *zap.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"movequote.>"},
		Storage:  jetstream.FileStorage,
	}); err != nil {
		log.Warn("failed to ensure jetstream stream", zap.String("stream", streamName), zap.Error(err))
	}

	return &Publisher{nc: nc, js: js}, nil
}

func (p *Publisher) Notify(ctx context.Context, req CallbackRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode callback event: %w", err)
	}

	// The request id doubles as the JetStream dedup key.
	if _, err := p.js.Publish(ctx, callbackSubject, data, jetstream.WithMsgID(req.ID)); err != nil {
		return fmt.Errorf("publish to %s: %w", callbackSubject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

package notify

import (
	"context"

	"go.uber.org/zap"
)

// Log writes callback requests to the application log.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Notify(_ context.Context, req CallbackRequest) error {
	fields := []zap.Field{
		zap.String("request_id", req.ID),
		zap.String("session_id", req.SessionID),
		zap.Any("reasons", req.Reasons),
		zap.Float64("estimated_cubes", req.EstimatedCubes),
	}
	if req.Contact != nil {
		fields = append(fields, zap.String("contact_email", req.Contact.Email))
	}
	l.log.Info("callback requested", fields...)
	return nil
}

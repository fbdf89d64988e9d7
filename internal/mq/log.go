package mq

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrSubscribeUnsupported is returned by backends that cannot be consumed.
var ErrSubscribeUnsupported = errors.New("backend does not support subscribe")

// LogBackend writes every published message to the logger. It is the
// default when no broker is configured.
type LogBackend struct {
	logger zerolog.Logger
}

func NewLogBackend(logger zerolog.Logger) *LogBackend {
	return &LogBackend{logger: logger}
}

func (l *LogBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	id := uuid.NewString()
	evt := l.logger.Info().
		Str("channel", channel).
		Str("message_id", id).
		RawJSON("payload", data)
	for key, value := range attrs {
		evt = evt.Str(key, value)
	}
	evt.Msg("notification published")
	return id, nil
}

func (l *LogBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return ErrSubscribeUnsupported
}

func (l *LogBackend) Close() error {
	return nil
}

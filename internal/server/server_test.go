package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/clinic-records/apiserver/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shutdownStep struct {
	name  string
	steps *[]string
	err   error
}

func (s shutdownStep) Wait(ctx context.Context) error {
	*s.steps = append(*s.steps, s.name)
	return s.err
}

func (s shutdownStep) Close() error {
	*s.steps = append(*s.steps, s.name)
	return nil
}

func TestShutdownDrainsNotificationsBeforeClosingQueue(t *testing.T) {
	var steps []string
	srv := &Server{
		httpServer: &http.Server{},
		notifier:   shutdownStep{name: "notifications", steps: &steps},
		queue:      shutdownStep{name: "queue", steps: &steps},
		objects:    shutdownStep{name: "storage", steps: &steps},
		logger:     zerolog.Nop(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	assert.Equal(t, []string{"notifications", "queue", "storage"}, steps)
}

func TestShutdownClosesQueueWhenDrainTimesOut(t *testing.T) {
	var steps []string
	srv := &Server{
		httpServer: &http.Server{},
		notifier:   shutdownStep{name: "notifications", steps: &steps, err: context.DeadlineExceeded},
		queue:      shutdownStep{name: "queue", steps: &steps},
		logger:     zerolog.Nop(),
	}

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Equal(t, []string{"notifications", "queue"}, steps)
}

func TestNewRequiresJWTSecret(t *testing.T) {
	_, err := New(context.Background(), config.Config{})
	assert.EqualError(t, err, "JWT_SECRET is required")
}

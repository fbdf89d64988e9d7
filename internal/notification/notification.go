// Package notification delivers user-facing messages about appointment and
// medical record changes over the configured message queue.
package notification

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/clinic-records/apiserver/internal/mq"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Publisher is the subset of mq.MQ the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// Envelope is the payload written to the notification channel.
type Envelope struct {
	ID        string    `json:"id"`
	UserID    int       `json:"userId"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier publishes notifications without blocking the caller.
type Notifier struct {
	publisher Publisher
	channel   string
	logger    zerolog.Logger
	now       func() time.Time
	inflight  sync.WaitGroup
}

var _ Publisher = (*mq.MQ)(nil)

func NewNotifier(publisher Publisher, channel string, logger zerolog.Logger) *Notifier {
	if channel == "" {
		channel = "notifications"
	}
	return &Notifier{
		publisher: publisher,
		channel:   channel,
		logger:    logger.With().Str("component", "notification").Logger(),
		now:       time.Now,
	}
}

// Notify queues message for userID and returns immediately. Delivery
// failures are logged.
func (n *Notifier) Notify(ctx context.Context, userID int, message string) {
	env := n.envelope(userID, message)
	ctx = context.WithoutCancel(ctx)
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		_ = n.publish(ctx, env)
	}()
}

// Wait blocks until every queued notification has been published or ctx
// ends, whichever comes first.
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) envelope(userID int, message string) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		UserID:    userID,
		Message:   message,
		CreatedAt: n.now().UTC(),
	}
}

func (n *Notifier) publish(ctx context.Context, env Envelope) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	data, err := json.Marshal(env)
	if err != nil {
		n.logger.Error().Err(err).Str("notification_id", env.ID).Msg("failed to encode notification")
		return err
	}

	attrs := map[string]string{"user_id": strconv.Itoa(env.UserID)}
	if _, err := n.publisher.Publish(ctx, n.channel, data, attrs); err != nil {
		n.logger.Error().Err(err).
			Str("notification_id", env.ID).
			Int("user_id", env.UserID).
			Msg("failed to publish notification")
		return err
	}
	n.logger.Debug().Str("notification_id", env.ID).Int("user_id", env.UserID).Msg("notification sent")
	return nil
}

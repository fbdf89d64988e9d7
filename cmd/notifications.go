/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clinic-records/apiserver/config"
	"github.com/clinic-records/apiserver/internal/logging"
	"github.com/clinic-records/apiserver/internal/mq"
	"github.com/clinic-records/apiserver/internal/notification"
	"github.com/spf13/cobra"
)

// notificationsCmd groups notification channel tooling.
var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Inspect the notification channel",
}

var notificationsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print notifications as they are published",
	Long: `Subscribes to the configured notification channel and logs every
envelope it receives. Requires a rabbitmq, pubsub or kafka backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger := logging.New(cfg.Log)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.Notifications, logger)
		if err != nil {
			return err
		}
		defer queue.Close()

		channel := cfg.Notifications.Channel
		logger.Info().Str("channel", channel).Msg("tailing notifications")

		err = queue.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
			var env notification.Envelope
			if err := json.Unmarshal(msg.Data, &env); err != nil {
				logger.Warn().Err(err).Str("message_id", msg.ID).Msg("malformed notification")
				return nil
			}
			logger.Info().
				Str("message_id", msg.ID).
				Int("user_id", env.UserID).
				Time("created_at", env.CreatedAt).
				Msg(env.Message)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("subscribe %s: %w", channel, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsTailCmd)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/codeclip/internal/queue"
)

var tailWorkers int

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsTailCmd)
	notificationsTailCmd.Flags().IntVar(&tailWorkers, "workers", 1, "Concurrent consumers")
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Inspect achievement notifications",
}

var notificationsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print completion events from the achievements queue as they arrive",
	Long: `Print completion events from the RabbitMQ achievements queue.

Requires CODECLIP_RABBITMQ_URL (or rabbitmq.url in ~/.codeclip/secrets.yaml).
Events are consumed: each one is printed by a single tailing client.`,
	RunE: runNotificationsTail,
}

func runNotificationsTail(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Notifications.RabbitMQURL == "" {
		return errors.New("no RabbitMQ URL configured (set CODECLIP_RABBITMQ_URL)")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := queue.NewConnection(cfg.Notifications.RabbitMQURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	handler := func(_ context.Context, msg *queue.CompletionMessage) error {
		if outputJSON {
			return printJSON(out, msg)
		}
		writeCompletion(out, msg)
		return nil
	}

	consumer := queue.NewConsumer(conn, handler, queue.ConsumerConfig{Workers: tailWorkers})
	if err := consumer.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Listening on %s (Ctrl+C to stop)\n", queue.AchievementQueueName)

	<-ctx.Done()
	consumer.Stop()
	return nil
}

func writeCompletion(out io.Writer, msg *queue.CompletionMessage) {
	fmt.Fprintf(out, "%s  %s (%s) · %d solved · %d-day streak\n",
		msg.OccurredAt.Local().Format("2006-01-02 15:04"), msg.Title, msg.Difficulty, msg.Total, msg.Streak)
	for _, a := range msg.Unlocked {
		fmt.Fprintf(out, "    %s %s (%s, +%d XP)\n", a.Icon, a.Name, a.Rarity, a.Points)
	}
}

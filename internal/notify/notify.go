// Package notify delivers completion events to the user: as log lines, as
// messages on the achievement queue, or both.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/codeclip/internal/metrics"
	"github.com/felixgeelhaar/codeclip/internal/progress"
	"github.com/felixgeelhaar/codeclip/internal/queue"
)

// Named is implemented by notifiers that report their own metric label
type Named interface {
	Name() string
}

// LogNotifier writes unlocked achievements to a logger
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string { return "log" }

// Notify logs one line per unlocked achievement. Events without unlocks are
// logged at debug level.
func (n *LogNotifier) Notify(ctx context.Context, ev progress.Event) error {
	if len(ev.Unlocked) == 0 {
		n.logger.DebugContext(ctx, "challenge completed",
			"challenge_id", ev.ChallengeID,
			"total", ev.Total,
			"streak", ev.Streak,
		)
		return nil
	}
	for _, a := range ev.Unlocked {
		n.logger.InfoContext(ctx, "achievement unlocked",
			"achievement", a.ID,
			"name", a.Name,
			"icon", a.Icon,
			"rarity", a.Rarity,
			"points", a.Points,
		)
	}
	return nil
}

// QueueNotifier publishes every event to the achievement queue
type QueueNotifier struct {
	producer *queue.Producer
}

// NewQueueNotifier creates a QueueNotifier
func NewQueueNotifier(producer *queue.Producer) *QueueNotifier {
	return &QueueNotifier{producer: producer}
}

func (n *QueueNotifier) Name() string { return "queue" }

// Notify publishes ev as a queue.CompletionMessage
func (n *QueueNotifier) Notify(ctx context.Context, ev progress.Event) error {
	return n.producer.PublishCompletion(ctx, Message(ev))
}

// Message converts a completion event to its wire form
func Message(ev progress.Event) *queue.CompletionMessage {
	msg := &queue.CompletionMessage{
		ChallengeID: ev.ChallengeID,
		Title:       ev.Completion.Title,
		Difficulty:  ev.Completion.Difficulty,
		Category:    string(ev.Completion.Category),
		Minutes:     ev.Completion.Minutes,
		Day:         ev.Day.String(),
		Total:       ev.Total,
		Streak:      ev.Streak,
		OccurredAt:  ev.OccurredAt,
	}
	for _, a := range ev.Unlocked {
		msg.Unlocked = append(msg.Unlocked, queue.UnlockedAchievement{
			ID:     a.ID,
			Name:   a.Name,
			Icon:   a.Icon,
			Rarity: string(a.Rarity),
			Points: a.Points,
		})
	}
	return msg
}

// Multi fans an event out to several notifiers
type Multi []progress.Notifier

// Notify calls every notifier, even after one fails, and joins the errors.
// Each delivery is counted in metrics.NotificationsPublished.
func (m Multi) Notify(ctx context.Context, ev progress.Event) error {
	var errs []error
	for _, n := range m {
		err := n.Notify(ctx, ev)
		result := "ok"
		if err != nil {
			result = "error"
			errs = append(errs, err)
		}
		metrics.NotificationsPublished.WithLabelValues(nameOf(n), result).Inc()
	}
	return errors.Join(errs...)
}

func nameOf(n progress.Notifier) string {
	if named, ok := n.(Named); ok {
		return named.Name()
	}
	return "custom"
}

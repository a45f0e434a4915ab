package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Publisher is the part of Connection the producer needs
type Publisher interface {
	PublishJSON(ctx context.Context, queue string, data any) error
}

// Producer publishes completion messages to the achievement queue
type Producer struct {
	pub Publisher
}

// NewProducer creates a new queue producer
func NewProducer(pub Publisher) *Producer {
	return &Producer{pub: pub}
}

// PublishCompletion publishes msg, filling in its id and timestamp when unset
func (p *Producer) PublishCompletion(ctx context.Context, msg *CompletionMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now()
	}

	if err := p.pub.PublishJSON(ctx, AchievementQueueName, msg); err != nil {
		return fmt.Errorf("failed to publish completion: %w", err)
	}

	slog.Debug("published completion",
		"message_id", msg.ID,
		"challenge_id", msg.ChallengeID,
		"unlocked", len(msg.Unlocked),
	)
	return nil
}

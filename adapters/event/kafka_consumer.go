package event

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/application/service"
	"github.com/khoahotran/learnerhub/internal/config"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProfileEventHandler processes one decoded event. An error makes the consumer
// retry the same message.
type ProfileEventHandler func(ctx context.Context, evt service.ProfileEvent) error

const (
	defaultRetryBackoff = 500 * time.Millisecond
	maxRetryBackoff     = 30 * time.Second
)

type ProfileEventConsumer struct {
	reader  messageReader
	logger  logger.Logger
	backoff time.Duration
}

func NewProfileEventConsumer(cfg config.Config, log logger.Logger) (*ProfileEventConsumer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, errors.New("config Kafka brokers not found")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicProfileEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return &ProfileEventConsumer{reader: reader, logger: log, backoff: defaultRetryBackoff}, nil
}

// Run reads until ctx is cancelled. Malformed messages are committed and skipped.
// A message whose handler fails is retried with exponential backoff and nothing
// after it is read until it succeeds.
func (c *ProfileEventConsumer) Run(ctx context.Context, handle ProfileEventHandler) error {
	c.logger.Info("Worker listening", zap.String("topic", TopicProfileEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		var evt service.ProfileEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			c.logger.Warn("Skipping malformed profile event",
				zap.String("key", string(msg.Key)), zap.Int64("offset", msg.Offset), zap.Error(err))
			c.commit(ctx, msg)
			continue
		}

		if !c.handleWithRetry(ctx, handle, msg, evt) {
			return nil
		}
		c.commit(ctx, msg)
	}
}

// handleWithRetry reports false when ctx is cancelled before the handler succeeds.
func (c *ProfileEventConsumer) handleWithRetry(ctx context.Context, handle ProfileEventHandler, msg kafka.Message, evt service.ProfileEvent) bool {
	wait := c.backoff
	if wait <= 0 {
		wait = defaultRetryBackoff
	}
	for attempt := 1; ; attempt++ {
		err := handle(ctx, evt)
		if err == nil {
			return true
		}
		c.logger.Error("Failed to process profile event", err,
			zap.String("event_type", string(evt.EventType)), zap.String("user_id", evt.UserID.String()),
			zap.Int64("offset", msg.Offset), zap.Int("attempt", attempt), zap.Duration("retry_in", wait))
		if ctx.Err() != nil {
			return false
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		wait = min(wait*2, maxRetryBackoff)
	}
}

func (c *ProfileEventConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}

func (c *ProfileEventConsumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", err)
		return
	}
	c.logger.Info("Closed Kafka consumer")
}

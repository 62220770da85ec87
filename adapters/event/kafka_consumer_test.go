package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/learnerhub/internal/application/service"
	"github.com/khoahotran/learnerhub/internal/config"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

// scriptedReader hands out queued messages, then cancels the run.
type scriptedReader struct {
	queue     []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *scriptedReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *scriptedReader) Close() error { return nil }

func eventMessage(t *testing.T, offset int64, evt service.ProfileEvent) kafka.Message {
	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Key: []byte(evt.UserID.String()), Value: raw}
}

func TestConsumerRetriesFailedEventBeforeMovingOn(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flaky := uuid.New()
	ok := uuid.New()
	reader := &scriptedReader{cancel: cancel, queue: []kafka.Message{
		eventMessage(t, 1, service.ProfileEvent{EventType: service.ProfileEventDeleted, UserID: flaky}),
		{Offset: 2, Value: []byte("{not json")},
		eventMessage(t, 3, service.ProfileEvent{EventType: service.ProfileEventDeleted, UserID: ok}),
	}}
	consumer := &ProfileEventConsumer{reader: reader, logger: logger.NewNop(), backoff: time.Millisecond}

	var handled []uuid.UUID
	attempts := 0
	err := consumer.Run(ctx, func(_ context.Context, evt service.ProfileEvent) error {
		handled = append(handled, evt.UserID)
		if evt.UserID == flaky {
			attempts++
			if attempts == 1 {
				return errors.New("db down")
			}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []uuid.UUID{flaky, flaky, ok}, handled)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}

func TestConsumerStopsRetryingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stuck := uuid.New()
	reader := &scriptedReader{cancel: cancel, queue: []kafka.Message{
		eventMessage(t, 1, service.ProfileEvent{EventType: service.ProfileEventDeleted, UserID: stuck}),
		eventMessage(t, 2, service.ProfileEvent{EventType: service.ProfileEventDeleted, UserID: uuid.New()}),
	}}
	consumer := &ProfileEventConsumer{reader: reader, logger: logger.NewNop(), backoff: time.Millisecond}

	attempts := 0
	err := consumer.Run(ctx, func(_ context.Context, evt service.ProfileEvent) error {
		if evt.UserID != stuck {
			t.Fatalf("event after a failing one was handled")
		}
		attempts++
		if attempts == 3 {
			cancel()
		}
		return errors.New("db down")
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Empty(t, reader.committed)
	assert.Len(t, reader.queue, 1)
}

func TestNewProfileEventConsumerNeedsBrokers(t *testing.T) {
	_, err := NewProfileEventConsumer(config.Config{}, logger.NewNop())
	assert.Error(t, err)
}

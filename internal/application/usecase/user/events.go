package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/application/service"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

const publishTimeout = 5 * time.Second

// PublishAsync sends evt in the background. Failures are logged and never reach the caller.
func PublishAsync(pub service.EventPublisher, log logger.Logger, eventType service.ProfileEventType, userID uuid.UUID, status string) {
	if pub == nil {
		return
	}
	evt := service.ProfileEvent{
		EventType:        eventType,
		UserID:           userID,
		CompletionStatus: status,
		OccurredAt:       time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := pub.PublishProfileEvent(ctx, evt); err != nil {
			log.Error("Failed to publish profile event", err,
				zap.String("event_type", string(eventType)), zap.String("user_id", userID.String()))
		}
	}()
}

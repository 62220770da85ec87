package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProfileEventType string

const (
	ProfileEventCreated            ProfileEventType = "profile.created"
	ProfileEventCompletionAdvanced ProfileEventType = "profile.completion_advanced"
	ProfileEventDeleted            ProfileEventType = "profile.deleted"
)

type ProfileEvent struct {
	EventType        ProfileEventType `json:"event_type"`
	UserID           uuid.UUID        `json:"user_id"`
	CompletionStatus string           `json:"completion_status,omitempty"`
	OccurredAt       time.Time        `json:"occurred_at"`
}

type EventPublisher interface {
	PublishProfileEvent(ctx context.Context, evt ProfileEvent) error
}

package objective

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/application/service"
	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

// ProcessProfileEventUseCase reacts to profile events in the worker. A deleted
// profile takes its objectives with it.
type ProcessProfileEventUseCase struct {
	repo   objective.Repository
	logger logger.Logger
}

func NewProcessProfileEventUseCase(r objective.Repository, log logger.Logger) *ProcessProfileEventUseCase {
	return &ProcessProfileEventUseCase{repo: r, logger: log}
}

func (uc *ProcessProfileEventUseCase) Execute(ctx context.Context, evt service.ProfileEvent) error {
	ctx, span := tracer.Start(ctx, "ProcessProfileEvent")
	defer span.End()
	span.SetAttributes(
		attribute.String("event_type", string(evt.EventType)),
		attribute.String("user_id", evt.UserID.String()),
	)

	switch evt.EventType {
	case service.ProfileEventDeleted:
		removed, err := uc.repo.DeleteByUser(ctx, evt.UserID)
		if err != nil {
			span.RecordError(err)
			return apperror.NewInternal("failed to delete objectives of removed profile", err)
		}
		uc.logger.Info("Removed objectives of deleted profile",
			zap.String("user_id", evt.UserID.String()), zap.Int64("count", removed))
	case service.ProfileEventCreated, service.ProfileEventCompletionAdvanced:
		uc.logger.Info("Profile event received",
			zap.String("event_type", string(evt.EventType)),
			zap.String("user_id", evt.UserID.String()),
			zap.String("completion_status", evt.CompletionStatus))
	default:
		uc.logger.Warn("Unknown profile event type", zap.String("event_type", string(evt.EventType)))
	}
	return nil
}

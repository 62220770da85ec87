package objective

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/internal/domain/user"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

var tracer = otel.Tracer("objective_usecase")

// ObjectiveInput is an objective as submitted by a client. A zero ID means
// "match by title or create".
type ObjectiveInput struct {
	ID                 uuid.UUID
	Title              string
	Description        string
	ProgressPercentage int
	TargetDate         *time.Time
}

// Resolver turns submitted objectives into stored objectives owned by one user.
type Resolver struct {
	repo   objective.Repository
	logger logger.Logger
}

func NewResolver(r objective.Repository, log logger.Logger) *Resolver {
	return &Resolver{repo: r, logger: log}
}

// Resolve checks the count and every new objective before writing anything. Then,
// in input order: an objective with an id is replaced by its stored copy (dropped if
// missing or owned by someone else); one without an id reuses the user's objective
// with the same title, or is created.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, inputs []ObjectiveInput) ([]objective.Objective, error) {
	ctx, span := tracer.Start(ctx, "Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()), attribute.Int("objective.count", len(inputs)))

	if len(inputs) > user.MaxObjectives {
		err := apperror.NewInvalidInput(user.ErrTooManyObjectives.Error(), user.ErrTooManyObjectives)
		span.RecordError(err)
		return nil, err
	}

	for i, in := range inputs {
		if in.ID != uuid.Nil {
			continue
		}
		candidate := objective.New(userID, in.Title, in.Description, in.ProgressPercentage, in.TargetDate)
		if err := candidate.Validate(); err != nil {
			return nil, apperror.NewInvalidInput(fmt.Sprintf("objective %d: %s", i+1, err.Error()), err)
		}
	}

	out := make([]objective.Objective, 0, len(inputs))
	for _, in := range inputs {
		o, err := r.resolveOne(ctx, userID, in)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if o != nil {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *Resolver) resolveOne(ctx context.Context, userID uuid.UUID, in ObjectiveInput) (*objective.Objective, error) {
	if in.ID != uuid.Nil {
		stored, err := r.repo.FindByID(ctx, in.ID)
		if apperror.IsNotFound(err) {
			r.logger.Debug("Dropping unknown objective reference", zap.String("objective_id", in.ID.String()))
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if stored.UserID != userID {
			r.logger.Warn("Dropping objective owned by another user",
				zap.String("objective_id", in.ID.String()), zap.String("user_id", userID.String()))
			return nil, nil
		}
		return stored, nil
	}

	candidate := objective.New(userID, in.Title, in.Description, in.ProgressPercentage, in.TargetDate)

	existing, err := r.repo.FindByTitleAndUser(ctx, candidate.Title, userID)
	if err == nil {
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	err = r.repo.Create(ctx, candidate)
	if err == nil {
		return candidate, nil
	}
	if !apperror.IsConflict(err) {
		return nil, err
	}

	existing, err = r.repo.FindByTitleAndUser(ctx, candidate.Title, userID)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	return existing, err
}

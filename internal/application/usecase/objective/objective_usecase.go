package objective

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/internal/domain/user"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

// ObjectiveUseCase manages objectives through the profile that owns them.
type ObjectiveUseCase struct {
	repo     objective.Repository
	userRepo user.Repository
	resolver *Resolver
	logger   logger.Logger
}

func NewObjectiveUseCase(r objective.Repository, userRepo user.Repository, log logger.Logger) *ObjectiveUseCase {
	return &ObjectiveUseCase{
		repo:     r,
		userRepo: userRepo,
		resolver: NewResolver(r, log),
		logger:   log,
	}
}

func (uc *ObjectiveUseCase) ListForUser(ctx context.Context, userID uuid.UUID) ([]objective.Objective, error) {
	p, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.repo.FindByIDs(ctx, p.ObjectiveIDs)
}

// AddForUser appends one objective to the profile and returns the new list.
func (uc *ObjectiveUseCase) AddForUser(ctx context.Context, userID uuid.UUID, in ObjectiveInput) ([]objective.Objective, error) {
	ctx, span := tracer.Start(ctx, "AddForUser")
	defer span.End()

	p, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	inputs := make([]ObjectiveInput, 0, len(p.ObjectiveIDs)+1)
	for _, id := range p.ObjectiveIDs {
		inputs = append(inputs, ObjectiveInput{ID: id})
	}
	in.ID = uuid.Nil
	inputs = append(inputs, in)

	resolved, err := uc.resolver.Resolve(ctx, userID, inputs)
	if err != nil {
		return nil, err
	}
	if err := p.ReplaceObjectives(objective.IDs(resolved)); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	p.Touch()
	if err := uc.userRepo.Update(ctx, p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return resolved, nil
}

// UpdateForUser edits title, description, progress and target date of an objective
// that belongs to the user's profile.
func (uc *ObjectiveUseCase) UpdateForUser(ctx context.Context, userID, objectiveID uuid.UUID, in ObjectiveInput) (*objective.Objective, error) {
	p, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !holds(p, objectiveID) {
		return nil, apperror.NewNotFound("Learning objective", objectiveID.String())
	}

	o, err := uc.repo.FindByID(ctx, objectiveID)
	if err != nil {
		return nil, err
	}
	o.Title = strings.TrimSpace(in.Title)
	o.Description = in.Description
	o.ProgressPercentage = in.ProgressPercentage
	if in.TargetDate != nil {
		o.TargetDate = in.TargetDate
	}
	if err := o.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	if err := uc.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// DeleteForUser unlinks the objective from the profile, then deletes it.
func (uc *ObjectiveUseCase) DeleteForUser(ctx context.Context, userID, objectiveID uuid.UUID) error {
	p, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if !holds(p, objectiveID) {
		return apperror.NewNotFound("Learning objective", objectiveID.String())
	}

	remaining := make([]uuid.UUID, 0, len(p.ObjectiveIDs))
	for _, id := range p.ObjectiveIDs {
		if id != objectiveID {
			remaining = append(remaining, id)
		}
	}
	if err := p.ReplaceObjectives(remaining); err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	p.Touch()
	if err := uc.userRepo.Update(ctx, p); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, objectiveID, userID); err != nil && !apperror.IsNotFound(err) {
		uc.logger.Error("Objective unlinked but not deleted", err, zap.String("objective_id", objectiveID.String()))
		return err
	}
	return nil
}

func (uc *ObjectiveUseCase) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) (*objective.Objective, error) {
	if !objective.ValidProgress(progress) {
		return nil, apperror.NewInvalidInput("progressPercentage must be between 0 and 100", nil)
	}
	return uc.repo.UpdateProgress(ctx, id, progress)
}

func (uc *ObjectiveUseCase) Search(ctx context.Context, partial string) ([]objective.Objective, error) {
	return uc.repo.SearchByTitle(ctx, strings.TrimSpace(partial))
}

func holds(p *user.UserProfile, objectiveID uuid.UUID) bool {
	for _, id := range p.ObjectiveIDs {
		if id == objectiveID {
			return true
		}
	}
	return false
}

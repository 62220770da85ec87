package profile

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/application/service"
	objectiveUC "github.com/khoahotran/learnerhub/internal/application/usecase/objective"
	tagUC "github.com/khoahotran/learnerhub/internal/application/usecase/tag"
	userUC "github.com/khoahotran/learnerhub/internal/application/usecase/user"
	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/internal/domain/user"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

var tracer = otel.Tracer("profile_usecase")

// CompletionUseCase runs the three onboarding steps. Each step is repeatable and
// advances the completion status by at most one state, never backwards.
type CompletionUseCase struct {
	stores     userUC.Stores
	reconciler *tagUC.Reconciler
	resolver   *objectiveUC.Resolver
	views      *userUC.ViewLoader
	publisher  service.EventPublisher
	logger     logger.Logger
}

func NewCompletionUseCase(stores userUC.Stores, publisher service.EventPublisher, log logger.Logger) *CompletionUseCase {
	return &CompletionUseCase{
		stores:     stores,
		reconciler: tagUC.NewReconciler(log),
		resolver:   objectiveUC.NewResolver(stores.Objectives, log),
		views:      userUC.NewViewLoader(stores.Skills, stores.Interests, stores.Objectives),
		publisher:  publisher,
		logger:     log,
	}
}

// PersonalInfoInput holds the optional fields of step one. Nil means "leave as is".
type PersonalInfoInput struct {
	Username          *string
	Bio               *string
	ProfilePictureURL *string
}

func (uc *CompletionUseCase) UpdatePersonalInfo(ctx context.Context, userID uuid.UUID, in PersonalInfoInput) (*userUC.ProfileView, error) {
	ctx, span := tracer.Start(ctx, "UpdatePersonalInfo")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	p, err := uc.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username != "" && username != p.Username {
			if _, err := uc.stores.Users.FindByUsername(ctx, username); err == nil {
				return nil, apperror.NewConflict("User", "username", username)
			} else if !apperror.IsNotFound(err) {
				return nil, err
			}
			p.Username = username
		}
	}
	if in.Bio != nil {
		p.SetBio(*in.Bio)
	}
	if in.ProfilePictureURL != nil {
		p.ProfilePictureURL = *in.ProfilePictureURL
	}
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	advanced := p.AdvanceIf(user.StatusInitial, user.StatusPersonalInfoCompleted)
	return uc.save(ctx, span, p, advanced)
}

func (uc *CompletionUseCase) UpdateInterests(ctx context.Context, userID uuid.UUID, descriptors []tag.Descriptor) (*userUC.ProfileView, error) {
	ctx, span := tracer.Start(ctx, "UpdateInterests")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	p, err := uc.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// An empty list keeps the current interests.
	if len(descriptors) > 0 {
		interests, err := uc.reconciler.Reconcile(ctx, uc.stores.Interests, descriptors)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		p.ReplaceInterests(tag.IDs(interests))
	}

	advanced := p.AdvanceIf(user.StatusPersonalInfoCompleted, user.StatusInterestsCompleted)
	return uc.save(ctx, span, p, advanced)
}

// UpdateLearningObjectives rejects more than three objectives before touching any
// store, so a rejected call leaves the profile and its objectives unchanged.
// UpdateInterests and UpdateLearningObjectives keep the stored list when given an
// empty one but still advance the status.
func (uc *CompletionUseCase) UpdateLearningObjectives(ctx context.Context, userID uuid.UUID, inputs []objectiveUC.ObjectiveInput) (*userUC.ProfileView, error) {
	ctx, span := tracer.Start(ctx, "UpdateLearningObjectives")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID.String()))

	p, err := uc.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(inputs) > user.MaxObjectives {
		err := apperror.NewInvalidInput(user.ErrTooManyObjectives.Error(), user.ErrTooManyObjectives)
		span.RecordError(err)
		return nil, err
	}

	// An empty list keeps the current objectives.
	if len(inputs) > 0 {
		objectives, err := uc.resolver.Resolve(ctx, userID, inputs)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if err := p.ReplaceObjectives(objective.IDs(objectives)); err != nil {
			return nil, apperror.NewInvalidInput(err.Error(), err)
		}
	}

	advanced := p.AdvanceIf(user.StatusInterestsCompleted, user.StatusCompleted)
	return uc.save(ctx, span, p, advanced)
}

func (uc *CompletionUseCase) GetCompletionStatus(ctx context.Context, userID uuid.UUID) (user.CompletionStatus, error) {
	p, err := uc.stores.Users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return p.CompletionStatus, nil
}

func (uc *CompletionUseCase) save(ctx context.Context, span trace.Span, p *user.UserProfile, advanced bool) (*userUC.ProfileView, error) {
	p.Touch()
	if err := uc.stores.Users.Update(ctx, p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("completion_status", string(p.CompletionStatus)))

	if advanced {
		uc.logger.Info("Profile completion advanced",
			zap.String("user_id", p.ID.String()), zap.String("status", string(p.CompletionStatus)))
		userUC.PublishAsync(uc.publisher, uc.logger, service.ProfileEventCompletionAdvanced, p.ID, string(p.CompletionStatus))
	}
	return uc.views.Load(ctx, p)
}

package user

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/application/service"
	objectiveUC "github.com/khoahotran/learnerhub/internal/application/usecase/objective"
	tagUC "github.com/khoahotran/learnerhub/internal/application/usecase/tag"
	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/internal/domain/user"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

var tracer = otel.Tracer("user_usecase")

// Stores groups the repositories a profile touches.
type Stores struct {
	Users      user.Repository
	Skills     tag.Repository
	Interests  tag.Repository
	Objectives objective.Repository
}

type UserUseCase struct {
	stores     Stores
	reconciler *tagUC.Reconciler
	resolver   *objectiveUC.Resolver
	views      *ViewLoader
	publisher  service.EventPublisher
	uploader   service.Uploader
	logger     logger.Logger
}

// NewUserUseCase wires the profile use cases. uploader may be nil when no media
// storage is configured.
func NewUserUseCase(stores Stores, publisher service.EventPublisher, uploader service.Uploader, log logger.Logger) *UserUseCase {
	return &UserUseCase{
		stores:     stores,
		reconciler: tagUC.NewReconciler(log),
		resolver:   objectiveUC.NewResolver(stores.Objectives, log),
		views:      NewViewLoader(stores.Skills, stores.Interests, stores.Objectives),
		publisher:  publisher,
		uploader:   uploader,
		logger:     log,
	}
}

type ProfileInput struct {
	Username          string
	Email             string
	KeycloakID        *string
	Bio               string
	ProfilePictureURL string
	Skills            []tag.Descriptor
	Interests         []tag.Descriptor
	Objectives        []objectiveUC.ObjectiveInput
	PartnershipIDs    []string
}

// Register creates a profile in state INITIAL. Email is checked before username.
func (uc *UserUseCase) Register(ctx context.Context, in ProfileInput) (*ProfileView, error) {
	ctx, span := tracer.Start(ctx, "Register")
	defer span.End()

	p := user.New(in.Username, in.Email, normalizeKeycloakID(in.KeycloakID))
	p.SetBio(in.Bio)
	p.ProfilePictureURL = in.ProfilePictureURL
	if in.PartnershipIDs != nil {
		p.PartnershipIDs = in.PartnershipIDs
	}
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if err := uc.ensureEmailFree(ctx, p.Email, uuid.Nil); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := uc.ensureUsernameFree(ctx, p.Username, uuid.Nil); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := uc.applyReferences(ctx, p, in); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := uc.stores.Users.Create(ctx, p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", p.ID.String()))
	uc.logger.Info("User registered", zap.String("user_id", p.ID.String()), zap.String("username", p.Username))

	PublishAsync(uc.publisher, uc.logger, service.ProfileEventCreated, p.ID, string(p.CompletionStatus))
	return uc.views.Load(ctx, p)
}

// UpdateUser replaces the profile with in. The keycloak id is kept when in has none,
// and createdAt and the completion status always are.
func (uc *UserUseCase) UpdateUser(ctx context.Context, id uuid.UUID, in ProfileInput) (*ProfileView, error) {
	ctx, span := tracer.Start(ctx, "UpdateUser")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", id.String()))

	current, err := uc.stores.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := *current
	p.Username = strings.TrimSpace(in.Username)
	p.Email = strings.TrimSpace(in.Email)
	if kc := normalizeKeycloakID(in.KeycloakID); kc != nil {
		p.KeycloakID = kc
	}
	p.SetBio(in.Bio)
	p.ProfilePictureURL = in.ProfilePictureURL
	p.PartnershipIDs = in.PartnershipIDs
	if p.PartnershipIDs == nil {
		p.PartnershipIDs = []string{}
	}
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if p.Email != current.Email {
		if err := uc.ensureEmailFree(ctx, p.Email, id); err != nil {
			return nil, err
		}
	}
	if p.Username != current.Username {
		if err := uc.ensureUsernameFree(ctx, p.Username, id); err != nil {
			return nil, err
		}
	}

	if err := uc.applyReferences(ctx, &p, in); err != nil {
		span.RecordError(err)
		return nil, err
	}

	p.Touch()
	if err := uc.stores.Users.Update(ctx, &p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return uc.views.Load(ctx, &p)
}

// applyReferences resolves tags and objectives before the profile row is written.
func (uc *UserUseCase) applyReferences(ctx context.Context, p *user.UserProfile, in ProfileInput) error {
	skills, err := uc.reconciler.Reconcile(ctx, uc.stores.Skills, in.Skills)
	if err != nil {
		return err
	}
	interests, err := uc.reconciler.Reconcile(ctx, uc.stores.Interests, in.Interests)
	if err != nil {
		return err
	}
	objectives, err := uc.resolver.Resolve(ctx, p.ID, in.Objectives)
	if err != nil {
		return err
	}

	p.ReplaceSkills(tag.IDs(skills))
	p.ReplaceInterests(tag.IDs(interests))
	if err := p.ReplaceObjectives(objective.IDs(objectives)); err != nil {
		return apperror.NewInvalidInput(err.Error(), err)
	}
	return nil
}

func (uc *UserUseCase) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := uc.stores.Users.FindByID(ctx, id); err != nil {
		return err
	}
	if err := uc.stores.Users.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("User deleted", zap.String("user_id", id.String()))
	PublishAsync(uc.publisher, uc.logger, service.ProfileEventDeleted, id, "")
	return nil
}

func (uc *UserUseCase) GetByID(ctx context.Context, id uuid.UUID) (*ProfileView, error) {
	p, err := uc.stores.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.views.Load(ctx, p)
}

func (uc *UserUseCase) GetByUsername(ctx context.Context, username string) (*ProfileView, error) {
	p, err := uc.stores.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return uc.views.Load(ctx, p)
}

func (uc *UserUseCase) GetByEmail(ctx context.Context, email string) (*ProfileView, error) {
	p, err := uc.stores.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return uc.views.Load(ctx, p)
}

func (uc *UserUseCase) GetByKeycloakID(ctx context.Context, keycloakID string) (*ProfileView, error) {
	p, err := uc.stores.Users.FindByKeycloakID(ctx, keycloakID)
	if err != nil {
		return nil, err
	}
	return uc.views.Load(ctx, p)
}

func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*ProfileView, error) {
	profiles, err := uc.stores.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	return uc.views.LoadAll(ctx, profiles)
}

// FindBySkillName lists users holding the skill with that exact name. An unknown
// skill gives an empty list.
func (uc *UserUseCase) FindBySkillName(ctx context.Context, name string) ([]*ProfileView, error) {
	skill, err := uc.stores.Skills.FindByName(ctx, name)
	if apperror.IsNotFound(err) {
		return []*ProfileView{}, nil
	}
	if err != nil {
		return nil, err
	}
	profiles, err := uc.stores.Users.ListBySkill(ctx, skill.ID)
	if err != nil {
		return nil, err
	}
	return uc.views.LoadAll(ctx, profiles)
}

func (uc *UserUseCase) FindByInterestName(ctx context.Context, name string) ([]*ProfileView, error) {
	interest, err := uc.stores.Interests.FindByName(ctx, name)
	if apperror.IsNotFound(err) {
		return []*ProfileView{}, nil
	}
	if err != nil {
		return nil, err
	}
	profiles, err := uc.stores.Users.ListByInterest(ctx, interest.ID)
	if err != nil {
		return nil, err
	}
	return uc.views.LoadAll(ctx, profiles)
}

// UploadProfilePicture stores the image as users/<id>/avatar and saves its URL.
func (uc *UserUseCase) UploadProfilePicture(ctx context.Context, id uuid.UUID, file io.Reader) (*ProfileView, error) {
	ctx, span := tracer.Start(ctx, "UploadProfilePicture")
	defer span.End()

	if uc.uploader == nil {
		return nil, apperror.NewAppError(apperror.ErrInternal, "Profile picture storage is not configured", "cloudinary credentials are missing", nil)
	}

	p, err := uc.stores.Users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	url, err := uc.uploader.Upload(ctx, file, fmt.Sprintf("users/%s", id), "avatar")
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Profile picture upload failed", err, zap.String("user_id", id.String()))
		return nil, apperror.NewInternal("failed to upload profile picture", err)
	}

	p.ProfilePictureURL = url
	p.Touch()
	if err := uc.stores.Users.Update(ctx, p); err != nil {
		return nil, err
	}
	return uc.views.Load(ctx, p)
}

func (uc *UserUseCase) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	other, err := uc.stores.Users.FindByEmail(ctx, email)
	if err == nil && other.ID != self {
		return apperror.NewConflict("User", "email", email)
	}
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	return nil
}

func (uc *UserUseCase) ensureUsernameFree(ctx context.Context, username string, self uuid.UUID) error {
	other, err := uc.stores.Users.FindByUsername(ctx, username)
	if err == nil && other.ID != self {
		return apperror.NewConflict("User", "username", username)
	}
	if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	return nil
}

func normalizeKeycloakID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package tag

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

// TagUseCase is the CRUD surface for one tag kind.
type TagUseCase struct {
	repo   tag.Repository
	logger logger.Logger
}

func NewTagUseCase(r tag.Repository, log logger.Logger) *TagUseCase {
	return &TagUseCase{repo: r, logger: log.With(zap.String("tag_kind", r.Kind().String()))}
}

func (uc *TagUseCase) Kind() tag.Kind {
	return uc.repo.Kind()
}

type TagInput struct {
	Name         string
	Category     string
	IsPredefined bool
	Level        *int
}

func (uc *TagUseCase) CreateTag(ctx context.Context, in TagInput) (*tag.Tag, error) {
	ctx, span := tracer.Start(ctx, "CreateTag")
	defer span.End()

	t := tag.New(uc.repo.Kind(), in.Name, in.Category, in.Level, in.IsPredefined)
	if err := t.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if _, err := uc.repo.FindByName(ctx, t.Name); err == nil {
		return nil, apperror.NewConflict(uc.repo.Kind().Label(), "name", t.Name)
	} else if !apperror.IsNotFound(err) {
		span.RecordError(err)
		return nil, err
	}

	if err := uc.repo.Create(ctx, t); err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.logger.Info("Tag created", zap.String("id", t.ID.String()), zap.String("name", t.Name))
	return t, nil
}

func (uc *TagUseCase) GetTag(ctx context.Context, id uuid.UUID) (*tag.Tag, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *TagUseCase) ListTags(ctx context.Context) ([]tag.Tag, error) {
	return uc.repo.List(ctx)
}

// SearchTags matches names containing partial, ignoring case. An empty query lists everything.
func (uc *TagUseCase) SearchTags(ctx context.Context, partial string) ([]tag.Tag, error) {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return uc.repo.List(ctx)
	}
	return uc.repo.SearchByName(ctx, partial)
}

// UpdateTag overwrites name, category, predefined flag and level. Renaming onto a
// name held by another tag is a conflict.
func (uc *TagUseCase) UpdateTag(ctx context.Context, id uuid.UUID, in TagInput) (*tag.Tag, error) {
	ctx, span := tracer.Start(ctx, "UpdateTag")
	defer span.End()

	t, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name != t.Name {
		other, err := uc.repo.FindByName(ctx, name)
		if err == nil && other.ID != t.ID {
			return nil, apperror.NewConflict(uc.repo.Kind().Label(), "name", name)
		}
		if err != nil && !apperror.IsNotFound(err) {
			span.RecordError(err)
			return nil, err
		}
	}

	t.Name = name
	t.Category = strings.TrimSpace(in.Category)
	t.IsPredefined = in.IsPredefined
	if t.Kind == tag.KindSkill {
		t.Level = in.Level
	}
	if err := t.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if err := uc.repo.Update(ctx, t); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return t, nil
}

// DeleteTag removes the tag. Profiles still holding its id skip it when loaded.
func (uc *TagUseCase) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("Tag deleted", zap.String("id", id.String()))
	return nil
}

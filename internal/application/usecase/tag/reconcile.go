package tag

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

var tracer = otel.Tracer("tag_usecase")

// Store is what reconciliation needs from a tag repository.
type Store interface {
	Kind() tag.Kind
	FindByID(ctx context.Context, id uuid.UUID) (*tag.Tag, error)
	FindByName(ctx context.Context, name string) (*tag.Tag, error)
	Create(ctx context.Context, t *tag.Tag) error
}

// Reconciler maps client tag references onto stored tags, creating the missing ones.
type Reconciler struct {
	logger logger.Logger
}

func NewReconciler(log logger.Logger) *Reconciler {
	return &Reconciler{logger: log}
}

// Reconcile resolves every descriptor to a stored tag and returns them in input order.
// A descriptor with an unknown id is dropped without error. A descriptor without an
// id matches an existing tag by exact name, whatever its category, or creates a new
// non-predefined tag. When the create loses a race on the unique name, the name is
// looked up once more and the descriptor is dropped if that also misses.
func (r *Reconciler) Reconcile(ctx context.Context, store Store, descriptors []tag.Descriptor) ([]tag.Tag, error) {
	ctx, span := tracer.Start(ctx, "Reconcile")
	defer span.End()
	span.SetAttributes(
		attribute.String("tag.kind", store.Kind().String()),
		attribute.Int("tag.descriptors", len(descriptors)),
	)

	resolved := make([]tag.Tag, 0, len(descriptors))
	for _, d := range descriptors {
		t, err := r.resolve(ctx, store, d)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if t != nil {
			resolved = append(resolved, *t)
		}
	}
	span.SetAttributes(attribute.Int("tag.resolved", len(resolved)))
	return resolved, nil
}

func (r *Reconciler) resolve(ctx context.Context, store Store, d tag.Descriptor) (*tag.Tag, error) {
	kind := store.Kind()

	if d.HasID() {
		t, err := store.FindByID(ctx, d.ID)
		if apperror.IsNotFound(err) {
			r.logger.Debug("Dropping unknown tag reference", zap.String("kind", kind.String()), zap.String("id", d.ID.String()))
			return nil, nil
		}
		return t, err
	}

	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, apperror.NewInvalidInput(kind.Label()+" name is required when no id is given", nil)
	}

	existing, err := store.FindByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, err
	}

	created := tag.New(kind, name, d.Category, d.Level, false)
	if err := created.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	err = store.Create(ctx, created)
	if err == nil {
		r.logger.Info("Created tag", zap.String("kind", kind.String()), zap.String("name", name), zap.String("id", created.ID.String()))
		return created, nil
	}
	if !apperror.IsConflict(err) {
		return nil, err
	}

	// Another writer inserted the same name between our lookup and insert.
	winner, err := store.FindByName(ctx, name)
	if apperror.IsNotFound(err) {
		r.logger.Warn("Tag vanished after create conflict, dropping", zap.String("kind", kind.String()), zap.String("name", name))
		return nil, nil
	}
	return winner, err
}

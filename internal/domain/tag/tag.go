package tag

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/khoahotran/learnerhub/pkg/validate"
)

// Kind tells skills and interests apart. Each kind has its own store and its
// own name-uniqueness scope.
type Kind string

const (
	KindSkill    Kind = "skill"
	KindInterest Kind = "interest"
)

func (k Kind) String() string { return string(k) }

// Label is the capitalised resource name used in error messages.
func (k Kind) Label() string {
	if k == KindSkill {
		return "Skill"
	}
	return "Interest"
}

// Tag is a named label shared by many profiles. Only skills carry a level.
type Tag struct {
	ID           uuid.UUID `json:"id"`
	Kind         Kind      `json:"-"`
	Name         string    `json:"name" validate:"required,max=100"`
	Category     string    `json:"category" validate:"max=100"`
	IsPredefined bool      `json:"isPredefined"`
	Level        *int      `json:"level,omitempty"`
}

func New(kind Kind, name, category string, level *int, predefined bool) *Tag {
	t := &Tag{
		ID:           uuid.New(),
		Kind:         kind,
		Name:         strings.TrimSpace(name),
		Category:     strings.TrimSpace(category),
		IsPredefined: predefined,
	}
	if kind == KindSkill {
		t.Level = level
	}
	return t
}

func (t *Tag) Validate() error {
	return validate.Struct(t)
}

// Descriptor is a client reference to a tag: either an id, or a name and category
// for a tag that may not exist yet.
type Descriptor struct {
	ID       uuid.UUID
	Name     string
	Category string
	Level    *int
}

func (d Descriptor) HasID() bool {
	return d.ID != uuid.Nil
}

// IDs returns the ids of tags in order.
func IDs(tags []Tag) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// Repository stores the tags of a single kind. Create returns a conflict error when
// the name is taken; lookups return a not-found error when nothing matches.
type Repository interface {
	Kind() Kind
	Create(ctx context.Context, t *Tag) error
	Update(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	FindByName(ctx context.Context, name string) (*Tag, error)
	// FindByIDs keeps the order of ids and skips the ones that no longer exist.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error)
	List(ctx context.Context) ([]Tag, error)
	SearchByName(ctx context.Context, partial string) ([]Tag, error)
	Count(ctx context.Context) (int, error)
}

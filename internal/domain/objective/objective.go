package objective

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/learnerhub/pkg/validate"
)

// Objective is a learning goal owned by one user. Titles are unique per user.
type Objective struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"userId"`
	Title              string     `json:"title" validate:"required,max=100"`
	Description        string     `json:"description" validate:"max=500"`
	ProgressPercentage int        `json:"progressPercentage" validate:"min=0,max=100"`
	TargetDate         *time.Time `json:"targetDate,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func New(userID uuid.UUID, title, description string, progress int, targetDate *time.Time) *Objective {
	now := time.Now().UTC()
	return &Objective{
		ID:                 uuid.New(),
		UserID:             userID,
		Title:              strings.TrimSpace(title),
		Description:        description,
		ProgressPercentage: progress,
		TargetDate:         targetDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func (o *Objective) Validate() error {
	return validate.Struct(o)
}

func ValidProgress(p int) bool {
	return p >= 0 && p <= 100
}

func IDs(objs []Objective) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(objs))
	for _, o := range objs {
		ids = append(ids, o.ID)
	}
	return ids
}

type Repository interface {
	Create(ctx context.Context, o *Objective) error
	Update(ctx context.Context, o *Objective) error
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) (*Objective, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Objective, error)
	FindByTitleAndUser(ctx context.Context, title string, userID uuid.UUID) (*Objective, error)
	// FindByIDs keeps the order of ids and skips the ones that no longer exist.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Objective, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Objective, error)
	SearchByTitle(ctx context.Context, partial string) ([]Objective, error)
}

package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/khoahotran/learnerhub/pkg/validate"
)

const (
	MaxBioLength  = 150
	MaxObjectives = 3
)

var ErrTooManyObjectives = fmt.Errorf("a profile can hold at most %d learning objectives", MaxObjectives)

// UserProfile references skills, interests and objectives by id. The referenced
// rows live in their own stores.
type UserProfile struct {
	ID                uuid.UUID        `json:"id"`
	KeycloakID        *string          `json:"keycloakId"`
	Username          string           `json:"username" validate:"required,min=3,max=50"`
	Email             string           `json:"email" validate:"required,email"`
	Bio               string           `json:"bio" validate:"max=150"`
	ProfilePictureURL string           `json:"profilePictureUrl"`
	SkillIDs          []uuid.UUID      `json:"skillIds"`
	InterestIDs       []uuid.UUID      `json:"interestIds"`
	ObjectiveIDs      []uuid.UUID      `json:"objectiveIds" validate:"max=3"`
	PartnershipIDs    []string         `json:"partnershipIds"`
	CompletionStatus  CompletionStatus `json:"completionStatus"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

func New(username, email string, keycloakID *string) *UserProfile {
	now := time.Now().UTC()
	return &UserProfile{
		ID:               uuid.New(),
		KeycloakID:       keycloakID,
		Username:         strings.TrimSpace(username),
		Email:            strings.TrimSpace(email),
		SkillIDs:         []uuid.UUID{},
		InterestIDs:      []uuid.UUID{},
		ObjectiveIDs:     []uuid.UUID{},
		PartnershipIDs:   []string{},
		CompletionStatus: StatusInitial,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func (p *UserProfile) Validate() error {
	if !p.CompletionStatus.Valid() {
		return fmt.Errorf("unknown completion status %q", p.CompletionStatus)
	}
	return validate.Struct(p)
}

// SetBio stores bio cut to MaxBioLength characters.
func (p *UserProfile) SetBio(bio string) {
	p.Bio = ClampBio(bio)
}

func ClampBio(bio string) string {
	r := []rune(bio)
	if len(r) <= MaxBioLength {
		return bio
	}
	return string(r[:MaxBioLength])
}

func (p *UserProfile) ReplaceSkills(ids []uuid.UUID) {
	p.SkillIDs = dedupe(ids)
}

func (p *UserProfile) ReplaceInterests(ids []uuid.UUID) {
	p.InterestIDs = dedupe(ids)
}

func (p *UserProfile) ReplaceObjectives(ids []uuid.UUID) error {
	ids = dedupe(ids)
	if len(ids) > MaxObjectives {
		return ErrTooManyObjectives
	}
	p.ObjectiveIDs = ids
	return nil
}

func (p *UserProfile) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type Repository interface {
	Create(ctx context.Context, p *UserProfile) error
	Update(ctx context.Context, p *UserProfile) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*UserProfile, error)
	FindByUsername(ctx context.Context, username string) (*UserProfile, error)
	FindByEmail(ctx context.Context, email string) (*UserProfile, error)
	FindByKeycloakID(ctx context.Context, keycloakID string) (*UserProfile, error)
	List(ctx context.Context) ([]*UserProfile, error)
	ListBySkill(ctx context.Context, skillID uuid.UUID) ([]*UserProfile, error)
	ListByInterest(ctx context.Context, interestID uuid.UUID) ([]*UserProfile, error)
}

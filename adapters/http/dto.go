package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	objectiveUC "github.com/khoahotran/learnerhub/internal/application/usecase/objective"
	profileUC "github.com/khoahotran/learnerhub/internal/application/usecase/profile"
	userUC "github.com/khoahotran/learnerhub/internal/application/usecase/user"
	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/pkg/apperror"
)

// Tag DTOs
type TagDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	IsPredefined bool      `json:"isPredefined"`
	Level        *int      `json:"level,omitempty"`
}

// TagRequest references a tag by id, or describes one by name and category.
type TagRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	IsPredefined bool   `json:"isPredefined"`
	Level        *int   `json:"level"`
}

func ToTagDTO(t tag.Tag) TagDTO {
	return TagDTO{
		ID:           t.ID,
		Name:         t.Name,
		Category:     t.Category,
		IsPredefined: t.IsPredefined,
		Level:        t.Level,
	}
}

func ToTagDTOs(tags []tag.Tag) []TagDTO {
	dtos := make([]TagDTO, len(tags))
	for i, t := range tags {
		dtos[i] = ToTagDTO(t)
	}
	return dtos
}

func ToDescriptors(reqs []TagRequest) ([]tag.Descriptor, error) {
	out := make([]tag.Descriptor, 0, len(reqs))
	for _, r := range reqs {
		id, err := parseOptionalID(r.ID, "tag")
		if err != nil {
			return nil, err
		}
		out = append(out, tag.Descriptor{ID: id, Name: r.Name, Category: r.Category, Level: r.Level})
	}
	return out, nil
}

// Objective DTOs
type ObjectiveDTO struct {
	ID                 uuid.UUID  `json:"id"`
	UserID             uuid.UUID  `json:"userId"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	ProgressPercentage int        `json:"progressPercentage"`
	TargetDate         *time.Time `json:"targetDate"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

type ObjectiveRequest struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	ProgressPercentage int        `json:"progressPercentage"`
	TargetDate         *time.Time `json:"targetDate"`
}

type ProgressRequest struct {
	ProgressPercentage *int `json:"progressPercentage" binding:"required"`
}

func ToObjectiveDTO(o objective.Objective) ObjectiveDTO {
	return ObjectiveDTO{
		ID:                 o.ID,
		UserID:             o.UserID,
		Title:              o.Title,
		Description:        o.Description,
		ProgressPercentage: o.ProgressPercentage,
		TargetDate:         o.TargetDate,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}

func ToObjectiveDTOs(items []objective.Objective) []ObjectiveDTO {
	dtos := make([]ObjectiveDTO, len(items))
	for i, o := range items {
		dtos[i] = ToObjectiveDTO(o)
	}
	return dtos
}

func (r ObjectiveRequest) ToInput() (objectiveUC.ObjectiveInput, error) {
	id, err := parseOptionalID(r.ID, "objective")
	if err != nil {
		return objectiveUC.ObjectiveInput{}, err
	}
	return objectiveUC.ObjectiveInput{
		ID:                 id,
		Title:              r.Title,
		Description:        r.Description,
		ProgressPercentage: r.ProgressPercentage,
		TargetDate:         r.TargetDate,
	}, nil
}

func ToObjectiveInputs(reqs []ObjectiveRequest) ([]objectiveUC.ObjectiveInput, error) {
	out := make([]objectiveUC.ObjectiveInput, 0, len(reqs))
	for _, r := range reqs {
		in, err := r.ToInput()
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

// User DTOs
type UserProfileDTO struct {
	ID                 uuid.UUID      `json:"id"`
	KeycloakID         *string        `json:"keycloakId"`
	Username           string         `json:"username"`
	Email              string         `json:"email"`
	Bio                string         `json:"bio"`
	ProfilePictureURL  string         `json:"profilePictureUrl"`
	Skills             []TagDTO       `json:"skills"`
	Interests          []TagDTO       `json:"interests"`
	LearningObjectives []ObjectiveDTO `json:"learningObjectives"`
	PartnershipIDs     []string       `json:"partnershipIds"`
	CompletionStatus   string         `json:"completionStatus"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

type UserProfileRequest struct {
	KeycloakID         *string            `json:"keycloakId"`
	Username           string             `json:"username"`
	Email              string             `json:"email"`
	Bio                string             `json:"bio"`
	ProfilePictureURL  string             `json:"profilePictureUrl"`
	Skills             []TagRequest       `json:"skills"`
	Interests          []TagRequest       `json:"interests"`
	LearningObjectives []ObjectiveRequest `json:"learningObjectives"`
	PartnershipIDs     []string           `json:"partnershipIds"`
}

type PersonalInfoRequest struct {
	Username          *string `json:"username"`
	Bio               *string `json:"bio"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
}

func ToUserProfileDTO(v *userUC.ProfileView) UserProfileDTO {
	p := v.Profile
	partnerships := p.PartnershipIDs
	if partnerships == nil {
		partnerships = []string{}
	}
	return UserProfileDTO{
		ID:                 p.ID,
		KeycloakID:         p.KeycloakID,
		Username:           p.Username,
		Email:              p.Email,
		Bio:                p.Bio,
		ProfilePictureURL:  p.ProfilePictureURL,
		Skills:             ToTagDTOs(v.Skills),
		Interests:          ToTagDTOs(v.Interests),
		LearningObjectives: ToObjectiveDTOs(v.Objectives),
		PartnershipIDs:     partnerships,
		CompletionStatus:   string(p.CompletionStatus),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func ToUserProfileDTOs(views []*userUC.ProfileView) []UserProfileDTO {
	dtos := make([]UserProfileDTO, len(views))
	for i, v := range views {
		dtos[i] = ToUserProfileDTO(v)
	}
	return dtos
}

func (r UserProfileRequest) ToInput() (userUC.ProfileInput, error) {
	skills, err := ToDescriptors(r.Skills)
	if err != nil {
		return userUC.ProfileInput{}, err
	}
	interests, err := ToDescriptors(r.Interests)
	if err != nil {
		return userUC.ProfileInput{}, err
	}
	objectives, err := ToObjectiveInputs(r.LearningObjectives)
	if err != nil {
		return userUC.ProfileInput{}, err
	}
	return userUC.ProfileInput{
		Username:          r.Username,
		Email:             r.Email,
		KeycloakID:        r.KeycloakID,
		Bio:               r.Bio,
		ProfilePictureURL: r.ProfilePictureURL,
		Skills:            skills,
		Interests:         interests,
		Objectives:        objectives,
		PartnershipIDs:    r.PartnershipIDs,
	}, nil
}

func (r PersonalInfoRequest) ToInput() profileUC.PersonalInfoInput {
	return profileUC.PersonalInfoInput{
		Username:          r.Username,
		Bio:               r.Bio,
		ProfilePictureURL: r.ProfilePictureURL,
	}
}

func parseOptionalID(raw, what string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.NewInvalidInput(fmt.Sprintf("invalid %s id '%s'", what, raw), err)
	}
	return id, nil
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, apperror.NewInvalidInput(fmt.Sprintf("invalid %s id '%s'", what, raw), err)
	}
	return id, nil
}

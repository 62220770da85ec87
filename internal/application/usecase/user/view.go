package user

import (
	"context"

	"github.com/khoahotran/learnerhub/internal/domain/objective"
	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/internal/domain/user"
)

// ProfileView is a profile with its references loaded.
type ProfileView struct {
	Profile    *user.UserProfile
	Skills     []tag.Tag
	Interests  []tag.Tag
	Objectives []objective.Objective
}

// ViewLoader expands the id references of a profile. Ids whose rows are gone are skipped.
type ViewLoader struct {
	skills     tag.Repository
	interests  tag.Repository
	objectives objective.Repository
}

func NewViewLoader(skills, interests tag.Repository, objectives objective.Repository) *ViewLoader {
	return &ViewLoader{skills: skills, interests: interests, objectives: objectives}
}

func (l *ViewLoader) Load(ctx context.Context, p *user.UserProfile) (*ProfileView, error) {
	skills, err := l.skills.FindByIDs(ctx, p.SkillIDs)
	if err != nil {
		return nil, err
	}
	interests, err := l.interests.FindByIDs(ctx, p.InterestIDs)
	if err != nil {
		return nil, err
	}
	objectives, err := l.objectives.FindByIDs(ctx, p.ObjectiveIDs)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Profile: p, Skills: skills, Interests: interests, Objectives: objectives}, nil
}

func (l *ViewLoader) LoadAll(ctx context.Context, profiles []*user.UserProfile) ([]*ProfileView, error) {
	views := make([]*ProfileView, 0, len(profiles))
	for _, p := range profiles {
		v, err := l.Load(ctx, p)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

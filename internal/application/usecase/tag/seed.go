package tag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type catalogueGroup struct {
	Category string
	Names    []string
}

var predefinedSkills = []catalogueGroup{
	{"Programming", []string{"Java", "Python", "JavaScript", "TypeScript", "C#", "C++", "PHP", "Ruby", "Swift", "Kotlin"}},
	{"Web", []string{"HTML", "CSS", "React", "Angular", "Vue.js", "Spring Boot", "Node.js", "Express", "Django", "Laravel"}},
	{"Design", []string{"UI Design", "UX Design", "Graphic Design", "Figma", "Adobe XD", "Adobe Illustrator", "Adobe Photoshop", "Sketch"}},
	{"Data", []string{"SQL", "MongoDB", "PostgreSQL", "MySQL", "Data Analysis", "Machine Learning", "Big Data", "Data Visualization"}},
}

var predefinedInterests = []catalogueGroup{
	{"Development", []string{"Web Development", "Mobile App Development", "Game Development", "DevOps", "Cloud Computing", "Blockchain", "Artificial Intelligence", "Cybersecurity"}},
	{"Design", []string{"User Interface Design", "User Experience Design", "Responsive Design", "Motion Design", "3D Modeling", "Animation", "Typography"}},
	{"Business", []string{"Digital Marketing", "Entrepreneurship", "Product Management", "E-commerce", "Content Strategy", "Project Management", "Business Analytics"}},
	{"Education", []string{"Online Learning", "Teaching", "Academic Research", "E-Learning Development", "Educational Technology", "Mentoring"}},
}

// SeedUseCase fills empty tag stores with the predefined catalogue.
type SeedUseCase struct {
	stores []tag.Repository
	logger logger.Logger
}

func NewSeedUseCase(log logger.Logger, stores ...tag.Repository) *SeedUseCase {
	return &SeedUseCase{stores: stores, logger: log}
}

func (uc *SeedUseCase) Execute(ctx context.Context) error {
	for _, store := range uc.stores {
		if err := uc.seed(ctx, store); err != nil {
			return err
		}
	}
	return nil
}

func (uc *SeedUseCase) seed(ctx context.Context, store tag.Repository) error {
	kind := store.Kind()

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count %s tags: %w", kind, err)
	}
	if count > 0 {
		uc.logger.Info("Predefined tags already present, skipping", zap.String("kind", kind.String()), zap.Int("count", count))
		return nil
	}

	catalogue := predefinedSkills
	if kind == tag.KindInterest {
		catalogue = predefinedInterests
	}

	inserted := 0
	for _, group := range catalogue {
		for _, name := range group.Names {
			err := store.Create(ctx, tag.New(kind, name, group.Category, nil, true))
			if apperror.IsConflict(err) {
				continue
			}
			if err != nil {
				return fmt.Errorf("seed %s %q: %w", kind, name, err)
			}
			inserted++
		}
	}
	uc.logger.Info("Predefined tags seeded", zap.String("kind", kind.String()), zap.Int("inserted", inserted))
	return nil
}

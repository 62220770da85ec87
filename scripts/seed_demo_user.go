package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/khoahotran/learnerhub/adapters/event"
	"github.com/khoahotran/learnerhub/adapters/persistence"
	userUC "github.com/khoahotran/learnerhub/internal/application/usecase/user"
	"github.com/khoahotran/learnerhub/internal/config"
	"github.com/khoahotran/learnerhub/internal/domain/tag"
	"github.com/khoahotran/learnerhub/pkg/apperror"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

func main() {
	fmt.Println("adding demo profile into database...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	zlog := logger.NewZapLogger(cfg.App.Env, "seed")

	ctx := context.Background()
	pool, err := persistence.NewPostgresPool(ctx, cfg, zlog)
	if err != nil {
		log.Fatalf("cannot connect DB: %v", err)
	}
	defer pool.Close()

	username := envOr("DEMO_USERNAME", "demo")
	email := envOr("DEMO_EMAIL", "demo@learnerhub.local")

	stores := userUC.Stores{
		Users:      persistence.NewPostgresUserRepo(pool, zlog),
		Skills:     persistence.NewPostgresSkillRepo(pool, zlog),
		Interests:  persistence.NewPostgresInterestRepo(pool, zlog),
		Objectives: persistence.NewPostgresObjectiveRepo(pool, zlog),
	}
	uc := userUC.NewUserUseCase(stores, event.NopPublisher{}, nil, zlog)

	view, err := uc.Register(ctx, userUC.ProfileInput{
		Username:  username,
		Email:     email,
		Bio:       "Demo learner",
		Skills:    []tag.Descriptor{{Name: "Go", Category: "Programming"}},
		Interests: []tag.Descriptor{{Name: "Open Source", Category: "Development"}},
	})
	if apperror.IsConflict(err) {
		fmt.Printf("demo profile '%s' already exists\n", username)
		return
	}
	if err != nil {
		log.Fatalf("cannot add demo profile: %v", err)
	}

	fmt.Printf("added demo profile '%s' (%s) successfully!\n", view.Profile.Username, view.Profile.ID)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/learnerhub/adapters/event"
	httpAdapter "github.com/khoahotran/learnerhub/adapters/http"
	"github.com/khoahotran/learnerhub/adapters/media_storage"
	"github.com/khoahotran/learnerhub/adapters/persistence"
	"github.com/khoahotran/learnerhub/internal/application/service"
	objectiveUC "github.com/khoahotran/learnerhub/internal/application/usecase/objective"
	profileUC "github.com/khoahotran/learnerhub/internal/application/usecase/profile"
	tagUC "github.com/khoahotran/learnerhub/internal/application/usecase/tag"
	userUC "github.com/khoahotran/learnerhub/internal/application/usecase/user"
	"github.com/khoahotran/learnerhub/internal/config"
	"github.com/khoahotran/learnerhub/pkg/logger"
	"github.com/khoahotran/learnerhub/pkg/tracing"
)

const serviceName = "learnerhub-userservice"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log := logger.NewZapLogger(cfg.App.Env, serviceName)
	defer log.Sync()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(cfg, log, serviceName)
	if err != nil {
		log.Fatal("Cannot init tracing", err)
	}

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Repositories
	stores := userUC.Stores{
		Users:      persistence.NewPostgresUserRepo(dbPool, log),
		Skills:     persistence.NewPostgresSkillRepo(dbPool, log),
		Interests:  persistence.NewPostgresInterestRepo(dbPool, log),
		Objectives: persistence.NewPostgresObjectiveRepo(dbPool, log),
	}

	if err := tagUC.NewSeedUseCase(log, stores.Skills, stores.Interests).Execute(ctx); err != nil {
		log.Error("Seeding predefined tags failed", err)
	}

	// Services
	var publisher service.EventPublisher = event.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, log)
		if err != nil {
			log.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	} else {
		log.Warn("No Kafka brokers configured, profile events are dropped")
	}

	var uploader service.Uploader
	if u, err := media_storage.NewCloudinaryAdapter(cfg, log); err != nil {
		log.Warn("Profile picture upload disabled", zap.Error(err))
	} else {
		uploader = u
	}

	// Use cases and handlers
	userUseCase := userUC.NewUserUseCase(stores, publisher, uploader, log)
	completionUseCase := profileUC.NewCompletionUseCase(stores, publisher, log)
	objectiveUseCase := objectiveUC.NewObjectiveUseCase(stores.Objectives, stores.Users, log)

	router := httpAdapter.NewRouter(httpAdapter.Handlers{
		Users:      httpAdapter.NewUserHandler(userUseCase, log),
		Profiles:   httpAdapter.NewProfileHandler(completionUseCase, log),
		Skills:     httpAdapter.NewTagHandler(tagUC.NewTagUseCase(stores.Skills, log), log),
		Interests:  httpAdapter.NewTagHandler(tagUC.NewTagUseCase(stores.Interests, log), log),
		Objectives: httpAdapter.NewObjectiveHandler(objectiveUseCase, log),
	}, serviceName, log)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("User service listening", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown failed", err)
		}
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("User service stopped with error", err)
		return
	}
	log.Info("User service stopped")
}

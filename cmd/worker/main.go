package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/khoahotran/learnerhub/adapters/event"
	"github.com/khoahotran/learnerhub/adapters/persistence"
	objectiveUC "github.com/khoahotran/learnerhub/internal/application/usecase/objective"
	"github.com/khoahotran/learnerhub/internal/config"
	"github.com/khoahotran/learnerhub/pkg/logger"
	"github.com/khoahotran/learnerhub/pkg/tracing"
)

const serviceName = "learnerhub-worker"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	log := logger.NewZapLogger(cfg.App.Env, serviceName)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(cfg, log, serviceName)
	if err != nil {
		log.Fatal("Cannot init tracing", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("Tracing shutdown failed", err)
		}
	}()

	dbPool, err := persistence.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	processEvent := objectiveUC.NewProcessProfileEventUseCase(persistence.NewPostgresObjectiveRepo(dbPool, log), log)

	consumer, err := event.NewProfileEventConsumer(cfg, log)
	if err != nil {
		log.Fatal("Cannot init Kafka consumer", err)
	}
	defer consumer.Close()

	if err := consumer.Run(ctx, processEvent.Execute); err != nil {
		log.Error("Worker stopped with error", err)
		return
	}
	log.Info("Worker stopped")
}

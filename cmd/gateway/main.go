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

	"github.com/khoahotran/learnerhub/adapters/gateway"
	"github.com/khoahotran/learnerhub/adapters/persistence"
	authUC "github.com/khoahotran/learnerhub/internal/application/usecase/auth"
	"github.com/khoahotran/learnerhub/internal/config"
	"github.com/khoahotran/learnerhub/pkg/auth"
	"github.com/khoahotran/learnerhub/pkg/logger"
	"github.com/khoahotran/learnerhub/pkg/tracing"
)

const serviceName = "learnerhub-gateway"

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

	verifier, err := auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.PublicKeyPEM)
	if err != nil {
		log.Fatal("Cannot init token verifier", err)
	}
	if !verifier.VerifiesSignature() {
		log.Warn("No JWT secret or public key configured, token signatures are not checked")
	}

	var cache authUC.SyncCache
	if cfg.Redis.Addr != "" {
		rdb, err := persistence.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn("Sync cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = persistence.NewRedisSyncCache(rdb)
		}
	}

	directory := gateway.NewUserServiceClient(cfg.Gateway.UserServiceURL, cfg.Gateway.RequestTimeout)
	syncUser := authUC.NewSyncUserUseCase(directory, cache, cfg.Gateway.SyncTTL, log)

	router, err := gateway.NewRouter(gateway.RouterConfig{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.Gateway.AllowedOrigins,
		UpstreamURL:    cfg.Gateway.UserServiceURL,
	}, verifier, syncUser, log)
	if err != nil {
		log.Fatal("Cannot build gateway router", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Gateway.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Gateway listening",
			zap.String("port", cfg.Gateway.Port), zap.String("upstream", cfg.Gateway.UserServiceURL))
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
			log.Error("Gateway shutdown failed", err)
		}
		return shutdownTracing(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Gateway stopped with error", err)
		return
	}
	log.Info("Gateway stopped")
}

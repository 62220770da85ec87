package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/learnerhub/pkg/auth"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

var tracer = otel.Tracer("auth_usecase")

// NewUser is the body the gateway sends to create a missing profile.
type NewUser struct {
	Email      string `json:"email"`
	Username   string `json:"username"`
	KeycloakID string `json:"keycloakId"`
}

// UserDirectory is the user service as seen from the gateway.
type UserDirectory interface {
	ExistsByKeycloakID(ctx context.Context, keycloakID string) (bool, error)
	CreateUser(ctx context.Context, u NewUser) error
}

// SyncCache remembers which identities already have a profile.
type SyncCache interface {
	IsSynced(ctx context.Context, subject string) (bool, error)
	MarkSynced(ctx context.Context, subject string, ttl time.Duration) error
}

type SyncUserUseCase struct {
	directory UserDirectory
	cache     SyncCache
	ttl       time.Duration
	logger    logger.Logger
}

func NewSyncUserUseCase(dir UserDirectory, cache SyncCache, ttl time.Duration, log logger.Logger) *SyncUserUseCase {
	return &SyncUserUseCase{directory: dir, cache: cache, ttl: ttl, logger: log}
}

// Execute makes sure a profile exists for the token's subject, creating it when the
// user service does not know it. cache may be nil.
func (uc *SyncUserUseCase) Execute(ctx context.Context, claims *auth.IdentityClaims) error {
	ctx, span := tracer.Start(ctx, "SyncUser")
	defer span.End()

	subject := claims.ExternalID()
	span.SetAttributes(attribute.String("keycloak_id", subject))

	if uc.cache != nil {
		synced, err := uc.cache.IsSynced(ctx, subject)
		if err != nil {
			uc.logger.Warn("Sync cache lookup failed", zap.String("keycloak_id", subject), zap.Error(err))
		} else if synced {
			span.SetAttributes(attribute.Bool("sync.cached", true))
			return nil
		}
	}

	exists, err := uc.directory.ExistsByKeycloakID(ctx, subject)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("lookup profile for %s: %w", subject, err)
	}

	if !exists {
		newUser := NewUser{
			Email:      claims.Email,
			Username:   usernameFor(claims),
			KeycloakID: subject,
		}
		if err := uc.directory.CreateUser(ctx, newUser); err != nil {
			span.RecordError(err)
			return fmt.Errorf("create profile for %s: %w", subject, err)
		}
		uc.logger.Info("User details synchronized with user service",
			zap.String("keycloak_id", subject), zap.String("username", newUser.Username))
	}

	if uc.cache != nil {
		if err := uc.cache.MarkSynced(ctx, subject, uc.ttl); err != nil {
			uc.logger.Warn("Sync cache write failed", zap.String("keycloak_id", subject), zap.Error(err))
		}
	}
	return nil
}

// usernameFor prefers preferred_username and falls back to the email local part.
func usernameFor(c *auth.IdentityClaims) string {
	if u := strings.TrimSpace(c.PreferredUsername); u != "" {
		return u
	}
	if at := strings.IndexByte(c.Email, '@'); at > 0 {
		return c.Email[:at]
	}
	return c.Email
}

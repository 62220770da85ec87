package gateway

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authUC "github.com/khoahotran/learnerhub/internal/application/usecase/auth"
	"github.com/khoahotran/learnerhub/pkg/auth"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

const GinContextKeyClaims = "identityClaims"

// BearerAuth rejects requests without a valid bearer token and stores the claims
// in the gin context.
func BearerAuth(verifier *auth.TokenVerifier, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		const scheme = "Bearer "
		if len(authHeader) <= len(scheme) || !strings.EqualFold(authHeader[:len(scheme)], scheme) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}
		tokenString := strings.TrimSpace(authHeader[len(scheme):])
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := verifier.Parse(tokenString)
		if err != nil {
			log.Debug("Rejected bearer token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeyClaims, claims)
		c.Next()
	}
}

func ClaimsFromGinContext(c *gin.Context) (*auth.IdentityClaims, bool) {
	v, ok := c.Get(GinContextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.IdentityClaims)
	return claims, ok
}

// UserSync makes sure the caller has a profile. Failures are logged and the
// request goes on.
func UserSync(uc *authUC.SyncUserUseCase, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromGinContext(c)
		if !ok {
			c.Next()
			return
		}
		if err := uc.Execute(c.Request.Context(), claims); err != nil {
			log.Error("Error syncing user with user service", err, zap.String("keycloak_id", claims.ExternalID()))
		}
		c.Next()
	}
}

func CORS(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	})
}

// AccessLog writes one line per proxied request.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		}
		if claims, ok := ClaimsFromGinContext(c); ok {
			fields = append(fields, zap.String("keycloak_id", claims.ExternalID()))
		}
		log.Info("Gateway request", fields...)
	}
}

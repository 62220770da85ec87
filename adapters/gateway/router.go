package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	authUC "github.com/khoahotran/learnerhub/internal/application/usecase/auth"
	"github.com/khoahotran/learnerhub/pkg/auth"
	"github.com/khoahotran/learnerhub/pkg/logger"
)

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	UpstreamURL    string
}

// NewRouter chains CORS, tracing, access log, bearer auth and user sync in front
// of the reverse proxy. /health is answered locally.
func NewRouter(cfg RouterConfig, verifier *auth.TokenVerifier, sync *authUC.SyncUserUseCase, log logger.Logger) (*gin.Engine, error) {
	proxy, err := NewProxy(cfg.UpstreamURL, log)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORS(cfg.AllowedOrigins))
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(AccessLog(log))

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

	private := router.Group("/")
	private.Use(BearerAuth(verifier, log))
	private.Use(UserSync(sync, log))
	private.Any("/api/*path", proxy)

	return router, nil
}

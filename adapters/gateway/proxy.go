package gateway

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/khoahotran/learnerhub/pkg/logger"
)

const (
	HeaderKeycloakID = "X-User-Keycloak-Id"
	HeaderUserEmail  = "X-User-Email"
)

// NewProxy forwards every request to target. Identity headers sent by the client
// are replaced with the ones taken from the verified token.
func NewProxy(target string, log logger.Logger) (gin.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q", target)
	}

	rp := httputil.NewSingleHostReverseProxy(u)
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error("Upstream request failed", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream unavailable"}`))
	}

	return func(c *gin.Context) {
		req := c.Request
		req.Header.Del(HeaderKeycloakID)
		req.Header.Del(HeaderUserEmail)
		if claims, ok := ClaimsFromGinContext(c); ok {
			req.Header.Set(HeaderKeycloakID, claims.ExternalID())
			req.Header.Set(HeaderUserEmail, claims.Email)
		}
		otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
		rp.ServeHTTP(c.Writer, req)
	}, nil
}

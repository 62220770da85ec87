package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	authUC "github.com/khoahotran/learnerhub/internal/application/usecase/auth"
)

// UserServiceClient talks to the user service REST API.
type UserServiceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewUserServiceClient(baseURL string, timeout time.Duration) *UserServiceClient {
	return &UserServiceClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ authUC.UserDirectory = (*UserServiceClient)(nil)

// ExistsByKeycloakID reports false on 404 and an error on any other non-200.
func (c *UserServiceClient) ExistsByKeycloakID(ctx context.Context, keycloakID string) (bool, error) {
	endpoint := c.baseURL + "/api/users/keycloak?keycloakId=" + url.QueryEscape(keycloakID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("building lookup request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError(resp)
	}
}

func (c *UserServiceClient) CreateUser(ctx context.Context, u authUC.NewUser) error {
	body, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/users", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func (c *UserServiceClient) do(req *http.Request) (*http.Response, error) {
	otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling user service: %w", err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	var env struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &env) == nil && env.Message != "" {
		return fmt.Errorf("user service returned %d: %s", resp.StatusCode, env.Message)
	}
	return fmt.Errorf("user service returned %d", resp.StatusCode)
}

package account

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/fitpulse/ranking-engine/internal/domain/user"
	"github.com/fitpulse/ranking-engine/internal/platform/logging"
	"github.com/fitpulse/ranking-engine/internal/platform/resilience"
	"github.com/fitpulse/ranking-engine/internal/usecase"
)

var errIntrospectTransient = crerr.New("account introspection transient failure")

type ClientConfig struct {
	BaseURL        string
	IntrospectPath string
	ProfilesPath   string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the account service for token introspection and profile
// lookups. Both run on the request path, so a breaker shields the engine
// from an account-service outage.
type Client struct {
	httpClient     *http.Client
	introspectURL  string
	profilesURL    string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig, httpClient *http.Client, logger *logging.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		introspectURL:  buildURL(cfg.BaseURL, cfg.IntrospectPath),
		profilesURL:    buildURL(cfg.BaseURL, cfg.ProfilesPath),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	var decoded introspectResponse
	err := c.call(ctx, c.introspectURL, introspectRequest{Token: token}, &decoded)
	if err != nil {
		return user.Principal{}, err
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID:  decoded.UserID,
		Email:   decoded.Email,
		IsAdmin: decoded.IsAdmin,
	}, nil
}

// GetProfiles resolves display profiles for a batch of user ids. Ids the
// account service does not know are absent from the result.
func (c *Client) GetProfiles(ctx context.Context, userIDs []string) (map[string]user.Profile, error) {
	if len(userIDs) == 0 {
		return map[string]user.Profile{}, nil
	}

	var decoded profilesResponse
	if err := c.call(ctx, c.profilesURL, profilesRequest{UserIDs: userIDs}, &decoded); err != nil {
		return nil, err
	}

	out := make(map[string]user.Profile, len(decoded.Profiles))
	for _, row := range decoded.Profiles {
		if strings.TrimSpace(row.UserID) == "" {
			continue
		}
		out[row.UserID] = user.Profile{
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			PhotoURL:    row.PhotoURL,
		}
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, endpoint string, payload, out any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "account circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: account service circuit open", usecase.ErrDependencyUnavailable)
		}
	}

	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal account request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(encoded)))
	if err != nil {
		return crerr.Wrap(err, "create account request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: request %s: %v", errIntrospectTransient, endpoint, err)
		c.recordCircuitResult(callErr)
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, callErr)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.recordCircuitResult(nil)
		return fmt.Errorf("%w: account service denied request", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		callErr := fmt.Errorf("%w: read account response: %v", errIntrospectTransient, err)
		c.recordCircuitResult(callErr)
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, callErr)
	}

	if resp.StatusCode != http.StatusOK {
		callErr := fmt.Errorf("%w: account call status=%d endpoint=%s", errIntrospectTransient, resp.StatusCode, endpoint)
		c.recordCircuitResult(callErr)
		c.logger.WarnContext(ctx, "account service non-200", "statusCode", resp.StatusCode, "endpoint", endpoint)
		return fmt.Errorf("%w: account service returned %d", usecase.ErrDependencyUnavailable, resp.StatusCode)
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		callErr := fmt.Errorf("%w: unmarshal account response: %v", errIntrospectTransient, err)
		c.recordCircuitResult(callErr)
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, callErr)
	}

	c.recordCircuitResult(nil)
	return nil
}

func (c *Client) recordCircuitResult(err error) {
	if !c.circuitEnabled {
		return
	}
	if err != nil && crerr.Is(err, errIntrospectTransient) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active  bool   `json:"active"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

type profilesRequest struct {
	UserIDs []string `json:"user_ids"`
}

type profilesResponse struct {
	Profiles []profilePayload `json:"profiles"`
}

type profilePayload struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}

package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alex-user-go/hotelsearch/internal/obs"
)

const (
	tokenPath = "/v1/security/oauth2/token"

	// A cached token is only handed out while it has more than this left.
	expiryMargin = 60 * time.Second
)

// Credentials is a client-credentials pair.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// TokenState is a snapshot of the cached bearer token.
type TokenState struct {
	Token     string
	ExpiresAt time.Time
}

// TokenManager owns the single cached access token for the provider.
// Concurrent refreshes are collapsed into one exchange.
type TokenManager struct {
	tokenURL    string
	credentials Credentials
	httpClient  *http.Client
	metrics     *obs.Metrics
	logger      *slog.Logger
	now         func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

// TokenOption configures a TokenManager.
type TokenOption func(*TokenManager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

// NewTokenManager creates a TokenManager for the provider at baseURL.
func NewTokenManager(baseURL string, creds Credentials, httpClient *http.Client, metrics *obs.Metrics, logger *slog.Logger, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		tokenURL:    strings.TrimRight(baseURL, "/") + tokenPath,
		credentials: creds,
		httpClient:  httpClient,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns a bearer token, exchanging credentials when the cached one
// is missing or within a minute of expiry.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if token, ok := m.cached(); ok {
		return token, nil
	}

	// The exchange is shared, so one caller going away must not cancel it
	// for the others; the HTTP client timeout still bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan("token", func() (any, error) {
		if token, ok := m.cached(); ok {
			return token, nil
		}
		return m.refresh(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", context.Cause(ctx)
	}
}

// Invalidate drops the cached token so the next call performs an exchange.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.token = ""
	m.expiresAt = time.Time{}
	m.mu.Unlock()
}

// State returns the cached token and its expiry.
func (m *TokenManager) State() TokenState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return TokenState{Token: m.token, ExpiresAt: m.expiresAt}
}

func (m *TokenManager) cached() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != "" && m.expiresAt.After(m.now().Add(expiryMargin)) {
		return m.token, true
	}
	return "", false
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	m.logger.Info("requesting new access token")
	m.metrics.IncTokenRefreshes()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", m.credentials.ClientID)
	form.Set("client_secret", m.credentials.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.metrics.IncAuthFailures()
		return "", fmt.Errorf("%w: token request failed: %w", ErrAuth, err)
	}
	defer func() {
		_ = resp.Body.Close() // Explicitly ignore close error
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		m.metrics.IncAuthFailures()
		m.logger.Error("token exchange rejected",
			"status", resp.StatusCode,
			"detail", ExtractDetail(body),
		)
		return "", fmt.Errorf("%w: token endpoint returned status %d", ErrAuth, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		m.metrics.IncAuthFailures()
		return "", fmt.Errorf("%w: failed to parse token response: %w", ErrAuth, err)
	}
	if tr.AccessToken == "" {
		m.metrics.IncAuthFailures()
		return "", fmt.Errorf("%w: token response has no access_token", ErrAuth)
	}

	expiresAt := m.now().Add(time.Duration(tr.ExpiresIn) * time.Second)

	m.mu.Lock()
	m.token = tr.AccessToken
	m.expiresAt = expiresAt
	m.mu.Unlock()

	m.logger.Info("new access token obtained", "expires_at", expiresAt)
	return tr.AccessToken, nil
}

package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotAuthenticated is returned when no token has been linked yet.
var ErrNotAuthenticated = errors.New("not authenticated: run 'drivesort login' first")

const (
	defaultAuthorityURL = "https://login.microsoftonline.com"
	tokenRefreshLeeway  = 5 * time.Minute
)

// tokenState is the persisted authentication state. The file lives outside
// any synced directory and is written with 0600; there is no additional
// encryption at rest.
type tokenState struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope"`
}

// TokenManager persists OAuth tokens and refreshes them transparently. It
// implements TokenSource for the Graph client.
type TokenManager struct {
	path       string
	clientID   string
	tenantID   string
	scopes     []string
	authority  string
	httpClient HTTPDoer

	mu    sync.Mutex
	state tokenState
}

// TokenManagerOption customises TokenManager construction.
type TokenManagerOption func(*TokenManager)

// WithAuthority overrides the identity endpoint (used in tests).
func WithAuthority(baseURL string) TokenManagerOption {
	return func(m *TokenManager) {
		m.authority = strings.TrimRight(baseURL, "/")
	}
}

// WithAuthHTTPClient overrides the HTTP client used for token requests.
func WithAuthHTTPClient(client HTTPDoer) TokenManagerOption {
	return func(m *TokenManager) {
		m.httpClient = client
	}
}

// NewTokenManager builds a token manager storing state at path.
func NewTokenManager(path, clientID, tenantID string, scopes []string, opts ...TokenManagerOption) (*TokenManager, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("token store path is required")
	}
	if strings.TrimSpace(clientID) == "" {
		return nil, errors.New("graph client id is required")
	}
	if strings.TrimSpace(tenantID) == "" {
		tenantID = "common"
	}
	manager := &TokenManager{
		path:       path,
		clientID:   clientID,
		tenantID:   tenantID,
		scopes:     scopes,
		authority:  defaultAuthorityURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(manager)
	}
	if err := manager.load(); err != nil {
		return nil, err
	}
	return manager, nil
}

func (m *TokenManager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read token store: %w", err)
	}
	if err := json.Unmarshal(data, &m.state); err != nil {
		return fmt.Errorf("parse token store %s: %w", m.path, err)
	}
	return nil
}

func (m *TokenManager) save() error {
	if dir := filepath.Dir(m.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token state: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write token store: %w", err)
	}
	return nil
}

// Linked reports whether any token has been stored.
func (m *TokenManager) Linked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.AccessToken != "" || m.state.RefreshToken != ""
}

// AccessToken returns a valid access token, refreshing when the stored one
// is expired or about to expire.
func (m *TokenManager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.AccessToken == "" && m.state.RefreshToken == "" {
		return "", ErrNotAuthenticated
	}
	if m.state.AccessToken != "" && time.Until(m.state.ExpiresAt) > tokenRefreshLeeway {
		return m.state.AccessToken, nil
	}
	if m.state.RefreshToken == "" {
		return "", ErrNotAuthenticated
	}
	if err := m.refreshLocked(ctx); err != nil {
		return "", err
	}
	return m.state.AccessToken, nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	ExpiresIn        int    `json:"expires_in"`
	Scope            string `json:"scope"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (m *TokenManager) tokenEndpoint() string {
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", m.authority, m.tenantID)
}

func (m *TokenManager) refreshLocked(ctx context.Context) error {
	form := url.Values{
		"client_id":     {m.clientID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {m.state.RefreshToken},
		"scope":         {strings.Join(m.scopes, " ")},
	}
	resp, err := m.postForm(ctx, m.tokenEndpoint(), form)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if resp.Error != "" {
		return fmt.Errorf("refresh token: %s: %s", resp.Error, resp.ErrorDescription)
	}
	m.applyLocked(resp)
	return m.save()
}

// Store persists a freshly acquired token response (from the device-code
// flow).
func (m *TokenManager) Store(resp TokenGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = tokenState{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		Scope:        resp.Scope,
	}
	return m.save()
}

func (m *TokenManager) applyLocked(resp *tokenResponse) {
	m.state.AccessToken = resp.AccessToken
	if resp.RefreshToken != "" {
		m.state.RefreshToken = resp.RefreshToken
	}
	m.state.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	if resp.Scope != "" {
		m.state.Scope = resp.Scope
	}
}

func (m *TokenManager) postForm(ctx context.Context, endpoint string, form url.Values) (*tokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &decoded, nil
}

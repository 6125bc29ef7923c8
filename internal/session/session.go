package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/clipworks/clipctl/internal/shared"
)

// Manager owns the backend credential. All reads and writes go through its
// mutex so concurrent API calls observe a consistent credential, and
// invalidation of a given token happens at most once.
type Manager struct {
	store   Store
	client  *http.Client
	baseURL string
	oauth   *oauth2.Config
	logger  *log.Logger

	mu     sync.Mutex
	cred   *Credential
	loaded bool
}

// ManagerOpts configures a session manager.
type ManagerOpts struct {
	Store   Store
	Client  *http.Client
	BaseURL string
	OAuth   *oauth2.Config
	Logger  *log.Logger
}

// NewManager creates a session manager. A nil HTTP client defaults to a
// client with a 30 second timeout.
func NewManager(opts ManagerOpts) *Manager {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Manager{
		store:   opts.Store,
		client:  client,
		baseURL: opts.BaseURL,
		oauth:   opts.OAuth,
		logger:  opts.Logger,
	}
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type assertionRequest struct {
	AccessToken string `json:"access_token"`
}

// SignIn exchanges an email and password for a backend credential and
// persists it.
func (m *Manager) SignIn(ctx context.Context, email, password string) (*Credential, error) {
	var token tokenResponse
	err := m.postJSON(ctx, "/auth/signin", signinRequest{Email: email, Password: password}, &token)
	if err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, shared.ErrAuthFailed
	}
	return m.adopt(token, email)
}

// SignUp registers a new account. The caller signs in afterwards; the backend
// does not issue a credential on signup.
func (m *Manager) SignUp(ctx context.Context, firstName, lastName, email, password string) error {
	var resp struct {
		Message string `json:"message"`
	}
	err := m.postJSON(ctx, "/auth/signup", signupRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  password,
	}, &resp)
	if err != nil {
		return err
	}
	if m.logger != nil {
		m.logger.Info("account created", "email", email)
	}
	return nil
}

// SignInWithAssertion completes a federated sign-in. The authorization code
// from the identity provider is exchanged for a provider token, and the
// provider token is presented to the backend as an identity assertion. If the
// backend rejects the assertion, no credential is kept.
func (m *Manager) SignInWithAssertion(ctx context.Context, code string) (*Credential, error) {
	if m.oauth == nil {
		return nil, fmt.Errorf("%w: identity provider not configured", shared.ErrMissingConfig)
	}

	providerToken, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthExchange, err)
	}

	var token tokenResponse
	err = m.postJSON(ctx, "/auth/google", assertionRequest{AccessToken: providerToken.AccessToken}, &token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthExchange, err)
	}
	if token.AccessToken == "" {
		return nil, shared.ErrAuthExchange
	}
	return m.adopt(token, "")
}

// adopt records a freshly issued credential in memory and in the store.
func (m *Manager) adopt(token tokenResponse, email string) (*Credential, error) {
	cred := &Credential{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		Email:       email,
		ObtainedAt:  time.Now(),
	}

	m.mu.Lock()
	m.cred = cred
	m.loaded = true
	m.mu.Unlock()

	if err := m.store.Save(cred); err != nil {
		return nil, fmt.Errorf("failed to persist credential: %w", err)
	}
	copied := *cred
	return &copied, nil
}

// Credential returns the active credential, loading it from the store on
// first use. Returns ErrNotAuthenticated when no credential is held.
func (m *Manager) Credential() (*Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		cred, err := m.store.Load()
		if err != nil {
			return nil, err
		}
		m.cred = cred
		m.loaded = true
	}

	if m.cred == nil {
		return nil, shared.ErrNotAuthenticated
	}
	copied := *m.cred
	return &copied, nil
}

// SignOut discards the active credential and removes it from the store.
func (m *Manager) SignOut() error {
	m.mu.Lock()
	m.cred = nil
	m.loaded = true
	m.mu.Unlock()
	return m.store.Clear()
}

// Invalidate drops the credential matching the given token. A credential is
// invalidated at most once; calls naming a token that is no longer active are
// no-ops, so concurrent 401 responses cannot clobber a newer sign-in.
func (m *Manager) Invalidate(token string) {
	m.mu.Lock()
	active := m.cred != nil && m.cred.AccessToken == token
	if active {
		m.cred = nil
		m.loaded = true
	}
	m.mu.Unlock()

	if !active {
		return
	}
	if m.logger != nil {
		m.logger.Warn("credential rejected by backend, signed out")
	}
	if err := m.store.Clear(); err != nil && m.logger != nil {
		m.logger.Error("failed to clear stored credential", "error", err)
	}
}

// postJSON sends a JSON request to an auth endpoint and decodes the response.
func (m *Manager) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&detail)
		if detail.Detail != "" {
			return fmt.Errorf("%w: %s", shared.ErrAuthFailed, detail.Detail)
		}
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

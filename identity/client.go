package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrInvalidCredentials is returned when the identity service
	// rejects the submitted inputs.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNetworkFailure is returned when the identity service could not
	// be reached.
	ErrNetworkFailure = errors.New("identity service unreachable")
	// ErrServerError is returned for 5xx responses and malformed
	// success payloads.
	ErrServerError = errors.New("identity service error")
)

// Config holds the identity endpoints and client behavior.
type Config struct {
	BaseURL string

	LoginPath        string
	RegisterPath     string
	GooglePath       string
	ResetRequestPath string
	ResetConfirmPath string

	Timeout time.Duration

	// RetryWithFullEmail re-submits a rejected login with the full
	// email address after first trying its local part as the username,
	// matching the service's signup convention.
	RetryWithFullEmail bool

	// RequestsPerSecond throttles outgoing credential posts when > 0.
	RequestsPerSecond float64
	Burst             int
}

func (c Config) withDefaults() Config {
	if c.LoginPath == "" {
		c.LoginPath = "/login/"
	}
	if c.RegisterPath == "" {
		c.RegisterPath = "/register/"
	}
	if c.GooglePath == "" {
		c.GooglePath = "/auth/google/"
	}
	if c.ResetRequestPath == "" {
		c.ResetRequestPath = "/api/auth/users/reset_password/"
	}
	if c.ResetConfirmPath == "" {
		c.ResetConfirmPath = "/api/auth/users/reset_password_confirm/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	return c
}

// User is the normalized identity record produced from a grant payload.
type User struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
	Role        string
}

// Grant is a successful credential exchange: a user, an opaque bearer
// token, and whatever expiry knowledge the service shared.
type Grant struct {
	User         User
	Token        string
	RefreshToken string

	// ExpiresIn is zero when the service did not say; callers then fall
	// back to the token's exp claim or a configured default.
	ExpiresIn time.Duration
}

// RegisterRequest carries the fields for account creation.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Client talks to the identity service.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a [Client]. httpClient may be nil, in which case a
// client with the configured timeout is used.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	cfg = cfg.withDefaults()
	if cfg.BaseURL == "" {
		return nil, errors.New("identity BaseURL required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{cfg: cfg, http: httpClient}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	return c, nil
}

// Login exchanges a username-or-email and password for a grant. Email
// identifiers first try the local part as username; on rejection the
// full email is retried when [Config.RetryWithFullEmail] is set.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*Grant, error) {
	username := identifier
	if at := strings.IndexByte(identifier, '@'); at > 0 {
		username = identifier[:at]
	}

	grant, err := c.exchange(ctx, c.cfg.LoginPath, map[string]string{
		"username": username,
		"password": secret,
	})
	if err == nil {
		c.fillUsername(grant, username)
		return grant, nil
	}

	if c.cfg.RetryWithFullEmail && username != identifier && errors.Is(err, ErrInvalidCredentials) {
		grant, retryErr := c.exchange(ctx, c.cfg.LoginPath, map[string]string{
			"username": identifier,
			"password": secret,
		})
		if retryErr == nil {
			c.fillUsername(grant, identifier)
			return grant, nil
		}
		return nil, retryErr
	}
	return nil, err
}

// GoogleLogin trades a Google-issued access token for a grant.
func (c *Client) GoogleLogin(ctx context.Context, providerToken string) (*Grant, error) {
	return c.exchange(ctx, c.cfg.GooglePath, map[string]string{
		"access_token": providerToken,
		"token_type":   "Bearer",
	})
}

// Register creates an account and returns its grant.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Grant, error) {
	grant, err := c.exchange(ctx, c.cfg.RegisterPath, req)
	if err == nil {
		c.fillUsername(grant, req.Username)
	}
	return grant, err
}

func (c *Client) fillUsername(grant *Grant, username string) {
	if grant.User.ID == "" {
		grant.User.ID = username
	}
	if grant.User.Username == "" {
		grant.User.Username = username
	}
	if grant.User.DisplayName == "" {
		grant.User.DisplayName = grant.User.Username
	}
}

func (c *Client) exchange(ctx context.Context, path string, body any) (*Grant, error) {
	data, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	var payload grantPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed grant payload: %v", ErrServerError, err)
	}

	grant, err := payload.grant()
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// post issues one JSON POST and returns the raw success body. Failure
// mapping: transport errors (other than caller cancellation) become
// [ErrNetworkFailure], 4xx becomes [ErrInvalidCredentials], everything
// else [ErrServerError].
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrServerError, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrServerError, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrNetworkFailure, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, serverMessage(data))
	default:
		return nil, fmt.Errorf("%w: status %d: %s", ErrServerError, resp.StatusCode, serverMessage(data))
	}
}

// serverMessage digs the human-readable reason out of an error body.
// The service answers variously with message, detail, or error.
func serverMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		for _, msg := range []string{body.Message, body.Detail, body.Error} {
			if msg != "" {
				return msg
			}
		}
	}
	return "request rejected"
}

type userPayload struct {
	ID       any    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Name     string `json:"name"`

	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	FirstCamel string `json:"firstName"`
	LastCamel  string `json:"lastName"`
}

type grantPayload struct {
	Access      string `json:"access"`
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`

	Refresh      string `json:"refresh"`
	RefreshToken string `json:"refresh_token"`

	ExpiresIn     int64 `json:"expiresIn"`
	ExpiresInSnek int64 `json:"expires_in"`

	User     *userPayload `json:"user"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
}

func (p *grantPayload) grant() (*Grant, error) {
	token := firstNonEmpty(p.AccessToken, p.Access, p.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: no access token in response", ErrServerError)
	}

	grant := &Grant{
		Token:        token,
		RefreshToken: firstNonEmpty(p.RefreshToken, p.Refresh),
	}
	if secs := max(p.ExpiresIn, p.ExpiresInSnek); secs > 0 {
		grant.ExpiresIn = time.Duration(secs) * time.Second
	}

	if p.User != nil {
		grant.User = p.User.normalize()
	} else if p.Username != "" || p.Email != "" {
		grant.User = User{Username: p.Username, Email: p.Email}
	}

	if grant.User.ID == "" {
		grant.User.ID = firstNonEmpty(grant.User.Username, grant.User.Email)
	}
	if grant.User.DisplayName == "" {
		grant.User.DisplayName = firstNonEmpty(grant.User.Username, grant.User.Email)
	}
	return grant, nil
}

// normalize collapses the service's duck-typed user shapes into one
// record, so fallback chains exist only here.
func (p *userPayload) normalize() User {
	first := firstNonEmpty(p.FirstName, p.FirstCamel)
	last := firstNonEmpty(p.LastName, p.LastCamel)

	display := p.Name
	if display == "" {
		display = strings.TrimSpace(first + " " + last)
	}
	if display == "" {
		display = firstNonEmpty(p.Username, p.Email)
	}

	return User{
		ID:          stringID(p.ID),
		Username:    p.Username,
		Email:       p.Email,
		DisplayName: display,
		Role:        p.Role,
	}
}

func stringID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

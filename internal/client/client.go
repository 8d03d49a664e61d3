package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/strucbot/strucbot/internal/handler/dto"
)

// Timeouts for API calls.
const (
	clientTimeout         = 60 * time.Second
	dialTimeout           = 10 * time.Second
	tlsHandshakeTimeout   = 10 * time.Second
	responseHeaderTimeout = 45 * time.Second
)

// Client errors.
var (
	// ErrNotLoggedIn means a protected call was made without a session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionExpired means the server rejected the persisted token.
	// The session file is cleared before it is returned.
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// APIError carries the server's error message for a failed call.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the Strucbot API and keeps the session file in sync.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   *SessionStore
}

// New creates a Client against the given server.
func New(baseURL string, sessions *SessionStore) *Client {
	return &Client{
		baseURL:  baseURL,
		sessions: sessions,
		httpClient: &http.Client{
			// Generation calls wait on the model, so the budget is
			// wider than the server's own outbound one.
			Timeout: clientTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: dialTimeout,
				}).DialContext,
				TLSHandshakeTimeout:   tlsHandshakeTimeout,
				ResponseHeaderTimeout: responseHeaderTimeout,
				MaxIdleConns:          10,
				IdleConnTimeout:       90 * time.Second,
			},
		},
	}
}

// Session returns the persisted session, or nil when logged out.
func (c *Client) Session() (*Session, error) {
	return c.sessions.Load()
}

// Register creates a new account. It does not log in.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	req := dto.RegisterRequest{Username: username, Email: email, Password: password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", "", req, nil)
}

// Login authenticates and persists the session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	req := dto.LoginRequest{Username: username, Password: password}

	var resp dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, err
	}

	session := &Session{
		Token: resp.Token,
		User: SessionUser{
			ID:       resp.User.ID,
			Username: resp.User.Username,
			Email:    resp.User.Email,
			Role:     resp.User.Role,
		},
	}
	if err := c.sessions.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout drops the persisted session.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// Profile fetches the current account.
func (c *Client) Profile(ctx context.Context) (*dto.UserResponse, error) {
	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}

	var resp dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile changes username and/or email; empty fields are kept.
// The session file is refreshed with the updated user.
func (c *Client) UpdateProfile(ctx context.Context, username, email string) (*dto.UserResponse, error) {
	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}

	req := dto.UpdateProfileRequest{Username: username, Email: email}
	var resp dto.ProfileUpdateResponse
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", token, req, &resp); err != nil {
		return nil, err
	}

	session, err := c.sessions.Load()
	if err == nil && session != nil {
		session.User.Username = resp.User.Username
		session.User.Email = resp.User.Email
		_ = c.sessions.Save(session)
	}

	return &resp.User, nil
}

// Generate asks the server to turn a prompt into a schema record.
func (c *Client) Generate(ctx context.Context, prompt string) (*dto.SchemaResponse, error) {
	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}

	req := dto.GenerateSchemaRequest{Prompt: prompt}
	var resp dto.SchemaResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate-schema", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListSchemas returns the account's schema records.
func (c *Client) ListSchemas(ctx context.Context) ([]dto.SchemaResponse, error) {
	token, err := c.requireToken()
	if err != nil {
		return nil, err
	}

	var resp []dto.SchemaResponse
	if err := c.do(ctx, http.MethodGet, "/api/schemas", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteSchema removes one schema record.
func (c *Client) DeleteSchema(ctx context.Context, id string) error {
	token, err := c.requireToken()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/api/schemas/"+id, token, nil, nil)
}

func (c *Client) requireToken() (string, error) {
	session, err := c.sessions.Load()
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", ErrNotLoggedIn
	}
	return session.Token, nil
}

// do runs one API call. Any 401 or 403 clears the persisted session,
// whichever call produced it.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if token != "" {
			_ = c.sessions.Clear()
			return ErrSessionExpired
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr dto.ErrorResponse
		if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Error == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("server returned status %d", resp.StatusCode)}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Package identity is the ledger's view of the auth service: a narrow,
// injectable capability for creating and verifying credentials. The ledger
// never talks to the credential store directly.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coughlinalbert1/distributed-banking/shared/apperr"
)

// RegisterResult is the auth service's answer to a successful registration.
// The ledger persists UserID and PasswordHash on the new account record.
type RegisterResult struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// LoginResult carries a freshly issued bearer token.
type LoginResult struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// Client is the credential capability the ledger depends on.
type Client interface {
	Register(ctx context.Context, username, password string) (*RegisterResult, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// HTTPClient calls the auth service over HTTP. The round trip is synchronous
// and sits on the request path; there is no retry or circuit breaker, so a
// single downstream failure surfaces immediately to the caller.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, username, password string) (*RegisterResult, error) {
	var result RegisterResult
	if err := c.post(ctx, "/v1/auth/register", credentialsPayload{username, password}, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	if result.UserID == "" {
		return nil, fmt.Errorf("%w: auth service returned no user ID", apperr.ErrInternal)
	}
	if result.PasswordHash == "" {
		return nil, fmt.Errorf("%w: auth service returned no password hash", apperr.ErrInternal)
	}
	return &result, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	if err := c.post(ctx, "/v1/auth/login", credentialsPayload{username, password}, http.StatusOK, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("%w: auth service returned no access token", apperr.ErrInternal)
	}
	return &result, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any, wantStatus int, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", apperr.ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to build request: %v", apperr.ErrInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: auth service unreachable: %v", apperr.ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return statusError(resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode auth service response: %v", apperr.ErrInternal, err)
	}
	return nil
}

// statusError re-signals a downstream status as the matching taxonomy error
// so handlers can pass it through; anything unrecognised is internal.
func statusError(status int) error {
	switch status {
	case http.StatusConflict:
		return fmt.Errorf("%w: username already registered", apperr.ErrConflict)
	case http.StatusNotFound:
		return fmt.Errorf("%w: user not found", apperr.ErrNotFound)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: invalid credentials", apperr.ErrUnauthorized)
	default:
		return fmt.Errorf("%w: auth service returned status %d", apperr.ErrInternal, status)
	}
}

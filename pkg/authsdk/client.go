// Package authsdk is a small Go client for the authgate token service.
//
// The zero-dependency way to call the service is plain net/http, but the
// client wraps the endpoints with typed requests, typed errors and sensible
// timeouts so downstream services don't each reinvent that plumbing.
package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to one authgate deployment.
type Client struct {
	rc *resty.Client
}

// Option customises the underlying HTTP client.
type Option func(*resty.Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(rc *resty.Client) { rc.SetTimeout(d) }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(rc *resty.Client) { rc.SetHeader("User-Agent", ua) }
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(10 * time.Second).
		SetHeader("User-Agent", "authgate-sdk/1.0")

	for _, opt := range opts {
		opt(rc)
	}

	return &Client{rc: rc}
}

// Login exchanges a username and password for a signed token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, resty.MethodPost, "/v1/auth/login", LoginRequest{
		Username: username,
		Password: password,
	}, &out, "")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account. The service may have registration disabled,
// in which case this returns an APIError with code "registration_disabled".
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, resty.MethodPost, "/v1/auth/register", req, &out, ""); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword starts the forgotten-password flow. The response is the same
// whether or not the email is known.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, resty.MethodPost, "/v1/auth/reset_password",
		ResetPasswordRequest{Email: email}, nil, "")
}

// ChangePassword completes a password reset using the emailed token.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	return c.do(ctx, resty.MethodPost, "/v1/auth/change_password", req, nil, "")
}

// Me validates a token and returns the account it identifies. This doubles as
// the token validation endpoint for services that only need a yes/no answer.
func (c *Client) Me(ctx context.Context, token string) (*MeResponse, error) {
	var out MeResponse
	if err := c.do(ctx, resty.MethodGet, "/v1/auth/me", nil, &out, token); err != nil {
		return nil, err
	}
	return &out, nil
}

// Livez reports whether the service process is up.
func (c *Client) Livez(ctx context.Context) error {
	return c.do(ctx, resty.MethodGet, "/livez", nil, nil, "")
}

// Readyz reports whether the service can reach its dependencies.
func (c *Client) Readyz(ctx context.Context) error {
	return c.do(ctx, resty.MethodGet, "/readyz", nil, nil, "")
}

func (c *Client) do(ctx context.Context, method, path string, body, result any, bearer string) error {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	if bearer != "" {
		req.SetHeader("Authorization", "Bearer "+bearer)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("authsdk: %s %s: %w", method, path, err)
	}

	if resp.IsError() {
		return parseError(resp)
	}
	return nil
}

func parseError(resp *resty.Response) error {
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Code != "" {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Code:       body.Code,
			Message:    body.Message,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode(),
		Code:       "server_error",
		Message:    fmt.Sprintf("http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String())),
	}
}

// Package api implements the HTTP client for the remote RaulCoin wallet
// service. The client owns no state beyond its connection settings; every
// method performs exactly one request under a bounded context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBaseURL points at the production wallet service.
const DefaultBaseURL = "https://raulocoin.onrender.com/api"

// DefaultTimeout bounds every request so a hung call surfaces as a transport
// error instead of leaving the UI busy forever.
const DefaultTimeout = 10 * time.Second

// Error is a non-2xx response from the service, carrying the service message
// when the body had one.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("service returned %d", e.Status)
}

// IsVerificationRequired reports whether err is the 403 the service sends
// when the account exists but has not completed TOTP enrollment. Login uses
// it to route to the verification screen instead of showing an error.
func IsVerificationRequired(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusForbidden &&
		strings.Contains(strings.ToLower(apiErr.Message), "totp")
}

// Client talks to one wallet service instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// New creates a client for the given base URL. A zero timeout falls back to
// DefaultTimeout; a nil logger falls back to zap.NewNop.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Register creates an account and returns the TOTP enrollment payload.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	var resp RegisterResponse
	err := c.post(ctx, "/register", req, &resp)
	return resp, err
}

// UserDetails fetches the profile snapshot for a username/code pair. It
// doubles as login: the service only answers once the code checks out.
func (c *Client) UserDetails(ctx context.Context, username, code string) (UserDetailsResponse, error) {
	var resp UserDetailsResponse
	err := c.post(ctx, "/user-details", CredentialsRequest{Username: username, TotpToken: code}, &resp)
	return resp, err
}

// VerifyTotpSetup confirms first-time authenticator enrollment.
func (c *Client) VerifyTotpSetup(ctx context.Context, username, code string) (VerifySetupResponse, error) {
	var resp VerifySetupResponse
	err := c.post(ctx, "/verify-totp-setup", CredentialsRequest{Username: username, TotpToken: code}, &resp)
	return resp, err
}

// VerifyTotp performs a step-up check and, on success, returns a single-use
// operation token for the next mutating call.
func (c *Client) VerifyTotp(ctx context.Context, username, code string) (VerifyTotpResponse, error) {
	var resp VerifyTotpResponse
	err := c.post(ctx, "/verify-totp", CredentialsRequest{Username: username, TotpToken: code}, &resp)
	return resp, err
}

// SearchUsers queries the user directory.
func (c *Client) SearchUsers(ctx context.Context, query string) (SearchUsersResponse, error) {
	var resp SearchUsersResponse
	err := c.get(ctx, "/search-users?q="+url.QueryEscape(query), &resp)
	return resp, err
}

// Transfer executes a transfer authorized by an operation token. Exactly one
// call; the client never retries a mutating request.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (TransferResponse, error) {
	var resp TransferResponse
	err := c.post(ctx, "/transfer", req, &resp)
	return resp, err
}

// Transactions fetches the history list for a username/code pair.
func (c *Client) Transactions(ctx context.Context, username, code string) (TransactionsResponse, error) {
	var resp TransactionsResponse
	err := c.post(ctx, "/transactions", CredentialsRequest{Username: username, TotpToken: code}, &resp)
	return resp, err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: serviceMessage(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// serviceMessage pulls the message field out of an error body, if any.
func serviceMessage(data []byte) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	return envelope.Message
}

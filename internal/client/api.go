package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rolechat/internal/models"
)

// APIClient talks to the rolechat backend. The HTTP timeout exceeds the
// server's provider ceiling so a slow upstream surfaces as the server's
// classified error rather than a client-side timeout.
type APIClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// APIError carries the backend's error body for a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// ErrRequestTimeout and ErrServerUnreachable distinguish the two
// client-observed transport failures so the UI can show actionable text.
var (
	ErrRequestTimeout    = errors.New("request timed out")
	ErrServerUnreachable = errors.New("server unreachable")
)

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SetAuthToken attaches a bearer token to subsequent requests.
func (c *APIClient) SetAuthToken(token string) {
	c.authToken = token
}

// Login exchanges credentials for a bearer token and stores it on the
// client.
func (c *APIClient) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		AuthToken string `json:"auth_token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/users/login",
		map[string]string{"username": username, "password": password}, &out)
	if err != nil {
		return "", err
	}
	c.authToken = out.AuthToken
	return out.AuthToken, nil
}

// Register creates an account.
func (c *APIClient) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/api/users/register",
		map[string]string{"username": username, "password": password}, nil)
}

// Logout revokes the stored token server-side and forgets it locally.
func (c *APIClient) Logout(ctx context.Context) error {
	if c.authToken == "" {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, "/api/users/logout", nil, nil); err != nil {
		return err
	}
	c.authToken = ""
	return nil
}

// SendMessage posts one (message, role) pair and returns the reply text.
func (c *APIClient) SendMessage(ctx context.Context, message, role string) (string, error) {
	var out struct {
		Reply string `json:"reply"`
	}
	err := c.do(ctx, http.MethodPost, "/api/chat",
		map[string]string{"message": message, "role": role}, &out)
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// History fetches the full persisted conversation for the caller's scope.
func (c *APIClient) History(ctx context.Context) ([]models.Message, error) {
	var out struct {
		History []models.Message `json:"history"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/chat/history", nil, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// ClearHistory truncates the caller's persisted conversation.
func (c *APIClient) ClearHistory(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/chat/history", nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: "An error occurred."}
		var errBody struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrRequestTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrRequestTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrRequestTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrServerUnreachable, err)
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Client talks to a GoTrue-compatible auth API over HTTPS. It dispatches
// auth events for its own sign-in/sign-out calls; out-of-band changes
// reach it through Dispatch (webhook delivery or the session watcher).
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	hub     *eventHub

	mu    sync.Mutex
	token string
}

// NewClient returns a Client for the auth API rooted at baseURL
// (e.g. "https://xyz.supabase.co/auth/v1").
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
		hub:     newEventHub(),
	}
}

// apiError carries the provider's error payload. The message is
// surfaced verbatim to the caller.
type apiError struct {
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	ErrorCode        string `json:"error"`
}

func (e *apiError) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	case e.ErrorCode != "":
		return e.ErrorCode
	default:
		return "request failed"
	}
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/token?grant_type=password", body, &session); err != nil {
		return nil, err
	}

	c.setToken(session.AccessToken)
	return &session, nil
}

// SignUp creates an account and opens a session for it.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*Session, error) {
	body := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		body["data"] = metadata
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/signup", body, &session); err != nil {
		return nil, err
	}

	c.setToken(session.AccessToken)
	return &session, nil
}

// SignOut terminates the provider session. The local token is dropped
// even when the remote call fails.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)

	c.setToken("")
	return err
}

// GetSession asks the provider whether the held token still maps to an
// account. Absent or expired sessions return (nil, nil).
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	token := c.currentToken()
	if token == "" {
		return nil, nil
	}

	var user User
	if err := c.do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		if isUnauthorized(err) {
			return nil, nil
		}
		return nil, err
	}
	return &Session{AccessToken: token, User: user}, nil
}

// UpdateUser pushes metadata onto the current account.
func (c *Client) UpdateUser(ctx context.Context, metadata map[string]any) error {
	return c.do(ctx, http.MethodPut, "/user", map[string]any{"data": metadata}, nil)
}

// OnAuthStateChange registers fn for auth events observed outside this
// client's own calls: webhook deliveries and session watcher detections
// arriving through Dispatch.
func (c *Client) OnAuthStateChange(fn func(Event)) *Subscription {
	return c.hub.subscribe(fn)
}

// Dispatch injects an externally observed auth event, such as a provider
// webhook or the session watcher's revocation detection.
func (c *Client) Dispatch(ev Event) {
	if ev.Type == SignedOut {
		c.setToken("")
	} else if ev.Session != nil {
		c.setToken(ev.Session.AccessToken)
	}
	c.hub.dispatch(ev)
}

// statusError is an HTTP failure with the provider's own message.
type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string { return e.message }

func isUnauthorized(err error) bool {
	se, ok := err.(*statusError)
	return ok && (se.code == http.StatusUnauthorized || se.code == http.StatusForbidden)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return &statusError{code: resp.StatusCode, message: apiErr.message()}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

var _ AuthProvider = (*Client)(nil)

// Package api is the typed REST client for the mingle backend. Every
// call takes a context, carries the bearer token of the resolved
// identity, and surfaces failures as FetchError, MutationError or
// ConflictError. There are no silent retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

// Client talks to the backend REST surface.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *zap.Logger

	mu    sync.RWMutex
	token string
}

// New creates a client for the given base URL.
func New(baseURL string, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	return &Client{
		base:   u,
		http:   &http.Client{Timeout: requestTimeout},
		logger: logger,
	}, nil
}

// SetToken installs the bearer token used on subsequent calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken drops the bearer token on sign-out.
func (c *Client) ClearToken() { c.SetToken("") }

// Login authenticates and returns the identity with its token.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	var u User
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &u, "login"); err != nil {
		return nil, err
	}
	return &u, nil
}

// RegisterPayload is the registration request body.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account and returns the identity.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, &u, "register"); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetProfile fetches a user's profile.
func (c *Client) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/users/"+userID+"/profile", nil, &p, "get profile"); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile applies a partial profile update and returns the
// updated profile.
func (c *Client) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodPut, "/users/"+userID+"/profile", patch, &p, "update profile"); err != nil {
		return nil, err
	}
	return &p, nil
}

// CompleteOnboarding posts the aggregated onboarding payload.
func (c *Client) CompleteOnboarding(ctx context.Context, userID string, payload OnboardingPayload) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodPost, "/users/"+userID+"/onboarding", payload, &p, "complete onboarding"); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListMatches fetches a user's candidate connections, in server order.
func (c *Client) ListMatches(ctx context.Context, userID string) ([]Match, error) {
	var matches []Match
	if err := c.do(ctx, http.MethodGet, "/users/"+userID+"/matches", nil, &matches, "list matches"); err != nil {
		return nil, err
	}
	return matches, nil
}

// Connect requests a connection with a match and returns its new state.
func (c *Client) Connect(ctx context.Context, userID, matchID string) (*Match, error) {
	var m Match
	body := map[string]string{"matchId": matchID}
	if err := c.do(ctx, http.MethodPost, "/users/"+userID+"/connections", body, &m, "connect"); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListEvents fetches the available events.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/events", nil, &events, "list events"); err != nil {
		return nil, err
	}
	return events, nil
}

// ListConversations fetches the conversation list for a user.
func (c *Client) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	var convs []Conversation
	if err := c.do(ctx, http.MethodGet, "/users/"+userID+"/conversations", nil, &convs, "list conversations"); err != nil {
		return nil, err
	}
	return convs, nil
}

// ListMessages fetches the ordered message sequence of a conversation.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	var msgs []Message
	if err := c.do(ctx, http.MethodGet, "/conversations/"+conversationID+"/messages", nil, &msgs, "list messages"); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage posts a new message and returns the created message with
// its server-assigned id.
func (c *Client) SendMessage(ctx context.Context, conversationID, content string) (*Message, error) {
	var m Message
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/conversations/"+conversationID+"/messages", body, &m, "send message"); err != nil {
		return nil, err
	}
	return &m, nil
}

// StartConversation creates a conversation with a participant. The
// backend rejects a duplicate pairing with 409, surfaced as
// ConflictError.
func (c *Client) StartConversation(ctx context.Context, participantID string) (*Conversation, error) {
	var conv Conversation
	body := map[string]string{"participantId": participantID}
	if err := c.do(ctx, http.MethodPost, "/conversations", body, &conv, "start conversation"); err != nil {
		return nil, err
	}
	return &conv, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, op string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	c.mu.RUnlock()

	resp, err := c.http.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("request failed", zap.String("op", op), zap.Error(err))
		}
		return c.wrap(op, method, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusConflict {
			return &ConflictError{Op: op, Message: readErrorMessage(resp.Body)}
		}
		if c.logger != nil {
			c.logger.Warn("backend error",
				zap.String("op", op),
				zap.Int("status", resp.StatusCode))
		}
		return c.wrap(op, method, resp.StatusCode, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.wrap(op, method, 0, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// wrap classifies a failure: reads get FetchError, writes MutationError.
func (c *Client) wrap(op, method string, status int, err error) error {
	if method == http.MethodGet {
		return &FetchError{Op: op, StatusCode: status, Err: err}
	}
	return &MutationError{Op: op, StatusCode: status, Err: err}
}

func readErrorMessage(r io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// Package identity holds the authenticated user for the running
// client. Stores that depend on the identity subscribe to its bus
// topics: "identity.resolved" fires once a user is known and
// "identity.cleared" on sign-out, at which point all cached state
// derived from the old identity must be dropped.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/bus"
	"go.uber.org/zap"
)

// Authenticator is the slice of the REST client the provider needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.User, error)
	Register(ctx context.Context, payload api.RegisterPayload) (*api.User, error)
	SetToken(token string)
	ClearToken()
}

// Provider resolves and holds the current identity.
type Provider struct {
	mu        sync.RWMutex
	auth      Authenticator
	bus       *bus.Bus
	logger    *zap.Logger
	tokenPath string
	user      *api.User
}

// New creates a provider that persists the session at tokenPath.
func New(auth Authenticator, b *bus.Bus, logger *zap.Logger, tokenPath string) *Provider {
	return &Provider{auth: auth, bus: b, logger: logger, tokenPath: tokenPath}
}

// Current returns a copy of the resolved user, or nil before login.
func (p *Provider) Current() *api.User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return nil
	}
	u := *p.user
	return &u
}

// CurrentID returns the resolved user id, or "" before login.
func (p *Provider) CurrentID() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.user == nil {
		return ""
	}
	return p.user.ID
}

// Login authenticates against the backend and resolves the identity.
func (p *Provider) Login(ctx context.Context, email, password string) (*api.User, error) {
	u, err := p.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	p.adopt(u)
	return p.Current(), nil
}

// Register creates an account and resolves the identity.
func (p *Provider) Register(ctx context.Context, payload api.RegisterPayload) (*api.User, error) {
	u, err := p.auth.Register(ctx, payload)
	if err != nil {
		return nil, err
	}
	p.adopt(u)
	return p.Current(), nil
}

// Resume restores a persisted session, if one exists. Returns false
// when there is nothing to resume.
func (p *Provider) Resume() bool {
	data, err := os.ReadFile(p.tokenPath)
	if err != nil {
		return false
	}
	var u api.User
	if err := json.Unmarshal(data, &u); err != nil || u.Token == "" {
		return false
	}
	p.adopt(&u)
	return true
}

// SignOut clears the identity. Dependent stores react to the
// "identity.cleared" topic by dropping their cached state.
func (p *Provider) SignOut() {
	p.mu.Lock()
	p.user = nil
	p.mu.Unlock()

	p.auth.ClearToken()
	_ = os.Remove(p.tokenPath)
	p.bus.Emit("identity.cleared", nil)
	if p.logger != nil {
		p.logger.Info("signed out")
	}
}

// SetOnboarded flips the onboarding flag after the flow completes.
func (p *Provider) SetOnboarded() {
	p.mu.Lock()
	if p.user != nil {
		p.user.Onboarded = true
	}
	u := p.user
	p.mu.Unlock()
	if u != nil {
		p.persist(u)
		p.bus.Emit("identity.updated", u.ID)
	}
}

func (p *Provider) adopt(u *api.User) {
	p.mu.Lock()
	p.user = u
	p.mu.Unlock()

	p.auth.SetToken(u.Token)
	p.persist(u)
	p.bus.Emit("identity.resolved", u.ID)
	if p.logger != nil {
		p.logger.Info("identity resolved", zap.String("user_id", u.ID))
	}
}

func (p *Provider) persist(u *api.User) {
	data, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := os.WriteFile(p.tokenPath, data, 0600); err != nil && p.logger != nil {
		p.logger.Warn("persist session", zap.Error(err))
	}
}

// RequireID returns the current user id or an error when no identity
// is resolved. Fetches must never run with an undefined identity.
func (p *Provider) RequireID() (string, error) {
	id := p.CurrentID()
	if id == "" {
		return "", fmt.Errorf("no identity resolved")
	}
	return id, nil
}

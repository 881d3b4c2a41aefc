// Package profile holds the signed-in user's profile plus the match
// and event feeds shown on the dashboard. Profile edits are
// pessimistic: local state only changes once the backend confirms.
package profile

import (
	"context"
	"fmt"
	"sync"

	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/bus"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// Backend is the slice of the REST client the store needs.
type Backend interface {
	GetProfile(ctx context.Context, userID string) (*api.Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch api.ProfilePatch) (*api.Profile, error)
	ListMatches(ctx context.Context, userID string) ([]api.Match, error)
	Connect(ctx context.Context, userID, matchID string) (*api.Match, error)
	ListEvents(ctx context.Context) ([]api.Event, error)
}

// Identity resolves the current user for fetches.
type Identity interface {
	RequireID() (string, error)
}

// Store caches the profile, match and event state for the session.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	identity Identity
	bus      *bus.Bus
	logger   *zap.Logger

	profile  *api.Profile
	matches  []api.Match
	events   []api.Event
	ignored  map[string]bool
	updating bool
	unsub    func()
	cancel   context.CancelFunc
}

// NewStore creates the profile store.
func NewStore(backend Backend, ident Identity, b *bus.Bus, logger *zap.Logger) *Store {
	return &Store{
		backend:  backend,
		identity: ident,
		bus:      b,
		logger:   logger,
		ignored:  make(map[string]bool),
	}
}

// Start subscribes to identity changes: a resolved identity (or a
// freshly completed onboarding) triggers a refresh, a cleared identity
// drops all state.
func (s *Store) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	identCh, unsubIdent := s.bus.Subscribe("identity.", 16)
	onbCh, unsubOnb := s.bus.Subscribe("onboarding.completed", 4)
	s.unsub = func() {
		unsubIdent()
		unsubOnb()
	}
	go func() {
		for {
			select {
			case evt := <-identCh:
				switch evt.Topic {
				case "identity.resolved":
					if err := s.Refresh(ctx); err != nil && s.logger != nil {
						s.logger.Warn("profile refresh failed", zap.Error(err))
					}
				case "identity.cleared":
					s.Reset()
				}
			case <-onbCh:
				if err := s.Refresh(ctx); err != nil && s.logger != nil {
					s.logger.Warn("profile refresh failed", zap.Error(err))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the subscription goroutine and the bus subscriptions.
func (s *Store) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.unsub != nil {
		s.unsub()
	}
}

// Profile returns a copy of the cached profile, or nil before the
// first successful fetch.
func (s *Store) Profile() *api.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	p.Interests = append([]string(nil), s.profile.Interests...)
	return &p
}

// Matches returns the match feed with locally ignored entries removed.
func (s *Store) Matches() []api.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Match, 0, len(s.matches))
	for _, m := range s.matches {
		if !s.ignored[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// Events returns the cached event feed.
func (s *Store) Events() []api.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.Event(nil), s.events...)
}

// Refresh fetches the profile and both dashboard feeds. Feed failures
// are logged but do not fail the refresh; the profile fetch does.
func (s *Store) Refresh(ctx context.Context) error {
	userID, err := s.identity.RequireID()
	if err != nil {
		return err
	}

	p, err := s.backend.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.profile = p
	s.mu.Unlock()
	s.bus.Emit("profile.updated", userID)

	if matches, err := s.backend.ListMatches(ctx, userID); err != nil {
		if s.logger != nil {
			s.logger.Warn("match feed fetch failed", zap.Error(err))
		}
	} else {
		s.mu.Lock()
		s.matches = matches
		s.mu.Unlock()
		s.bus.Emit("profile.matches_updated", len(matches))
	}

	if events, err := s.backend.ListEvents(ctx); err != nil {
		if s.logger != nil {
			s.logger.Warn("event feed fetch failed", zap.Error(err))
		}
	} else {
		s.mu.Lock()
		s.events = events
		s.mu.Unlock()
		s.bus.Emit("profile.events_updated", len(events))
	}
	return nil
}

// Update sends a partial profile edit to the backend and adopts the
// confirmed result. The cached profile is untouched while the request
// is in flight or when it fails; concurrent edits are rejected.
func (s *Store) Update(ctx context.Context, patch api.ProfilePatch) (*api.Profile, error) {
	userID, err := s.identity.RequireID()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.updating {
		s.mu.Unlock()
		return nil, fmt.Errorf("a profile update is already in flight")
	}
	s.updating = true
	s.mu.Unlock()

	p, err := s.backend.UpdateProfile(ctx, userID, patch)

	s.mu.Lock()
	s.updating = false
	if err == nil {
		s.profile = p
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	s.bus.Emit("profile.updated", userID)
	return s.Profile(), nil
}

// Connect sends a connection request for a match and adopts the
// backend's updated match row.
func (s *Store) Connect(ctx context.Context, matchID string) error {
	userID, err := s.identity.RequireID()
	if err != nil {
		return err
	}

	updated, err := s.backend.Connect(ctx, userID, matchID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for i, m := range s.matches {
		if m.ID == matchID {
			s.matches[i] = *updated
		}
	}
	s.mu.Unlock()
	s.bus.Emit("profile.matches_updated", matchID)
	return nil
}

// Ignore hides a match locally. The backend keeps no record of
// ignores; they last for the session.
func (s *Store) Ignore(matchID string) {
	s.mu.Lock()
	s.ignored[matchID] = true
	s.mu.Unlock()
	s.bus.Emit("profile.matches_updated", matchID)
}

// ShareQR renders the profile's share link as a terminal QR code.
func (s *Store) ShareQR(baseURL string) (string, error) {
	userID, err := s.identity.RequireID()
	if err != nil {
		return "", err
	}
	code, err := qrcode.New(fmt.Sprintf("%s/profile/%s", baseURL, userID), qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("render share code: %w", err)
	}
	return code.ToSmallString(false), nil
}

// Reset drops all cached state. Called on sign-out.
func (s *Store) Reset() {
	s.mu.Lock()
	s.profile = nil
	s.matches = nil
	s.events = nil
	s.ignored = make(map[string]bool)
	s.mu.Unlock()
	s.bus.Emit("profile.updated", "")
}

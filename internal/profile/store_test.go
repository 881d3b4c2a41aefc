package profile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/bus"
)

type fakeIdentity struct{ id string }

func (f *fakeIdentity) RequireID() (string, error) {
	if f.id == "" {
		return "", errors.New("no identity resolved")
	}
	return f.id, nil
}

type fakeBackend struct {
	mu sync.Mutex

	profile    *api.Profile
	profileErr error

	matches    []api.Match
	matchesErr error

	events    []api.Event
	eventsErr error

	updateErr     error
	updateRelease chan struct{} // when set, UpdateProfile blocks until closed
	updateCalls   int
}

func (f *fakeBackend) GetProfile(_ context.Context, _ string) (*api.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, _ string, patch api.ProfilePatch) (*api.Profile, error) {
	f.mu.Lock()
	f.updateCalls++
	release := f.updateRelease
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	p := *f.profile
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	f.profile = &p
	return &p, nil
}

func (f *fakeBackend) ListMatches(_ context.Context, _ string) ([]api.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.matchesErr != nil {
		return nil, f.matchesErr
	}
	return append([]api.Match(nil), f.matches...), nil
}

func (f *fakeBackend) Connect(_ context.Context, _, matchID string) (*api.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.ID == matchID {
			m.IsConnected = true
			return &m, nil
		}
	}
	return nil, errors.New("match not found")
}

func (f *fakeBackend) ListEvents(_ context.Context) ([]api.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return append([]api.Event(nil), f.events...), nil
}

func newTestStore(backend *fakeBackend) *Store {
	return NewStore(backend, &fakeIdentity{id: "u1"}, bus.New(), nil)
}

func TestRefreshPopulatesEverything(t *testing.T) {
	backend := &fakeBackend{
		profile: &api.Profile{ID: "u1", Name: "Ana", Bio: "I build things."},
		matches: []api.Match{{ID: "m1", Name: "Bo"}},
		events:  []api.Event{{ID: "e1", Title: "Meetup"}},
	}
	s := newTestStore(backend)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() = %v", err)
	}
	if p := s.Profile(); p == nil || p.Name != "Ana" {
		t.Errorf("Profile() = %+v", p)
	}
	if m := s.Matches(); len(m) != 1 || m[0].ID != "m1" {
		t.Errorf("Matches() = %+v", m)
	}
	if e := s.Events(); len(e) != 1 || e[0].ID != "e1" {
		t.Errorf("Events() = %+v", e)
	}
}

func TestRefreshSurvivesFeedFailures(t *testing.T) {
	backend := &fakeBackend{
		profile:    &api.Profile{ID: "u1", Name: "Ana"},
		matchesErr: errors.New("feed down"),
		eventsErr:  errors.New("feed down"),
	}
	s := newTestStore(backend)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() = %v, feed failures should not fail it", err)
	}
	if s.Profile() == nil {
		t.Error("profile not cached")
	}
}

func TestRefreshProfileFailureFails(t *testing.T) {
	backend := &fakeBackend{profileErr: errors.New("network down")}
	s := newTestStore(backend)
	if err := s.Refresh(context.Background()); err == nil {
		t.Error("Refresh() succeeded without a profile")
	}
}

func TestUpdateAdoptsConfirmedProfile(t *testing.T) {
	backend := &fakeBackend{profile: &api.Profile{ID: "u1", Name: "Ana", Bio: "Old bio here."}}
	s := newTestStore(backend)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	bio := "A new bio, long enough."
	p, err := s.Update(context.Background(), api.ProfilePatch{Bio: &bio})
	if err != nil {
		t.Fatalf("Update() = %v", err)
	}
	if p.Bio != bio {
		t.Errorf("returned bio = %q", p.Bio)
	}
	if got := s.Profile().Bio; got != bio {
		t.Errorf("cached bio = %q", got)
	}
}

func TestUpdateFailureLeavesCacheUntouched(t *testing.T) {
	backend := &fakeBackend{profile: &api.Profile{ID: "u1", Bio: "Old bio here."}}
	s := newTestStore(backend)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	backend.mu.Lock()
	backend.updateErr = errors.New("network down")
	backend.mu.Unlock()

	bio := "A new bio, long enough."
	if _, err := s.Update(context.Background(), api.ProfilePatch{Bio: &bio}); err == nil {
		t.Fatal("expected update failure")
	}
	if got := s.Profile().Bio; got != "Old bio here." {
		t.Errorf("cached bio = %q, want original", got)
	}
}

func TestUpdateRejectsConcurrentEdit(t *testing.T) {
	backend := &fakeBackend{
		profile:       &api.Profile{ID: "u1"},
		updateRelease: make(chan struct{}),
	}
	s := newTestStore(backend)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	bio := "First edit, long enough."
	done := make(chan error, 1)
	go func() {
		_, err := s.Update(context.Background(), api.ProfilePatch{Bio: &bio})
		done <- err
	}()

	// Wait for the first update to reach the backend.
	for {
		backend.mu.Lock()
		calls := backend.updateCalls
		backend.mu.Unlock()
		if calls == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := s.Update(context.Background(), api.ProfilePatch{Bio: &bio}); err == nil {
		t.Error("second in-flight update accepted")
	}

	close(backend.updateRelease)
	if err := <-done; err != nil {
		t.Errorf("first update failed: %v", err)
	}
}

func TestConnectUpdatesMatchRow(t *testing.T) {
	backend := &fakeBackend{
		profile: &api.Profile{ID: "u1"},
		matches: []api.Match{{ID: "m1", Name: "Bo"}},
	}
	s := newTestStore(backend)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.Connect(context.Background(), "m1"); err != nil {
		t.Fatalf("Connect() = %v", err)
	}
	if m := s.Matches(); !m[0].IsConnected {
		t.Errorf("match not marked connected: %+v", m[0])
	}
}

func TestIgnoreHidesMatchLocally(t *testing.T) {
	backend := &fakeBackend{
		profile: &api.Profile{ID: "u1"},
		matches: []api.Match{{ID: "m1"}, {ID: "m2"}},
	}
	s := newTestStore(backend)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.Ignore("m1")
	m := s.Matches()
	if len(m) != 1 || m[0].ID != "m2" {
		t.Errorf("Matches() = %+v after ignore", m)
	}
}

func TestShareQRRendersCode(t *testing.T) {
	s := newTestStore(&fakeBackend{})
	out, err := s.ShareQR("https://mingle.app")
	if err != nil {
		t.Fatalf("ShareQR() = %v", err)
	}
	if strings.Count(out, "\n") < 10 {
		t.Errorf("QR output too small:\n%s", out)
	}
}

func TestResetDropsState(t *testing.T) {
	backend := &fakeBackend{
		profile: &api.Profile{ID: "u1"},
		matches: []api.Match{{ID: "m1"}},
	}
	s := newTestStore(backend)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.Reset()
	if s.Profile() != nil || len(s.Matches()) != 0 || len(s.Events()) != 0 {
		t.Error("state survived reset")
	}
}

func TestStopEndsSubscriptions(t *testing.T) {
	backend := &fakeBackend{profile: &api.Profile{ID: "u1", Name: "Ana"}}
	b := bus.New()
	s := NewStore(backend, &fakeIdentity{id: "u1"}, b, nil)

	s.Start(context.Background())
	b.Emit("identity.resolved", "u1")
	for s.Profile() == nil {
		time.Sleep(time.Millisecond)
	}

	s.Stop()
	s.Reset()
	b.Emit("identity.resolved", "u1")
	time.Sleep(20 * time.Millisecond)
	if s.Profile() != nil {
		t.Error("refresh ran after Stop")
	}
}

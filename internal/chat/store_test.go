package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/bus"
	"github.com/mingleapp/mingle/internal/delivery"
)

type fakeIdentity struct {
	user *api.User
}

func (f *fakeIdentity) Current() *api.User {
	if f.user == nil {
		return nil
	}
	u := *f.user
	return &u
}

func (f *fakeIdentity) RequireID() (string, error) {
	if f.user == nil {
		return "", errors.New("no identity resolved")
	}
	return f.user.ID, nil
}

type fakeBackend struct {
	mu sync.Mutex

	conversations []api.Conversation
	messages      map[string][]api.Message

	sendErr   error
	sendCalls int
	listErr   error
	listCalls int

	startErr     error
	startCalls   int
	startRelease chan struct{} // when set, StartConversation blocks until closed
}

func (f *fakeBackend) ListConversations(_ context.Context, _ string) ([]api.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]api.Conversation(nil), f.conversations...), nil
}

func (f *fakeBackend) listCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeBackend) ListMessages(_ context.Context, conversationID string) ([]api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Message(nil), f.messages[conversationID]...), nil
}

func (f *fakeBackend) SendMessage(_ context.Context, conversationID, content string) (*api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &api.Message{
		ID:             fmt.Sprintf("srv-%d", f.sendCalls),
		ConversationID: conversationID,
		Content:        content,
		Timestamp:      time.Now(),
		Status:         "sent",
	}, nil
}

func (f *fakeBackend) StartConversation(_ context.Context, participantID string) (*api.Conversation, error) {
	f.mu.Lock()
	f.startCalls++
	release := f.startRelease
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &api.Conversation{
		ID:          "conv-" + participantID,
		Participant: api.Participant{ID: participantID, Name: "New"},
	}, nil
}

func fastCadence() delivery.Cadence {
	return delivery.Cadence{
		ToSent:      time.Millisecond,
		ToDelivered: time.Millisecond,
		ToRead:      time.Millisecond,
	}
}

func newTestStore(backend *fakeBackend) *Store {
	ident := &fakeIdentity{user: &api.User{ID: "me", Name: "Me"}}
	return NewStore(backend, nil, bus.New(), nil, ident, fastCadence())
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestLoadConversationsReplacesList(t *testing.T) {
	backend := &fakeBackend{conversations: []api.Conversation{
		{ID: "c1", Participant: api.Participant{ID: "p1", Name: "Ana"}, UnreadCount: 2},
		{ID: "c2", Participant: api.Participant{ID: "p2", Name: "Bo"}},
	}}
	s := newTestStore(backend)
	defer s.Stop()

	if err := s.LoadConversations(context.Background()); err != nil {
		t.Fatalf("LoadConversations() error = %v", err)
	}
	convs := s.Conversations()
	if len(convs) != 2 || convs[0].ID != "c1" || convs[0].UnreadCount != 2 {
		t.Errorf("conversations = %+v", convs)
	}
}

func TestLoadConversationsFailureKeepsPriorList(t *testing.T) {
	backend := &fakeBackend{conversations: []api.Conversation{{ID: "c1"}}}
	s := newTestStore(backend)
	defer s.Stop()

	if err := s.LoadConversations(context.Background()); err != nil {
		t.Fatal(err)
	}
	backend.mu.Lock()
	backend.listErr = errors.New("network down")
	backend.mu.Unlock()

	if err := s.LoadConversations(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := s.Conversations(); len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("prior list lost: %+v", got)
	}
}

func TestSelectZeroesUnreadAndLoads(t *testing.T) {
	backend := &fakeBackend{
		conversations: []api.Conversation{{ID: "c1", UnreadCount: 5}},
		messages: map[string][]api.Message{
			"c1": {{ID: "m1", ConversationID: "c1", SenderID: "p1", Content: "hi", Timestamp: time.Now()}},
		},
	}
	s := newTestStore(backend)
	defer s.Stop()
	if err := s.LoadConversations(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.Select(context.Background(), "c1"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if s.Active() != "c1" {
		t.Errorf("Active() = %q", s.Active())
	}
	if got := s.Conversations()[0].UnreadCount; got != 0 {
		t.Errorf("unread = %d after select", got)
	}
	msgs := s.Messages("c1")
	if len(msgs) != 1 || msgs[0].ID != "m1" || msgs[0].FromMe {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestSelectSameConversationIsNoop(t *testing.T) {
	backend := &fakeBackend{messages: map[string][]api.Message{}}
	s := newTestStore(backend)
	defer s.Stop()

	if err := s.Select(context.Background(), "c1"); err != nil {
		t.Fatal(err)
	}
	backend.mu.Lock()
	backend.listErr = errors.New("should not be called")
	backend.mu.Unlock()
	if err := s.Select(context.Background(), "c1"); err != nil {
		t.Errorf("re-select errored: %v", err)
	}
}

func TestSendMessageOptimisticThenRatchet(t *testing.T) {
	backend := &fakeBackend{messages: map[string][]api.Message{}}
	s := newTestStore(backend)
	defer s.Stop()

	msg, err := s.SendMessage(context.Background(), "c1", delivery.Draft{Text: "hello"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if msg.Body != "hello" || !msg.FromMe {
		t.Errorf("composed = %+v", msg)
	}

	waitFor(t, func() bool {
		msgs := s.Messages("c1")
		return len(msgs) == 1 && msgs[0].Status == delivery.StatusRead
	})
}

func TestSendMessageEmptyDraftRejected(t *testing.T) {
	s := newTestStore(&fakeBackend{})
	defer s.Stop()

	if _, err := s.SendMessage(context.Background(), "c1", delivery.Draft{Text: "   "}); !errors.Is(err, delivery.ErrEmptyMessage) {
		t.Errorf("error = %v, want ErrEmptyMessage", err)
	}
	if len(s.Messages("c1")) != 0 {
		t.Error("empty draft appended a message")
	}
}

func TestSendMessageFailureMarksFailedAndRetryRecovers(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("network down")}
	s := newTestStore(backend)
	defer s.Stop()

	msg, err := s.SendMessage(context.Background(), "c1", delivery.Draft{Text: "hello"})
	if err == nil {
		t.Fatal("expected send failure")
	}
	msgs := s.Messages("c1")
	if len(msgs) != 1 || msgs[0].Status != delivery.StatusFailed {
		t.Fatalf("messages = %+v, want one failed", msgs)
	}

	backend.mu.Lock()
	backend.sendErr = nil
	backend.mu.Unlock()
	if err := s.Retry(context.Background(), "c1", msg.ID); err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	waitFor(t, func() bool {
		return s.Messages("c1")[0].Status == delivery.StatusRead
	})
}

func TestRetryRejectsNonFailedMessage(t *testing.T) {
	backend := &fakeBackend{messages: map[string][]api.Message{}}
	s := newTestStore(backend)
	defer s.Stop()

	msg, err := s.SendMessage(context.Background(), "c1", delivery.Draft{Text: "ok"})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Retry(context.Background(), "c1", msg.ID); err == nil {
		t.Error("Retry() accepted a non-failed message")
	}
}

func TestLoadMessagesRetainsOptimisticEntries(t *testing.T) {
	backend := &fakeBackend{
		sendErr: errors.New("network down"),
		messages: map[string][]api.Message{
			"c1": {{ID: "m1", ConversationID: "c1", SenderID: "p1", Content: "hi", Timestamp: time.Now()}},
		},
	}
	s := newTestStore(backend)
	defer s.Stop()

	failed, _ := s.SendMessage(context.Background(), "c1", delivery.Draft{Text: "lost?"})

	if err := s.LoadMessages(context.Background(), "c1"); err != nil {
		t.Fatalf("LoadMessages() error = %v", err)
	}
	msgs := s.Messages("c1")
	if len(msgs) != 2 {
		t.Fatalf("len(messages) = %d, want fetched + retained failed", len(msgs))
	}
	if msgs[1].ID != failed.ID || msgs[1].Status != delivery.StatusFailed {
		t.Errorf("retained = %+v", msgs[1])
	}
}

func TestApplyRemoteNeverMovesBackward(t *testing.T) {
	backend := &fakeBackend{messages: map[string][]api.Message{}}
	s := newTestStore(backend)
	defer s.Stop()

	msg, err := s.SendMessage(context.Background(), "c1", delivery.Draft{Text: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		return s.Messages("c1")[0].Status == delivery.StatusRead
	})

	if s.ApplyRemote("c1", msg.ID, delivery.StatusDelivered) {
		t.Error("remote update moved status backward")
	}
	if got := s.Messages("c1")[0].Status; got != delivery.StatusRead {
		t.Errorf("status = %q after stale remote update", got)
	}
}

func TestApplyRemoteResolvesServerID(t *testing.T) {
	backend := &fakeBackend{messages: map[string][]api.Message{}}
	// Slow cadence so the simulated ratchet cannot race the remote push.
	slow := delivery.Cadence{ToSent: time.Hour, ToDelivered: time.Hour, ToRead: time.Hour}
	s := NewStore(backend, nil, bus.New(), nil, &fakeIdentity{user: &api.User{ID: "me", Name: "Me"}}, slow)
	defer s.Stop()

	if _, err := s.SendMessage(context.Background(), "c1", delivery.Draft{Text: "hello"}); err != nil {
		t.Fatal(err)
	}
	// The backend acked with srv-1; a push using that id must land on
	// the locally keyed message.
	if !s.ApplyRemote("c1", "srv-1", delivery.StatusRead) {
		t.Fatal("remote update with server id not applied")
	}
	if got := s.Messages("c1")[0].Status; got != delivery.StatusRead {
		t.Errorf("status = %q", got)
	}
}

func TestStartConversationDedupesConcurrentCalls(t *testing.T) {
	backend := &fakeBackend{startRelease: make(chan struct{})}
	s := newTestStore(backend)
	defer s.Stop()

	results := make(chan *Conversation, 2)
	for i := 0; i < 2; i++ {
		go func() {
			conv, err := s.StartConversation(context.Background(), "p9")
			if err != nil {
				t.Errorf("StartConversation() error = %v", err)
			}
			results <- conv
		}()
	}

	waitFor(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.startCalls >= 1
	})
	close(backend.startRelease)

	a, b := <-results, <-results
	if a == nil || b == nil || a.ID != b.ID {
		t.Fatalf("divergent conversations: %+v vs %+v", a, b)
	}
	backend.mu.Lock()
	calls := backend.startCalls
	backend.mu.Unlock()
	if calls != 1 {
		t.Errorf("backend called %d times, want 1", calls)
	}
	if s.Active() != a.ID {
		t.Errorf("Active() = %q, want new conversation", s.Active())
	}
}

func TestStartConversationExistingIsConflict(t *testing.T) {
	backend := &fakeBackend{conversations: []api.Conversation{
		{ID: "c1", Participant: api.Participant{ID: "p1"}},
	}}
	s := newTestStore(backend)
	defer s.Stop()
	if err := s.LoadConversations(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := s.StartConversation(context.Background(), "p1")
	var conflict *api.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("error = %v, want ConflictError", err)
	}
}

func TestResetDropsAllState(t *testing.T) {
	backend := &fakeBackend{
		conversations: []api.Conversation{{ID: "c1"}},
		messages:      map[string][]api.Message{},
	}
	s := newTestStore(backend)
	defer s.Stop()
	if err := s.LoadConversations(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SendMessage(context.Background(), "c1", delivery.Draft{Text: "bye"}); err != nil {
		t.Fatal(err)
	}

	s.Reset()
	if len(s.Conversations()) != 0 || s.Active() != "" || len(s.Messages("c1")) != 0 {
		t.Error("state survived reset")
	}
}

func TestStopEndsIdentitySubscription(t *testing.T) {
	backend := &fakeBackend{conversations: []api.Conversation{{ID: "c1"}}}
	b := bus.New()
	ident := &fakeIdentity{user: &api.User{ID: "me", Name: "Me"}}
	s := NewStore(backend, nil, b, nil, ident, fastCadence())

	s.Start(context.Background())
	b.Emit("identity.resolved", "me")
	waitFor(t, func() bool { return backend.listCallCount() == 1 })

	s.Stop()
	b.Emit("identity.resolved", "me")
	time.Sleep(20 * time.Millisecond)
	if got := backend.listCallCount(); got != 1 {
		t.Errorf("ListConversations calls after Stop = %d, want 1", got)
	}
}

// Package chat owns the conversation list, the active-conversation
// pointer and each conversation's message sequence. All mutations run
// through the store; presentation reads snapshots and reacts to
// "chat.*" bus topics.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mingleapp/mingle/internal/api"
	"github.com/mingleapp/mingle/internal/bus"
	"github.com/mingleapp/mingle/internal/delivery"
	"github.com/mingleapp/mingle/internal/store"
	"go.uber.org/zap"
)

// Backend is the slice of the REST client the store needs.
type Backend interface {
	ListConversations(ctx context.Context, userID string) ([]api.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]api.Message, error)
	SendMessage(ctx context.Context, conversationID, content string) (*api.Message, error)
	StartConversation(ctx context.Context, participantID string) (*api.Conversation, error)
}

// Identity resolves the current user for fetches and composed messages.
type Identity interface {
	Current() *api.User
	RequireID() (string, error)
}

// Conversation is the store's view of one conversation list entry.
type Conversation struct {
	ID          string
	Participant api.Participant
	LastMessage *api.LastMessage
	UnreadCount int
}

// Store maintains client-held conversation state.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	cache    *store.DB // optional; nil disables the local cache
	bus      *bus.Bus
	logger   *zap.Logger
	identity Identity
	sched    *delivery.Scheduler

	conversations []*Conversation
	active        string
	messages      map[string][]*delivery.Message
	loaded        map[string]bool
	serverIDs     map[string]string // local message id → server id after ack

	starting map[string]chan *Conversation // participant id → in-flight start
	unsub    func()
	cancel   context.CancelFunc
}

// NewStore creates the conversation store. cache may be nil.
func NewStore(backend Backend, cache *store.DB, b *bus.Bus, logger *zap.Logger, ident Identity, cadence delivery.Cadence) *Store {
	s := &Store{
		backend:   backend,
		cache:     cache,
		bus:       b,
		logger:    logger,
		identity:  ident,
		messages:  make(map[string][]*delivery.Message),
		loaded:    make(map[string]bool),
		serverIDs: make(map[string]string),
		starting:  make(map[string]chan *Conversation),
	}
	s.sched = delivery.NewScheduler(s, cadence, logger)
	return s
}

// Start warms the store from the local cache and subscribes to
// identity changes: a resolved identity triggers the initial fetch, a
// cleared one tears all cached state down.
func (s *Store) Start(ctx context.Context) {
	s.warmFromCache()

	ctx, s.cancel = context.WithCancel(ctx)
	ch, unsub := s.bus.Subscribe("identity.", 16)
	s.unsub = unsub
	go func() {
		for {
			select {
			case evt := <-ch:
				switch evt.Topic {
				case "identity.resolved":
					if err := s.LoadConversations(ctx); err != nil && s.logger != nil {
						s.logger.Warn("initial conversation load failed", zap.Error(err))
					}
				case "identity.cleared":
					s.Reset()
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels all scheduled work and the identity subscription.
func (s *Store) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.unsub != nil {
		s.unsub()
	}
	s.sched.Stop()
}

// Conversations returns a snapshot of the conversation list.
func (s *Store) Conversations() []*Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Conversation, len(s.conversations))
	for i, c := range s.conversations {
		cp := *c
		out[i] = &cp
	}
	return out
}

// Active returns the active conversation id, or "".
func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Messages returns a snapshot of a conversation's message sequence.
func (s *Store) Messages(conversationID string) []*delivery.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[conversationID]
	out := make([]*delivery.Message, len(msgs))
	for i, m := range msgs {
		cp := *m
		out[i] = &cp
	}
	return out
}

// LoadConversations fetches the conversation list for the current
// identity. On failure the previous list stays intact.
func (s *Store) LoadConversations(ctx context.Context) error {
	userID, err := s.identity.RequireID()
	if err != nil {
		return err
	}

	convs, err := s.backend.ListConversations(ctx, userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.conversations = make([]*Conversation, 0, len(convs))
	for _, c := range convs {
		s.conversations = append(s.conversations, &Conversation{
			ID:          c.ID,
			Participant: c.Participant,
			LastMessage: c.LastMessage,
			UnreadCount: c.UnreadCount,
		})
	}
	s.mu.Unlock()

	s.writeThroughConversations(convs)
	s.bus.Emit("chat.conversations_updated", len(convs))
	return nil
}

// Select makes a conversation active, zeroes its unread counter and
// lazily loads its messages. Selecting the already-active conversation
// is a no-op. Scheduled status timers of the previously displayed
// conversation are cleared.
func (s *Store) Select(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	if s.active == conversationID {
		s.mu.Unlock()
		return nil
	}
	prev := s.active
	s.active = conversationID
	needLoad := conversationID != "" && !s.loaded[conversationID]
	for _, c := range s.conversations {
		if c.ID == conversationID {
			c.UnreadCount = 0
		}
	}
	s.mu.Unlock()

	if prev != "" {
		s.sched.CancelConversation(prev)
	}
	if conversationID == "" {
		s.bus.Emit("chat.active_changed", "")
		return nil
	}
	if s.cache != nil {
		_ = s.cache.SetUnreadCount(conversationID, 0)
	}
	s.bus.Emit("chat.active_changed", conversationID)

	if needLoad {
		return s.LoadMessages(ctx, conversationID)
	}
	return nil
}

// Deselect clears the active conversation, cancelling its timers.
func (s *Store) Deselect() {
	_ = s.Select(context.Background(), "")
}

// LoadMessages fetches a conversation's messages and replaces the
// local sequence wholesale. Optimistic entries still tracked by the
// lifecycle engine (pending or failed, not yet known to the server)
// are re-appended so an in-flight send does not vanish mid-refresh.
func (s *Store) LoadMessages(ctx context.Context, conversationID string) error {
	selfID := ""
	if u := s.identity.Current(); u != nil {
		selfID = u.ID
	}

	fetched, err := s.backend.ListMessages(ctx, conversationID)
	if err != nil {
		return err
	}

	fresh := make([]*delivery.Message, 0, len(fetched))
	seen := make(map[string]bool, len(fetched))
	for _, m := range fetched {
		fresh = append(fresh, wireToLocal(m, selfID))
		seen[m.ID] = true
	}

	s.mu.Lock()
	for _, m := range s.messages[conversationID] {
		if m.Status != delivery.StatusPending && m.Status != delivery.StatusFailed {
			continue
		}
		if seen[m.ID] || seen[s.serverIDs[m.ID]] {
			continue
		}
		fresh = append(fresh, m)
	}
	s.messages[conversationID] = fresh
	s.loaded[conversationID] = true
	s.mu.Unlock()

	s.writeThroughMessages(conversationID, fresh)
	s.bus.Emit("chat.messages_loaded", conversationID)
	return nil
}

// SendMessage composes an optimistic message for the draft, appends it
// to the conversation immediately, and posts it to the backend. On ack
// the server id is adopted and the simulated status ratchet starts; on
// failure the message is kept visible, marked failed, with a retry
// affordance.
func (s *Store) SendMessage(ctx context.Context, conversationID string, draft delivery.Draft) (*delivery.Message, error) {
	u := s.identity.Current()
	if u == nil {
		return nil, fmt.Errorf("no identity resolved")
	}

	msg, err := delivery.Compose(conversationID, u.ID, u.Name, draft)
	if err != nil {
		return nil, err
	}

	s.append(msg)
	s.bus.Emit("chat.message_upserted", msg.ID)

	return msg, s.post(ctx, msg)
}

// Retry re-sends a failed message. The message moves back to pending
// and takes the same path as a fresh send.
func (s *Store) Retry(ctx context.Context, conversationID, messageID string) error {
	s.mu.Lock()
	msg := s.find(conversationID, messageID)
	if msg == nil {
		s.mu.Unlock()
		return fmt.Errorf("message %q not found", messageID)
	}
	if msg.Status != delivery.StatusFailed {
		s.mu.Unlock()
		return fmt.Errorf("message %q is not failed", messageID)
	}
	msg.Status = delivery.StatusPending
	cp := *msg
	s.mu.Unlock()

	s.cacheStatus(conversationID, messageID, delivery.StatusPending)
	s.bus.Emit("chat.message_upserted", messageID)
	return s.post(ctx, &cp)
}

// StartConversation creates a conversation with a participant and
// makes it active. Concurrent calls for the same participant are
// deduped: the second caller waits for the first result instead of
// creating a second conversation. A backend 409 surfaces as
// api.ConflictError.
func (s *Store) StartConversation(ctx context.Context, participantID string) (*Conversation, error) {
	if _, err := s.identity.RequireID(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	// Already have one locally: just select it.
	for _, c := range s.conversations {
		if c.Participant.ID == participantID {
			id := c.ID
			s.mu.Unlock()
			return nil, &api.ConflictError{Op: "start conversation", Message: "conversation with participant already exists: " + id}
		}
	}
	if waitCh, inFlight := s.starting[participantID]; inFlight {
		s.mu.Unlock()
		select {
		case conv := <-waitCh:
			if conv == nil {
				return nil, fmt.Errorf("start conversation with %q failed", participantID)
			}
			return conv, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	done := make(chan *Conversation, 1)
	s.starting[participantID] = done
	s.mu.Unlock()

	created, err := s.backend.StartConversation(ctx, participantID)

	s.mu.Lock()
	delete(s.starting, participantID)
	if err != nil {
		s.mu.Unlock()
		done <- nil
		close(done)
		return nil, err
	}
	conv := &Conversation{
		ID:          created.ID,
		Participant: created.Participant,
		LastMessage: created.LastMessage,
		UnreadCount: created.UnreadCount,
	}
	s.conversations = append(s.conversations, conv)
	s.active = conv.ID
	s.loaded[conv.ID] = true
	s.mu.Unlock()
	done <- conv
	close(done)

	s.writeThroughConversations([]api.Conversation{*created})
	s.bus.Emit("chat.conversations_updated", 1)
	s.bus.Emit("chat.active_changed", conv.ID)
	return conv, nil
}

// ApplyRemote consumes a backend-pushed status update for a message,
// clamped so it never moves the status backward.
func (s *Store) ApplyRemote(conversationID, messageID string, status delivery.Status) bool {
	return s.sched.ApplyRemote(conversationID, messageID, status)
}

// SearchMessages runs a full-text query over the cached message
// history. Pass conversationID "" to search every conversation.
func (s *Store) SearchMessages(query, conversationID string, limit int) ([]store.SearchResult, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.SearchMessages(query, conversationID, limit)
}

// Reset drops all client-held conversation state and wipes the local
// cache. Called on sign-out.
func (s *Store) Reset() {
	s.sched.CancelAll()

	s.mu.Lock()
	s.conversations = nil
	s.active = ""
	s.messages = make(map[string][]*delivery.Message)
	s.loaded = make(map[string]bool)
	s.serverIDs = make(map[string]string)
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Clear(); err != nil && s.logger != nil {
			s.logger.Warn("clear cache", zap.Error(err))
		}
	}
	s.bus.Emit("chat.conversations_updated", 0)
	if s.logger != nil {
		s.logger.Info("conversation state cleared")
	}
}

// post delivers an optimistic message to the backend and settles its
// fate: adopt the server id and start the ratchet, or mark it failed.
func (s *Store) post(ctx context.Context, msg *delivery.Message) error {
	created, err := s.backend.SendMessage(ctx, msg.ConversationID, msg.Body)
	if err != nil {
		s.sched.Cancel(msg.ID)
		s.mu.Lock()
		if m := s.find(msg.ConversationID, msg.ID); m != nil {
			m.Status = delivery.StatusFailed
		}
		s.mu.Unlock()
		s.cacheStatus(msg.ConversationID, msg.ID, delivery.StatusFailed)
		s.bus.Emit("chat.message_failed", msg.ID)
		if s.logger != nil {
			s.logger.Warn("send failed", zap.String("message_id", msg.ID), zap.Error(err))
		}
		return err
	}

	s.mu.Lock()
	s.serverIDs[msg.ID] = created.ID
	s.mu.Unlock()
	if s.cache != nil {
		_ = s.cache.RenameMessage(msg.ConversationID, msg.ID, created.ID)
	}

	// The ratchet is keyed by the local id; remote pushes may use the
	// server id, find() resolves both.
	s.sched.Track(msg.ConversationID, msg.ID)
	s.bus.Emit("chat.message_upserted", msg.ID)
	return nil
}

// AdvanceStatus implements delivery.Applier: a scheduled transition
// applies only if the message is still at the expected prior status.
func (s *Store) AdvanceStatus(conversationID, messageID string, from, to delivery.Status) bool {
	s.mu.Lock()
	msg := s.find(conversationID, messageID)
	if msg == nil || msg.Status != from || !delivery.CanAdvance(from, to) {
		s.mu.Unlock()
		return false
	}
	msg.Status = to
	s.mu.Unlock()

	s.cacheStatus(conversationID, messageID, to)
	s.bus.Emit("chat.message_status", messageID)
	return true
}

// ClampStatus implements delivery.Applier for backend-reported
// statuses: forward only, never backward.
func (s *Store) ClampStatus(conversationID, messageID string, incoming delivery.Status) bool {
	s.mu.Lock()
	msg := s.find(conversationID, messageID)
	if msg == nil {
		s.mu.Unlock()
		return false
	}
	next := delivery.Clamp(msg.Status, incoming)
	if next == msg.Status {
		s.mu.Unlock()
		return false
	}
	msg.Status = next
	s.mu.Unlock()

	s.cacheStatus(conversationID, messageID, next)
	s.bus.Emit("chat.message_status", messageID)
	return true
}

// find must be called with s.mu held. Resolves local and server ids.
func (s *Store) find(conversationID, messageID string) *delivery.Message {
	for _, m := range s.messages[conversationID] {
		if m.ID == messageID || s.serverIDs[m.ID] == messageID {
			return m
		}
	}
	return nil
}

// append adds a freshly composed message and refreshes the owning
// conversation's preview.
func (s *Store) append(msg *delivery.Message) {
	s.mu.Lock()
	s.messages[msg.ConversationID] = append(s.messages[msg.ConversationID], msg)
	for _, c := range s.conversations {
		if c.ID == msg.ConversationID {
			c.LastMessage = &api.LastMessage{Text: msg.Body, Timestamp: msg.SentAt, FromMe: true}
		}
	}
	s.mu.Unlock()

	if s.cache != nil {
		_ = s.cache.UpsertMessage(&store.Message{
			ID:             msg.ID,
			ConversationID: msg.ConversationID,
			SenderID:       msg.SenderID,
			SenderName:     msg.SenderName,
			Body:           msg.Body,
			FromMe:         true,
			Status:         string(msg.Status),
			Timestamp:      msg.SentAt.UnixMilli(),
		})
	}
}

func (s *Store) cacheStatus(conversationID, messageID string, status delivery.Status) {
	if s.cache == nil {
		return
	}
	id := messageID
	s.mu.Lock()
	if srv, ok := s.serverIDs[messageID]; ok {
		id = srv
	}
	s.mu.Unlock()
	_ = s.cache.SetMessageStatus(conversationID, id, string(status))
}

func (s *Store) warmFromCache() {
	if s.cache == nil {
		return
	}
	cached, err := s.cache.ListConversations()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("warm from cache", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	for _, c := range cached {
		conv := &Conversation{
			ID: c.ID,
			Participant: api.Participant{
				ID:       c.ParticipantID,
				Name:     c.ParticipantName,
				Avatar:   c.ParticipantAvatar,
				IsOnline: c.ParticipantOnline,
				LastSeen: time.UnixMilli(c.ParticipantLastSeen),
			},
			UnreadCount: c.UnreadCount,
		}
		if c.LastMessageAt > 0 {
			conv.LastMessage = &api.LastMessage{
				Text:      c.LastMessageText,
				Timestamp: time.UnixMilli(c.LastMessageAt),
				FromMe:    c.LastMessageFromMe,
			}
		}
		s.conversations = append(s.conversations, conv)
	}
	s.mu.Unlock()

	if len(cached) > 0 {
		s.bus.Emit("chat.conversations_updated", len(cached))
	}
}

func (s *Store) writeThroughConversations(convs []api.Conversation) {
	if s.cache == nil {
		return
	}
	for _, c := range convs {
		row := &store.Conversation{
			ID:                  c.ID,
			ParticipantID:       c.Participant.ID,
			ParticipantName:     c.Participant.Name,
			ParticipantAvatar:   c.Participant.Avatar,
			ParticipantOnline:   c.Participant.IsOnline,
			ParticipantLastSeen: c.Participant.LastSeen.UnixMilli(),
			UnreadCount:         c.UnreadCount,
		}
		if c.LastMessage != nil {
			row.LastMessageText = c.LastMessage.Text
			row.LastMessageAt = c.LastMessage.Timestamp.UnixMilli()
			row.LastMessageFromMe = c.LastMessage.FromMe
		}
		if err := s.cache.UpsertConversation(row); err != nil && s.logger != nil {
			s.logger.Warn("cache conversation", zap.Error(err))
		}
	}
}

func (s *Store) writeThroughMessages(conversationID string, msgs []*delivery.Message) {
	if s.cache == nil {
		return
	}
	rows := make([]store.Message, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, store.Message{
			ID:             m.ID,
			ConversationID: conversationID,
			SenderID:       m.SenderID,
			SenderName:     m.SenderName,
			Body:           m.Body,
			FromMe:         m.FromMe,
			Status:         string(m.Status),
			Timestamp:      m.SentAt.UnixMilli(),
		})
	}
	if err := s.cache.ReplaceMessages(conversationID, rows); err != nil && s.logger != nil {
		s.logger.Warn("cache messages", zap.Error(err))
	}
}

func wireToLocal(m api.Message, selfID string) *delivery.Message {
	fromMe := selfID != "" && m.SenderID == selfID
	status := delivery.Status("")
	if fromMe {
		status = delivery.ParseStatus(m.Status)
	}
	return &delivery.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		SenderName:     m.SenderName,
		Body:           m.Content,
		SentAt:         m.Timestamp,
		FromMe:         fromMe,
		Status:         status,
	}
}

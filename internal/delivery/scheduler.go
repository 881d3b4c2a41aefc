package delivery

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Applier is implemented by the owner of message state (the chat
// store). The scheduler never mutates messages itself; it asks the
// applier to advance them so all state changes stay in one place.
type Applier interface {
	// AdvanceStatus moves the message from → to only if it is still at
	// from, and reports whether the transition was applied. A scheduled
	// transition can lose this race to a backend-pushed update.
	AdvanceStatus(conversationID, messageID string, from, to Status) bool

	// ClampStatus applies a backend-reported status, moving the message
	// forward only (never backward), and reports whether it changed.
	ClampStatus(conversationID, messageID string, incoming Status) bool
}

// Cadence holds the simulated delivery delays used in absence of a
// push channel from the backend.
type Cadence struct {
	ToSent      time.Duration
	ToDelivered time.Duration
	ToRead      time.Duration
}

// DefaultCadence mirrors the production client: half a second to sent,
// one more to delivered, one and a half more to read.
func DefaultCadence() Cadence {
	return Cadence{
		ToSent:      500 * time.Millisecond,
		ToDelivered: time.Second,
		ToRead:      1500 * time.Millisecond,
	}
}

type scheduled struct {
	conversationID string
	from, to       Status
	timer          *time.Timer
}

// Scheduler drives simulated status progression with one cancelable
// scheduled transition per message, keyed by message id. Cancellation
// is a direct lookup-and-clear, per message or per conversation.
type Scheduler struct {
	mu      sync.Mutex
	applier Applier
	cadence Cadence
	logger  *zap.Logger
	pending map[string]*scheduled           // message id → in-flight transition
	byConv  map[string]map[string]struct{}  // conversation id → message ids
	stopped bool
}

// NewScheduler creates a scheduler that applies transitions through applier.
func NewScheduler(applier Applier, cadence Cadence, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		applier: applier,
		cadence: cadence,
		logger:  logger,
		pending: make(map[string]*scheduled),
		byConv:  make(map[string]map[string]struct{}),
	}
}

// Track starts the simulated progression for a freshly acknowledged
// message: pending → sent, then onward through the ratchet.
func (s *Scheduler) Track(conversationID, messageID string) {
	s.schedule(conversationID, messageID, StatusPending, StatusSent)
}

// ApplyRemote consumes a backend-pushed status update. Any locally
// scheduled transition for the message is cleared first; the update is
// clamped so it never moves the status backward.
func (s *Scheduler) ApplyRemote(conversationID, messageID string, incoming Status) bool {
	s.Cancel(messageID)
	return s.applier.ClampStatus(conversationID, messageID, incoming)
}

// Cancel clears the scheduled transition for a single message, if any.
func (s *Scheduler) Cancel(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(messageID)
}

// CancelConversation clears every scheduled transition for messages of
// the given conversation. Called when the user navigates away so timers
// do not update state that is no longer displayed.
func (s *Scheduler) CancelConversation(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.byConv[conversationID] {
		s.remove(id)
	}
}

// CancelAll clears every scheduled transition but keeps the scheduler
// usable. Called when all conversation state is dropped on sign-out.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.pending {
		s.remove(id)
	}
}

// Stop cancels all scheduled transitions. The scheduler accepts no new
// work afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id := range s.pending {
		s.remove(id)
	}
}

func (s *Scheduler) schedule(conversationID, messageID string, from, to Status) {
	delay := s.delayFor(to)
	if delay <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	// Replace any prior schedule for this message.
	s.remove(messageID)

	entry := &scheduled{conversationID: conversationID, from: from, to: to}
	entry.timer = time.AfterFunc(delay, func() { s.fire(messageID, entry) })
	s.pending[messageID] = entry
	if s.byConv[conversationID] == nil {
		s.byConv[conversationID] = make(map[string]struct{})
	}
	s.byConv[conversationID][messageID] = struct{}{}
}

func (s *Scheduler) fire(messageID string, entry *scheduled) {
	s.mu.Lock()
	if s.pending[messageID] != entry {
		// Canceled or replaced between firing and locking.
		s.mu.Unlock()
		return
	}
	s.remove(messageID)
	s.mu.Unlock()

	// Applied only if the message is still where we left it; a remote
	// update may have advanced it already, in which case the simulation
	// yields to the push channel.
	if !s.applier.AdvanceStatus(entry.conversationID, messageID, entry.from, entry.to) {
		if s.logger != nil {
			s.logger.Debug("scheduled transition skipped",
				zap.String("message_id", messageID),
				zap.String("to", string(entry.to)))
		}
		return
	}

	if next := entry.to.next(); next != "" {
		s.schedule(entry.conversationID, messageID, entry.to, next)
	}
}

// remove must be called with s.mu held.
func (s *Scheduler) remove(messageID string) {
	entry, ok := s.pending[messageID]
	if !ok {
		return
	}
	entry.timer.Stop()
	delete(s.pending, messageID)
	if ids := s.byConv[entry.conversationID]; ids != nil {
		delete(ids, messageID)
		if len(ids) == 0 {
			delete(s.byConv, entry.conversationID)
		}
	}
}

func (s *Scheduler) delayFor(to Status) time.Duration {
	switch to {
	case StatusSent:
		return s.cadence.ToSent
	case StatusDelivered:
		return s.cadence.ToDelivered
	case StatusRead:
		return s.cadence.ToRead
	default:
		return 0
	}
}

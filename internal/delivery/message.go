// Package delivery owns the lifecycle of outgoing messages: composing
// an optimistic local message, advancing its delivery status through
// the pending → sent → delivered → read ratchet, and the pure helpers
// that shape a message sequence for rendering.
package delivery

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mingleapp/mingle/internal/media"
)

// ErrEmptyMessage is returned when a draft has neither text nor
// attachments after trimming.
var ErrEmptyMessage = errors.New("message has no content and no attachments")

// Message is a single message in a conversation. Once appended, only
// its Status (and the server-assigned ID on ack) may change.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderName     string
	Body           string
	Attachments    []*media.Attachment
	SentAt         time.Time
	FromMe         bool
	Status         Status
}

// Draft is the user-composed input for a new outgoing message.
type Draft struct {
	Text        string
	Attachments []*media.Attachment
}

// Compose builds the optimistic local Message for a draft: a client
// generated id, the current identity as sender, a timestamp of now and
// status pending. The caller appends it to the conversation before the
// backend has confirmed anything.
func Compose(conversationID, senderID, senderName string, draft Draft) (*Message, error) {
	text := strings.TrimSpace(draft.Text)
	if text == "" && len(draft.Attachments) == 0 {
		return nil, ErrEmptyMessage
	}
	return &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		Body:           text,
		Attachments:    draft.Attachments,
		SentAt:         time.Now(),
		FromMe:         true,
		Status:         StatusPending,
	}, nil
}

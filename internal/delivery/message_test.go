package delivery

import (
	"errors"
	"testing"

	"github.com/mingleapp/mingle/internal/media"
)

func TestComposeEmpty(t *testing.T) {
	_, err := Compose("c1", "u1", "Ana", Draft{Text: ""})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Compose(empty) error = %v, want ErrEmptyMessage", err)
	}

	_, err = Compose("c1", "u1", "Ana", Draft{Text: "   \n\t"})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Compose(whitespace) error = %v, want ErrEmptyMessage", err)
	}
}

func TestComposeText(t *testing.T) {
	msg, err := Compose("c1", "u1", "Ana", Draft{Text: "  hello  "})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if msg.Status != StatusPending {
		t.Errorf("Status = %s, want pending", msg.Status)
	}
	if msg.Body != "hello" {
		t.Errorf("Body = %q, want trimmed %q", msg.Body, "hello")
	}
	if !msg.FromMe {
		t.Error("FromMe = false, want true")
	}
	if msg.ID == "" {
		t.Error("ID is empty")
	}
	if msg.SenderID != "u1" || msg.ConversationID != "c1" {
		t.Errorf("sender/conversation = %q/%q", msg.SenderID, msg.ConversationID)
	}
	if msg.SentAt.IsZero() {
		t.Error("SentAt not stamped")
	}
}

func TestComposeAttachmentOnly(t *testing.T) {
	msg, err := Compose("c1", "u1", "Ana", Draft{
		Attachments: []*media.Attachment{{ID: "a1", Kind: media.KindImage, Name: "pic.png"}},
	})
	if err != nil {
		t.Fatalf("Compose(attachment only) error = %v", err)
	}
	if len(msg.Attachments) != 1 {
		t.Errorf("Attachments = %d, want 1", len(msg.Attachments))
	}
}

func TestComposeUniqueIDs(t *testing.T) {
	a, _ := Compose("c1", "u1", "Ana", Draft{Text: "one"})
	b, _ := Compose("c1", "u1", "Ana", Draft{Text: "two"})
	if a.ID == b.ID {
		t.Errorf("two composed messages share id %q", a.ID)
	}
}

package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 10)
	defer unsub()

	b.Emit("chat.message_upserted", "payload")

	select {
	case evt := <-ch:
		if evt.Topic != "chat.message_upserted" {
			t.Errorf("got topic %q, want chat.message_upserted", evt.Topic)
		}
		if evt.OccurredAt.IsZero() {
			t.Error("OccurredAt not stamped")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestPrefixFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("identity.", 10)
	defer unsub()

	b.Emit("chat.conversations_updated", nil)
	b.Emit("identity.resolved", nil)

	select {
	case evt := <-ch:
		if evt.Topic != "identity.resolved" {
			t.Errorf("got topic %q, want identity.resolved", evt.Topic)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// The chat event must not have been delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("identity.", 10)
	unsub()

	b.Emit("identity.resolved", nil)

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 1)
	defer unsub()

	b.Emit("chat.one", nil)
	// Dropped, buffer is full.
	b.Emit("chat.two", nil)

	evt := <-ch
	if evt.Topic != "chat.one" {
		t.Errorf("got %q, want chat.one", evt.Topic)
	}
}

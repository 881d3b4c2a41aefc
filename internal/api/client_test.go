package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ana@example.com" {
			t.Errorf("email = %q", body["email"])
		}
		_ = json.NewEncoder(w).Encode(User{ID: "u1", Name: "Ana", Token: "tok"})
	})

	u, err := c.Login(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if u.ID != "u1" || u.Token != "tok" {
		t.Errorf("user = %+v", u)
	}
}

func TestBearerToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		_ = json.NewEncoder(w).Encode([]Conversation{})
	})
	c.SetToken("tok")

	if _, err := c.ListConversations(context.Background(), "u1"); err != nil {
		t.Fatalf("ListConversations() error = %v", err)
	}
}

func TestReadFailureIsFetchError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListMessages(context.Background(), "c1")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %T %v, want FetchError", err, err)
	}
	if fetchErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", fetchErr.StatusCode)
	}
}

func TestWriteFailureIsMutationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.SendMessage(context.Background(), "c1", "hello")
	var mutErr *MutationError
	if !errors.As(err, &mutErr) {
		t.Fatalf("error = %T %v, want MutationError", err, err)
	}
}

func TestConflictIsConflictError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "conversation already exists"})
	})

	_, err := c.StartConversation(context.Background(), "u2")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("error = %T %v, want ConflictError", err, err)
	}
	if conflict.Message != "conversation already exists" {
		t.Errorf("Message = %q", conflict.Message)
	}
}

func TestTransportFailureIsFetchError(t *testing.T) {
	c, err := New("http://127.0.0.1:1", nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = c.ListEvents(context.Background())
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %T %v, want FetchError", err, err)
	}
}

func TestSendMessagePostsContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/conversations/c1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["content"] != "hello" {
			t.Errorf("content = %q", body["content"])
		}
		_ = json.NewEncoder(w).Encode(Message{ID: "srv-1", ConversationID: "c1", Content: "hello", Status: "sent"})
	})

	m, err := c.SendMessage(context.Background(), "c1", "hello")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if m.ID != "srv-1" {
		t.Errorf("ID = %q, want srv-1", m.ID)
	}
}

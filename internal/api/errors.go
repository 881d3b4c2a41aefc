package api

import "fmt"

// FetchError reports a failed read against the backend: a transport
// failure or a non-2xx response on a GET. The caller keeps its prior
// state intact and surfaces a retry affordance.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationError reports a failed create or update.
type MutationError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *MutationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// ConflictError reports a backend-rejected duplicate, such as starting
// a conversation with a participant who already has one.
type ConflictError struct {
	Op      string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s: conflict", e.Op)
}

package model

import (
	"sync"
	"time"
)

// Flash holds a transient notification shown in the status bar.
type Flash struct {
	mu      sync.RWMutex
	message string
	isError bool
	expires time.Time
}

// Info stores an informational flash that expires after d.
func (f *Flash) Info(msg string, d time.Duration) { f.set(msg, false, d) }

// Error stores an error flash that expires after d.
func (f *Flash) Error(msg string, d time.Duration) { f.set(msg, true, d) }

func (f *Flash) set(msg string, isError bool, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = msg
	f.isError = isError
	f.expires = time.Now().Add(d)
}

// Get returns the current message and whether it is an error. Both are
// zero once the flash has expired.
func (f *Flash) Get() (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.expires) {
		return "", false
	}
	return f.message, f.isError
}

// Clear drops the flash immediately.
func (f *Flash) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.message = ""
	f.expires = time.Time{}
}

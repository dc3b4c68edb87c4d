package realtime

import (
	"sync"
	"time"
)

// TypingTracker holds the set of users currently typing per chat. At
// most one entry exists per (chat, user) pair; a later set for the same
// pair refreshes the entry instead of duplicating it.
//
// Clearing is client-driven: the client reports isTyping=false after
// its own idle window (1s in the web client). The server enforces no
// timeout of its own; a user's entries are dropped without a
// stopped-typing broadcast when their last connection goes away.
type TypingTracker struct {
	mu      sync.RWMutex
	entries map[string]map[string]time.Time // chatID -> userID -> last refresh
}

func NewTypingTracker() *TypingTracker {
	return &TypingTracker{
		entries: make(map[string]map[string]time.Time),
	}
}

// Set records or clears the typing flag for a (chat, user) pair.
func (t *TypingTracker) Set(chatID, userID string, isTyping bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if isTyping {
		if t.entries[chatID] == nil {
			t.entries[chatID] = make(map[string]time.Time)
		}
		t.entries[chatID][userID] = time.Now()
		return
	}

	if users, ok := t.entries[chatID]; ok {
		delete(users, userID)
		if len(users) == 0 {
			delete(t.entries, chatID)
		}
	}
}

// IsTyping reports whether the user is flagged as typing in the chat.
func (t *TypingTracker) IsTyping(chatID, userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.entries[chatID][userID]
	return ok
}

// Typists returns the users currently typing in a chat.
func (t *TypingTracker) Typists(chatID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	users := make([]string, 0, len(t.entries[chatID]))
	for userID := range t.entries[chatID] {
		users = append(users, userID)
	}
	return users
}

// ClearUser drops every entry for the user across all chats. Used on
// connection teardown; emits nothing.
func (t *TypingTracker) ClearUser(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for chatID, users := range t.entries {
		delete(users, userID)
		if len(users) == 0 {
			delete(t.entries, chatID)
		}
	}
}

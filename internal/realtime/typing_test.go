package realtime

import "testing"

func TestTypingSetAndClear(t *testing.T) {
	tr := NewTypingTracker()

	tr.Set("g1", "u1", true)
	if !tr.IsTyping("g1", "u1") {
		t.Error("u1 should be typing in g1")
	}

	tr.Set("g1", "u1", false)
	if tr.IsTyping("g1", "u1") {
		t.Error("u1 should no longer be typing in g1")
	}
	if got := tr.Typists("g1"); len(got) != 0 {
		t.Errorf("expected no typists, got %v", got)
	}
}

func TestTypingRefreshDoesNotDuplicate(t *testing.T) {
	tr := NewTypingTracker()

	tr.Set("g1", "u1", true)
	tr.Set("g1", "u1", true)

	if got := len(tr.Typists("g1")); got != 1 {
		t.Errorf("refresh must replace the entry, got %d typists", got)
	}
}

func TestTypingClearUnknownIsNoop(t *testing.T) {
	tr := NewTypingTracker()

	tr.Set("g1", "u2", false) // never set
	if tr.IsTyping("g1", "u2") {
		t.Error("u2 was never typing")
	}
}

func TestTypingClearUser(t *testing.T) {
	tr := NewTypingTracker()

	tr.Set("g1", "u1", true)
	tr.Set("g2", "u1", true)
	tr.Set("g1", "u2", true)

	tr.ClearUser("u1")

	if tr.IsTyping("g1", "u1") || tr.IsTyping("g2", "u1") {
		t.Error("teardown should clear u1 across all chats")
	}
	if !tr.IsTyping("g1", "u2") {
		t.Error("u2's entry must survive u1's teardown")
	}
}

func TestTypingIsScopedPerChat(t *testing.T) {
	tr := NewTypingTracker()

	tr.Set("g1", "u1", true)
	if tr.IsTyping("g2", "u1") {
		t.Error("typing state in g1 must not leak into g2")
	}
}

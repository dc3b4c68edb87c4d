package realtime

import "testing"

func TestRegistryPresenceTransitions(t *testing.T) {
	r := NewRegistry()

	if r.IsOnline("u1") {
		t.Fatal("u1 should be offline before any register")
	}

	wentOnline, err := r.Register("c1", "u1")
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if !wentOnline {
		t.Error("first connection should report the online transition")
	}
	if !r.IsOnline("u1") {
		t.Error("u1 should be online with one connection")
	}

	// Second device: no new transition
	wentOnline, err = r.Register("c2", "u1")
	if err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}
	if wentOnline {
		t.Error("second connection must not report another online transition")
	}

	if got := len(r.ConnectionsFor("u1")); got != 2 {
		t.Errorf("expected 2 connections for u1, got %d", got)
	}

	userID, wentOffline := r.Unregister("c1")
	if userID != "u1" || wentOffline {
		t.Errorf("unregistering one of two connections: got user %q offline=%v", userID, wentOffline)
	}
	if !r.IsOnline("u1") {
		t.Error("u1 should still be online with one connection left")
	}

	userID, wentOffline = r.Unregister("c2")
	if userID != "u1" || !wentOffline {
		t.Errorf("unregistering the last connection: got user %q offline=%v", userID, wentOffline)
	}
	if r.IsOnline("u1") {
		t.Error("u1 should be offline with zero connections")
	}
}

func TestRegistryExactlyOneTransitionPerCycle(t *testing.T) {
	r := NewRegistry()

	onlineCount := 0
	offlineCount := 0

	conns := []string{"c1", "c2", "c3"}
	for _, connID := range conns {
		if wentOnline, _ := r.Register(connID, "u1"); wentOnline {
			onlineCount++
		}
	}
	for _, connID := range conns {
		if _, wentOffline := r.Unregister(connID); wentOffline {
			offlineCount++
		}
	}

	if onlineCount != 1 {
		t.Errorf("expected exactly 1 online transition, got %d", onlineCount)
	}
	if offlineCount != 1 {
		t.Errorf("expected exactly 1 offline transition, got %d", offlineCount)
	}
}

func TestRegistryRejectsIdentityRebind(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Register("c1", "u1"); err != nil {
		t.Fatalf("unexpected register error: %v", err)
	}

	// Same identity again is a no-op, not a violation
	wentOnline, err := r.Register("c1", "u1")
	if err != nil {
		t.Fatalf("idempotent register should not fail: %v", err)
	}
	if wentOnline {
		t.Error("idempotent register must not report a transition")
	}

	// A different identity on the same connection is rejected
	if _, err := r.Register("c1", "u2"); err != ErrInvalidState {
		t.Errorf("expected ErrInvalidState for rebind, got %v", err)
	}
	if userID, _ := r.UserFor("c1"); userID != "u1" {
		t.Errorf("rejected rebind must leave the original binding, got %q", userID)
	}
	if r.IsOnline("u2") {
		t.Error("rejected rebind must not mark u2 online")
	}
}

func TestRegistryUnknownConnection(t *testing.T) {
	r := NewRegistry()

	userID, wentOffline := r.Unregister("ghost")
	if userID != "" || wentOffline {
		t.Errorf("unregistering an unknown connection: got %q offline=%v", userID, wentOffline)
	}

	if got := r.ConnectionsFor("nobody"); len(got) != 0 {
		t.Errorf("expected empty connection set, got %v", got)
	}
}

func TestRegistryOnlineUsers(t *testing.T) {
	r := NewRegistry()

	r.Register("c1", "u1")
	r.Register("c2", "u2")
	r.Register("c3", "u2")

	online := r.OnlineUsers()
	if len(online) != 2 {
		t.Fatalf("expected 2 online users, got %v", online)
	}

	r.Unregister("c2")
	r.Unregister("c3")
	online = r.OnlineUsers()
	if len(online) != 1 || online[0] != "u1" {
		t.Errorf("expected only u1 online, got %v", online)
	}
}

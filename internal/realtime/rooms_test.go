package realtime

import (
	"sort"
	"testing"
)

func TestRoomsJoinLeave(t *testing.T) {
	rooms := NewRooms()

	rooms.Join("c1", "chatA")
	rooms.Join("c2", "chatA")
	rooms.Join("c1", "chatB")

	if !rooms.IsMember("c1", "chatA") || !rooms.IsMember("c2", "chatA") {
		t.Error("both connections should be members of chatA")
	}

	members := rooms.MembersOf("chatA")
	sort.Strings(members)
	if len(members) != 2 || members[0] != "c1" || members[1] != "c2" {
		t.Errorf("unexpected chatA members: %v", members)
	}

	rooms.Leave("c1", "chatA")
	if rooms.IsMember("c1", "chatA") {
		t.Error("c1 should not be a member of chatA after leave")
	}
	if !rooms.IsMember("c1", "chatB") {
		t.Error("leaving chatA must not affect chatB membership")
	}
}

func TestRoomsJoinIsIdempotent(t *testing.T) {
	rooms := NewRooms()

	rooms.Join("c1", "chatA")
	rooms.Join("c1", "chatA")

	if got := len(rooms.MembersOf("chatA")); got != 1 {
		t.Errorf("double join should keep a single membership, got %d", got)
	}
}

func TestRoomsLeaveUnknownIsNoop(t *testing.T) {
	rooms := NewRooms()

	rooms.Leave("c1", "chatA") // never joined
	if got := rooms.MembersOf("chatA"); len(got) != 0 {
		t.Errorf("expected empty membership, got %v", got)
	}
}

func TestRoomsLeaveAll(t *testing.T) {
	rooms := NewRooms()

	rooms.Join("c1", "r1")
	rooms.Join("c1", "r2")
	rooms.Join("c2", "r1")

	left := rooms.LeaveAll("c1")
	sort.Strings(left)
	if len(left) != 2 || left[0] != "r1" || left[1] != "r2" {
		t.Errorf("expected c1 to leave r1 and r2, got %v", left)
	}

	if rooms.IsMember("c1", "r1") || rooms.IsMember("c1", "r2") {
		t.Error("c1 should be removed from every room")
	}
	if !rooms.IsMember("c2", "r1") {
		t.Error("c2 membership must survive c1's teardown")
	}
	if got := len(rooms.RoomsOf("c1")); got != 0 {
		t.Errorf("c1 should belong to no rooms, got %d", got)
	}
}

func TestRoomsEmptyRoomIsDropped(t *testing.T) {
	rooms := NewRooms()

	rooms.Join("c1", "chatA")
	rooms.Leave("c1", "chatA")

	rooms.mu.RLock()
	_, exists := rooms.members["chatA"]
	rooms.mu.RUnlock()
	if exists {
		t.Error("room should be dropped once the last member leaves")
	}
}

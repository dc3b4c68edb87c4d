package realtime

import "sync"

// Rooms tracks which connections are subscribed to which chat room.
// Rooms are created implicitly on first join and dropped when the last
// member leaves. Membership is independent of identity registration.
type Rooms struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{} // chatID -> set of connIDs
	joined  map[string]map[string]struct{} // connID -> set of chatIDs
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[string]map[string]struct{}),
		joined:  make(map[string]map[string]struct{}),
	}
}

// Join subscribes the connection to a chat room. No-op if already a member.
func (r *Rooms) Join(connID, chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.members[chatID] == nil {
		r.members[chatID] = make(map[string]struct{})
	}
	r.members[chatID][connID] = struct{}{}

	if r.joined[connID] == nil {
		r.joined[connID] = make(map[string]struct{})
	}
	r.joined[connID][chatID] = struct{}{}
}

// Leave unsubscribes the connection from a chat room. No-op if not a member.
func (r *Rooms) Leave(connID, chatID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID, chatID)
}

// LeaveAll removes the connection from every room it belongs to and
// returns the rooms it left. Called on disconnect.
func (r *Rooms) LeaveAll(connID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	left := make([]string, 0, len(r.joined[connID]))
	for chatID := range r.joined[connID] {
		left = append(left, chatID)
		r.leaveLocked(connID, chatID)
	}
	return left
}

// MembersOf returns the connection ids currently subscribed to the room.
// An unknown room yields an empty set, never an error.
func (r *Rooms) MembersOf(chatID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]string, 0, len(r.members[chatID]))
	for connID := range r.members[chatID] {
		conns = append(conns, connID)
	}
	return conns
}

// IsMember reports whether the connection is subscribed to the room.
func (r *Rooms) IsMember(connID, chatID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[chatID][connID]
	return ok
}

// RoomsOf returns the chat ids the connection is subscribed to.
func (r *Rooms) RoomsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chats := make([]string, 0, len(r.joined[connID]))
	for chatID := range r.joined[connID] {
		chats = append(chats, chatID)
	}
	return chats
}

func (r *Rooms) leaveLocked(connID, chatID string) {
	if conns, ok := r.members[chatID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(r.members, chatID)
		}
	}
	if chats, ok := r.joined[connID]; ok {
		delete(chats, chatID)
		if len(chats) == 0 {
			delete(r.joined, connID)
		}
	}
}

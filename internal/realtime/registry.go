package realtime

import "sync"

// Registry maps user identities to their live connections. A user is
// online iff it holds at least one connection; presence is derived from
// this table and never persisted.
//
// Register and Unregister report the 0->1 and 1->0 transitions to the
// caller synchronously with the mutation, so transition detection can
// never race with a concurrent register for the same user.
type Registry struct {
	mu     sync.RWMutex
	users  map[string]map[string]struct{} // userID -> set of connIDs
	owners map[string]string              // connID -> userID
}

func NewRegistry() *Registry {
	return &Registry{
		users:  make(map[string]map[string]struct{}),
		owners: make(map[string]string),
	}
}

// Register binds userID to the connection. It is idempotent per
// connection; binding a second, different identity to the same
// connection returns ErrInvalidState and leaves the table unchanged.
// wentOnline is true exactly when the user had zero prior connections.
func (r *Registry) Register(connID, userID string) (wentOnline bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.owners[connID]; ok {
		if current == userID {
			return false, nil
		}
		return false, ErrInvalidState
	}

	r.owners[connID] = userID
	conns := r.users[userID]
	if conns == nil {
		conns = make(map[string]struct{})
		r.users[userID] = conns
	}
	wentOnline = len(conns) == 0
	conns[connID] = struct{}{}
	return wentOnline, nil
}

// Unregister removes the connection from the table. wentOffline is true
// exactly when this was the user's last connection. Unknown connections
// are a no-op.
func (r *Registry) Unregister(connID string) (userID string, wentOffline bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.owners[connID]
	if !ok {
		return "", false
	}
	delete(r.owners, connID)

	conns := r.users[userID]
	delete(conns, connID)
	if len(conns) == 0 {
		delete(r.users, userID)
		return userID, true
	}
	return userID, false
}

// IsOnline reports whether the user currently holds any connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userID]) > 0
}

// ConnectionsFor returns the connection ids currently bound to userID.
func (r *Registry) ConnectionsFor(userID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]string, 0, len(r.users[userID]))
	for connID := range r.users[userID] {
		conns = append(conns, connID)
	}
	return conns
}

// UserFor returns the identity bound to a connection, if any.
func (r *Registry) UserFor(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.owners[connID]
	return userID, ok
}

// OnlineUsers returns every identity with at least one connection.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.users))
	for userID := range r.users {
		users = append(users, userID)
	}
	return users
}

package realtime

import "errors"

var (
	// ErrInvalidState is returned when a connection attempts a second,
	// conflicting identity bind, or sends an identity-scoped event
	// before identifying itself.
	ErrInvalidState = errors.New("invalid connection state")

	// ErrClientDisconnected is returned when an event cannot be queued
	// because the client is closed or its send buffer is full.
	ErrClientDisconnected = errors.New("client disconnected")
)

// Error codes reported back to clients over the error event.
const (
	CodeInvalidState   = "INVALID_STATE"
	CodeInvalidMessage = "INVALID_MESSAGE"
)

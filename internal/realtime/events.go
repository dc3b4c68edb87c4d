package realtime

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies a realtime event on the wire.
type EventType string

const (
	// Inbound events from clients
	EventJoin        EventType = "join"
	EventJoinChat    EventType = "join-chat"
	EventLeaveChat   EventType = "leave-chat"
	EventSendMessage EventType = "send-message"
	EventTyping      EventType = "typing"

	// Outbound events to clients
	EventUserOnline     EventType = "user-online"
	EventUserOffline    EventType = "user-offline"
	EventReceiveMessage EventType = "receive-message"
	EventUserTyping     EventType = "user-typing"
	EventError          EventType = "error"
)

func (t EventType) String() string {
	return string(t)
}

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	switch t {
	case EventJoin, EventJoinChat, EventLeaveChat, EventSendMessage, EventTyping,
		EventUserOnline, EventUserOffline, EventReceiveMessage, EventUserTyping, EventError:
		return true
	default:
		return false
	}
}

// Event is the wire envelope for all realtime traffic.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
	UserID    string                 `json:"userId,omitempty"`
}

// Validate checks the envelope before it is dispatched.
func (e *Event) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("invalid event type: %q", e.Type)
	}
	if e.Data == nil {
		e.Data = make(map[string]interface{})
	}
	return nil
}

// DecodeData unmarshals the event data into a typed payload struct.
func (e *Event) DecodeData(v interface{}) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Typed payloads for inbound events.

type JoinData struct {
	UserID string `json:"userId"`
}

type ChatRoomData struct {
	ChatID string `json:"chatId"`
}

type TypingData struct {
	ChatID   string `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
}

// NewEvent creates an event with the given type and data.
func NewEvent(id string, eventType EventType, userID string, data map[string]interface{}) *Event {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Event{
		ID:        id,
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
		UserID:    userID,
	}
}

// NewPresenceEvent creates a user-online or user-offline broadcast event.
func NewPresenceEvent(id string, eventType EventType, userID string) *Event {
	return NewEvent(id, eventType, userID, map[string]interface{}{
		"userId": userID,
	})
}

// NewUserTypingEvent creates a typing-state broadcast for a chat room.
func NewUserTypingEvent(id, chatID, userID string, isTyping bool) *Event {
	return NewEvent(id, EventUserTyping, userID, map[string]interface{}{
		"chatId":   chatID,
		"userId":   userID,
		"isTyping": isTyping,
	})
}

// NewReceiveMessageEvent wraps a sender's payload for room fan-out.
func NewReceiveMessageEvent(id, userID string, data map[string]interface{}) *Event {
	return NewEvent(id, EventReceiveMessage, userID, data)
}

// NewErrorEvent creates an error report addressed to a single client.
func NewErrorEvent(id, code, message string) *Event {
	return NewEvent(id, EventError, "", map[string]interface{}{
		"code":    code,
		"message": message,
	})
}

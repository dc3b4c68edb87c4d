package realtime

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// ClientEvent pairs an inbound event with the connection it arrived on.
type ClientEvent struct {
	Client *Client
	Event  *Event
}

// Hub owns the shared realtime state: the connection registry, the room
// membership table and the typing tracker. All mutations flow through a
// single Run goroutine, so transition detection (online/offline) is
// serialized with the mutations that trigger it. Reads from the REST
// side (presence decoration) go through the tables' own locks.
type Hub struct {
	registry *Registry
	rooms    *Rooms
	typing   *TypingTracker

	// All live connections by connection id, identified or not.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	inbound    chan *ClientEvent

	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	// onOffline is invoked from the Run goroutine when a user's last
	// connection drops; callbacks must not block.
	onOffline func(userID string)
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		registry:   NewRegistry(),
		rooms:      NewRooms(),
		typing:     NewTypingTracker(),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan *ClientEvent),
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Registry exposes the connection registry for read-side presence queries.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// OnOffline registers a callback for offline transitions, used to
// stamp last-seen times. Must be set before Run starts.
func (h *Hub) OnOffline(fn func(userID string)) {
	h.onOffline = fn
}

// Run processes connection lifecycle and client events until Stop is
// called. Events from different connections are serialized here; events
// from the same connection arrive in the order its read pump saw them.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case ce := <-h.inbound:
			h.dispatch(ce.Client, ce.Event)

		case <-h.ctx.Done():
			h.logger.Info("realtime hub shutting down")
			return
		}
	}
}

// Stop terminates the Run loop.
func (h *Hub) Stop() {
	h.cancel()
}

func (h *Hub) registerClient(c *Client) {
	h.clients[c.id] = c
	h.logger.Info("connection opened", "connID", c.id)
}

// unregisterClient tears the connection down: it leaves every room and
// drops out of the registry before anything else is processed, so no
// further events are routed to it.
func (h *Hub) unregisterClient(c *Client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}

	h.rooms.LeaveAll(c.id)

	userID, wentOffline := h.registry.Unregister(c.id)
	if wentOffline {
		h.typing.ClearUser(userID)
		h.broadcastPresence(EventUserOffline, userID)
		if h.onOffline != nil {
			h.onOffline(userID)
		}
	}

	delete(h.clients, c.id)
	c.closeSendChannel()
	h.logger.Info("connection closed", "connID", c.id, "userID", userID)
}

func (h *Hub) dispatch(c *Client, ev *Event) {
	switch ev.Type {
	case EventJoin:
		h.handleJoin(c, ev)
	case EventJoinChat:
		h.handleJoinChat(c, ev)
	case EventLeaveChat:
		h.handleLeaveChat(c, ev)
	case EventSendMessage:
		h.handleSendMessage(c, ev)
	case EventTyping:
		h.handleTyping(c, ev)
	default:
		// Outbound-only types are not accepted from clients.
		c.sendError(CodeInvalidMessage, "unsupported event type: "+ev.Type.String())
	}
}

// handleJoin binds the client-supplied identity to the connection. The
// identity is trusted as-is, matching the source design; a second bind
// with a different user is rejected.
func (h *Hub) handleJoin(c *Client, ev *Event) {
	var data JoinData
	if err := ev.DecodeData(&data); err != nil || data.UserID == "" {
		c.sendError(CodeInvalidMessage, "join requires a userId")
		return
	}

	wentOnline, err := h.registry.Register(c.id, data.UserID)
	if err != nil {
		h.logger.Warn("rejected identity rebind", "connID", c.id, "userID", data.UserID)
		c.sendError(CodeInvalidState, "connection is already bound to another user")
		return
	}

	h.logger.Info("user joined", "connID", c.id, "userID", data.UserID)
	if wentOnline {
		h.broadcastPresence(EventUserOnline, data.UserID)
	}
}

func (h *Hub) handleJoinChat(c *Client, ev *Event) {
	var data ChatRoomData
	if err := ev.DecodeData(&data); err != nil || data.ChatID == "" {
		c.sendError(CodeInvalidMessage, "join-chat requires a chatId")
		return
	}
	h.rooms.Join(c.id, data.ChatID)
	h.logger.Debug("joined chat room", "connID", c.id, "chatID", data.ChatID)
}

func (h *Hub) handleLeaveChat(c *Client, ev *Event) {
	var data ChatRoomData
	if err := ev.DecodeData(&data); err != nil || data.ChatID == "" {
		c.sendError(CodeInvalidMessage, "leave-chat requires a chatId")
		return
	}
	h.rooms.Leave(c.id, data.ChatID)
	h.logger.Debug("left chat room", "connID", c.id, "chatID", data.ChatID)
}

// handleSendMessage fans an already-persisted message out to the other
// members of its chat room. Best-effort: no retry, no confirmation,
// nothing for members that are not currently subscribed.
func (h *Hub) handleSendMessage(c *Client, ev *Event) {
	userID, ok := h.registry.UserFor(c.id)
	if !ok {
		c.sendError(CodeInvalidState, "identify with join before sending messages")
		return
	}

	var data ChatRoomData
	if err := ev.DecodeData(&data); err != nil || data.ChatID == "" {
		c.sendError(CodeInvalidMessage, "send-message requires a chatId")
		return
	}

	out := NewReceiveMessageEvent(uuid.New().String(), userID, ev.Data)
	h.deliver(data.ChatID, c.id, out)
}

func (h *Hub) handleTyping(c *Client, ev *Event) {
	userID, ok := h.registry.UserFor(c.id)
	if !ok {
		c.sendError(CodeInvalidState, "identify with join before typing events")
		return
	}

	var data TypingData
	if err := ev.DecodeData(&data); err != nil || data.ChatID == "" {
		c.sendError(CodeInvalidMessage, "typing requires a chatId")
		return
	}

	h.typing.Set(data.ChatID, userID, data.IsTyping)
	out := NewUserTypingEvent(uuid.New().String(), data.ChatID, userID, data.IsTyping)
	h.deliver(data.ChatID, c.id, out)
}

// deliver sends the event to every member of the chat room except the
// sender's own connection. A failed recipient is skipped, never
// retried, and never aborts delivery to the rest.
func (h *Hub) deliver(chatID, senderConnID string, ev *Event) {
	for _, connID := range h.rooms.MembersOf(chatID) {
		if connID == senderConnID {
			continue
		}
		client, ok := h.clients[connID]
		if !ok {
			continue
		}
		if err := client.SendEvent(ev); err != nil {
			h.logger.Warn("dropping event for recipient",
				"connID", connID, "chatID", chatID, "type", ev.Type, "error", err)
		}
	}
}

// broadcastPresence emits an online/offline transition to every other
// identified connection. Presence is global, not room-scoped.
func (h *Hub) broadcastPresence(eventType EventType, userID string) {
	ev := NewPresenceEvent(uuid.New().String(), eventType, userID)
	for connID, client := range h.clients {
		owner, identified := h.registry.UserFor(connID)
		if !identified || owner == userID {
			continue
		}
		if err := client.SendEvent(ev); err != nil {
			h.logger.Warn("dropping presence event for recipient",
				"connID", connID, "type", eventType, "error", err)
		}
	}
}

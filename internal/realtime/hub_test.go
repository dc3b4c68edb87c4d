package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// newTestClient creates a client without a transport connection and
// registers it with the hub. Delivered events are read straight off the
// send channel, so no pumps run.
func newTestClient(h *Hub) *Client {
	c := &Client{
		id:   uuid.New().String(),
		hub:  h,
		send: make(chan []byte, 16),
	}
	h.registerClient(c)
	return c
}

func recvEvents(t *testing.T, c *Client) []*Event {
	t.Helper()
	var events []*Event
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return events
			}
			var ev Event
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatalf("failed to unmarshal delivered event: %v", err)
			}
			events = append(events, &ev)
		default:
			return events
		}
	}
}

func join(h *Hub, c *Client, userID string) {
	h.dispatch(c, NewEvent("", EventJoin, "", map[string]interface{}{"userId": userID}))
}

func joinChat(h *Hub, c *Client, chatID string) {
	h.dispatch(c, NewEvent("", EventJoinChat, "", map[string]interface{}{"chatId": chatID}))
}

func sendMessage(h *Hub, c *Client, chatID, text string) {
	h.dispatch(c, NewEvent("", EventSendMessage, "", map[string]interface{}{
		"chatId": chatID,
		"text":   text,
	}))
}

func setTyping(h *Hub, c *Client, chatID string, isTyping bool) {
	h.dispatch(c, NewEvent("", EventTyping, "", map[string]interface{}{
		"chatId":   chatID,
		"isTyping": isTyping,
	}))
}

func TestHubPresenceBroadcast(t *testing.T) {
	h := newTestHub()
	c1 := newTestClient(h)
	c2 := newTestClient(h)
	anon := newTestClient(h)

	join(h, c1, "u1")
	// No other identified connection yet, nothing to deliver
	if got := recvEvents(t, c1); len(got) != 0 {
		t.Errorf("c1 should not receive its own online event, got %v", got)
	}

	join(h, c2, "u2")

	events := recvEvents(t, c1)
	if len(events) != 1 || events[0].Type != EventUserOnline {
		t.Fatalf("c1 should see exactly one user-online, got %v", events)
	}
	if events[0].Data["userId"] != "u2" {
		t.Errorf("expected online event for u2, got %v", events[0].Data)
	}

	if got := recvEvents(t, anon); len(got) != 0 {
		t.Errorf("anonymous connections are not registered and get no presence, got %v", got)
	}

	// Second device for u2: already online, no second transition
	c3 := newTestClient(h)
	join(h, c3, "u2")
	if got := recvEvents(t, c1); len(got) != 0 {
		t.Errorf("multi-device join must not re-broadcast online, got %v", got)
	}
}

func TestHubMultiDeviceOfflineOnce(t *testing.T) {
	h := newTestHub()
	d1 := newTestClient(h)
	d2 := newTestClient(h)
	observer := newTestClient(h)

	join(h, observer, "watcher")
	join(h, d1, "u1")
	join(h, d2, "u1")
	recvEvents(t, observer) // drain the single online event

	h.unregisterClient(d1)
	if !h.registry.IsOnline("u1") {
		t.Fatal("u1 should still be online on the second device")
	}
	if got := recvEvents(t, observer); len(got) != 0 {
		t.Errorf("no offline event while a device remains, got %v", got)
	}

	h.unregisterClient(d2)
	if h.registry.IsOnline("u1") {
		t.Fatal("u1 should be offline after the last device disconnects")
	}

	events := recvEvents(t, observer)
	if len(events) != 1 || events[0].Type != EventUserOffline {
		t.Fatalf("expected exactly one user-offline, got %v", events)
	}
	if events[0].Data["userId"] != "u1" {
		t.Errorf("expected offline event for u1, got %v", events[0].Data)
	}
}

func TestHubMessageFanout(t *testing.T) {
	h := newTestHub()
	c1 := newTestClient(h)
	c2 := newTestClient(h)
	outsider := newTestClient(h)

	join(h, c1, "u1")
	join(h, c2, "u2")
	join(h, outsider, "u3")
	joinChat(h, c1, "g1")
	joinChat(h, c2, "g1")
	recvEvents(t, c1)
	recvEvents(t, c2)
	recvEvents(t, outsider)

	sendMessage(h, c1, "g1", "hi")

	events := recvEvents(t, c2)
	if len(events) != 1 || events[0].Type != EventReceiveMessage {
		t.Fatalf("c2 should receive exactly one receive-message, got %v", events)
	}
	if events[0].Data["text"] != "hi" {
		t.Errorf("expected payload text %q, got %v", "hi", events[0].Data)
	}
	if events[0].UserID != "u1" {
		t.Errorf("expected sender identity u1, got %q", events[0].UserID)
	}

	if got := recvEvents(t, c1); len(got) != 0 {
		t.Errorf("the sender must not receive its own message, got %v", got)
	}
	if got := recvEvents(t, outsider); len(got) != 0 {
		t.Errorf("non-members must not receive room messages, got %v", got)
	}
}

func TestHubDeliverToEmptyRoomIsNoop(t *testing.T) {
	h := newTestHub()
	c1 := newTestClient(h)
	join(h, c1, "u1")

	sendMessage(h, c1, "nobody-here", "hello?")

	// Zero recipients is valid: no error event, no delivery
	if got := recvEvents(t, c1); len(got) != 0 {
		t.Errorf("expected silence for an empty room, got %v", got)
	}
}

func TestHubRoomEventsRequireIdentity(t *testing.T) {
	h := newTestHub()
	anon := newTestClient(h)
	joinChat(h, anon, "g1")

	t.Run("SendMessage", func(t *testing.T) {
		sendMessage(h, anon, "g1", "hi")
		events := recvEvents(t, anon)
		if len(events) != 1 || events[0].Type != EventError {
			t.Fatalf("expected an error event, got %v", events)
		}
		if events[0].Data["code"] != CodeInvalidState {
			t.Errorf("expected %s, got %v", CodeInvalidState, events[0].Data["code"])
		}
	})

	t.Run("Typing", func(t *testing.T) {
		setTyping(h, anon, "g1", true)
		events := recvEvents(t, anon)
		if len(events) != 1 || events[0].Data["code"] != CodeInvalidState {
			t.Fatalf("expected an invalid-state error, got %v", events)
		}
		if h.typing.IsTyping("g1", "") {
			t.Error("no typing entry may be recorded for an anonymous connection")
		}
	})
}

func TestHubRejectsIdentityRebind(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)

	join(h, c, "u1")
	join(h, c, "u2")

	events := recvEvents(t, c)
	if len(events) != 1 || events[0].Type != EventError {
		t.Fatalf("expected a single error event, got %v", events)
	}
	if events[0].Data["code"] != CodeInvalidState {
		t.Errorf("expected %s, got %v", CodeInvalidState, events[0].Data["code"])
	}

	if userID, _ := h.registry.UserFor(c.id); userID != "u1" {
		t.Errorf("original binding must survive the rejected rebind, got %q", userID)
	}
}

func TestHubTypingFlow(t *testing.T) {
	h := newTestHub()
	c1 := newTestClient(h)
	c2 := newTestClient(h)

	join(h, c1, "u1")
	join(h, c2, "u2")
	joinChat(h, c1, "g1")
	joinChat(h, c2, "g1")
	recvEvents(t, c1)
	recvEvents(t, c2)

	setTyping(h, c1, "g1", true)
	setTyping(h, c1, "g1", false)

	events := recvEvents(t, c2)
	if len(events) != 2 {
		t.Fatalf("expected two user-typing events, got %v", events)
	}
	if events[0].Type != EventUserTyping || events[0].Data["isTyping"] != true {
		t.Errorf("first event should be typing=true, got %v", events[0])
	}
	if events[1].Type != EventUserTyping || events[1].Data["isTyping"] != false {
		t.Errorf("second event should be typing=false, got %v", events[1])
	}
	if events[0].Data["userId"] != "u1" {
		t.Errorf("typing event should carry the typist, got %v", events[0].Data)
	}

	if h.typing.IsTyping("g1", "u1") {
		t.Error("final typing state for (g1, u1) must be absent")
	}
	if got := recvEvents(t, c1); len(got) != 0 {
		t.Errorf("the typist must not receive its own typing events, got %v", got)
	}
}

func TestHubDisconnectCleanup(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)
	observer := newTestClient(h)

	join(h, observer, "watcher")
	join(h, c, "u1")
	joinChat(h, c, "r1")
	joinChat(h, c, "r2")
	setTyping(h, c, "r1", true)
	recvEvents(t, observer)

	h.unregisterClient(c)

	if len(h.rooms.MembersOf("r1")) != 0 || len(h.rooms.MembersOf("r2")) != 0 {
		t.Error("disconnect must remove the connection from every room")
	}
	if h.typing.IsTyping("r1", "u1") {
		t.Error("disconnect of the last device must drop the typing entry")
	}
	if _, ok := h.clients[c.id]; ok {
		t.Error("disconnected client must be removed from the hub")
	}

	events := recvEvents(t, observer)
	if len(events) != 1 || events[0].Type != EventUserOffline {
		t.Fatalf("expected exactly one user-offline, got %v", events)
	}

	// Idempotent: a second teardown must not emit anything
	h.unregisterClient(c)
	if got := recvEvents(t, observer); len(got) != 0 {
		t.Errorf("repeated teardown must be silent, got %v", got)
	}
}

func TestHubRecipientFailureDoesNotAbortFanout(t *testing.T) {
	h := newTestHub()
	sender := newTestClient(h)
	broken := newTestClient(h)
	healthy := newTestClient(h)

	join(h, sender, "u1")
	join(h, broken, "u2")
	join(h, healthy, "u3")
	for _, c := range []*Client{sender, broken, healthy} {
		joinChat(h, c, "g1")
		recvEvents(t, c)
	}

	// Simulate a dead transport for one recipient
	broken.close()
	broken.closeSendChannel()

	sendMessage(h, sender, "g1", "still here")

	events := recvEvents(t, healthy)
	if len(events) != 1 || events[0].Type != EventReceiveMessage {
		t.Fatalf("healthy member should still receive the message, got %v", events)
	}
}

func TestHubOfflineHookFiresOnLastDisconnect(t *testing.T) {
	h := newTestHub()
	var gone []string
	h.OnOffline(func(userID string) { gone = append(gone, userID) })

	phone := newTestClient(h)
	laptop := newTestClient(h)
	join(h, phone, "u1")
	join(h, laptop, "u1")

	h.unregisterClient(phone)
	if len(gone) != 0 {
		t.Fatalf("hook must not fire while another connection remains, got %v", gone)
	}

	h.unregisterClient(laptop)
	if len(gone) != 1 || gone[0] != "u1" {
		t.Fatalf("hook should fire once with the user id, got %v", gone)
	}

	// Anonymous connections never identified, so they never go offline
	anon := newTestClient(h)
	h.unregisterClient(anon)
	if len(gone) != 1 {
		t.Fatalf("anonymous disconnect must not fire the hook, got %v", gone)
	}
}

package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) Event {
	t.Helper()
	select {
	case data := <-ch:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("bad event payload: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for push")
		return Event{}
	}
}

func TestPushFansOutToUserConnections(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := &Client{Send: make(chan []byte, 4), UserID: "u1"}
	b := &Client{Send: make(chan []byte, 4), UserID: "u1"}
	other := &Client{Send: make(chan []byte, 4), UserID: "u2"}
	h.register <- a
	h.register <- b
	h.register <- other

	h.Push("u1", Event{Type: "order-status", OrderID: "o1", Status: "shipped"})

	for _, c := range []*Client{a, b} {
		ev := recv(t, c.Send)
		if ev.Type != "order-status" || ev.OrderID != "o1" || ev.Status != "shipped" {
			t.Fatalf("unexpected event: %+v", ev)
		}
		if ev.Timestamp == 0 {
			t.Fatal("timestamp not stamped")
		}
	}

	select {
	case <-other.Send:
		t.Fatal("push leaked to another user")
	case <-time.After(50 * time.Millisecond):
	}

	h.unregister <- a
	h.unregister <- b
	h.unregister <- other
	h.Stop()
}

func TestNotifierEventsCarryProductID(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{Send: make(chan []byte, 4), UserID: "u1"}
	h.register <- c

	h.ShowRatingPrompt("u1", "P1")
	if ev := recv(t, c.Send); ev.Type != "rating-prompt" || ev.ProductID != "P1" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	h.ShowAuthPrompt("u1")
	if ev := recv(t, c.Send); ev.Type != "auth-required" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	h.unregister <- c
	h.Stop()
}

func TestPushAfterStopDoesNotBlock(t *testing.T) {
	h := NewHub()
	go h.Run()
	h.Stop()

	done := make(chan struct{})
	go func() {
		h.Push("u1", Event{Type: "order-status"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Push blocked after Stop")
	}
}

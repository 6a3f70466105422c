package ratingprompt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hampr/models"
)

type fakeNotifier struct {
	mu          sync.Mutex
	prompts     []string // "user:product"
	authPrompts []string
}

func (f *fakeNotifier) ShowRatingPrompt(userID, productID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, userID+":"+productID)
}

func (f *fakeNotifier) ShowAuthPrompt(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authPrompts = append(f.authPrompts, userID)
}

func (f *fakeNotifier) promptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeNotifier) authCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.authPrompts)
}

type fakeResolver struct {
	mu    sync.Mutex
	calls int
	ids   []string
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, _ models.Order) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ids, f.err
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func authedAlways(string) bool { return true }

func newTestPipeline(n Notifier, r Resolver, authed func(string) bool) *Pipeline {
	return New(n, r, Options{
		Debounce:      10 * time.Millisecond,
		Authenticated: authed,
	})
}

func statusEvent(orderID, userID string, from, to models.OrderStatus) models.OrderEvent {
	return models.OrderEvent{
		Old: models.Order{OrderID: orderID, UserID: userID, Status: from},
		New: models.Order{OrderID: orderID, UserID: userID, Status: to},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timeout waiting for condition")
}

func TestDuplicateOrderEventsResolveOnce(t *testing.T) {
	n := &fakeNotifier{}
	r := &fakeResolver{ids: []string{"P1"}}
	p := newTestPipeline(n, r, authedAlways)

	ev := statusEvent("o1", "u1", models.StatusPending, models.StatusConfirmed)
	p.HandleOrderEvent(context.Background(), ev)
	p.HandleOrderEvent(context.Background(), ev) // rapid duplicate

	waitFor(t, func() bool { return n.promptCount() == 1 })
	if r.callCount() != 1 {
		t.Fatalf("expected a single resolution, got %d", r.callCount())
	}
}

func TestSameStatusTransitionIsDropped(t *testing.T) {
	n := &fakeNotifier{}
	r := &fakeResolver{ids: []string{"P1"}}
	p := newTestPipeline(n, r, authedAlways)

	p.HandleOrderEvent(context.Background(), statusEvent("o1", "u1", models.StatusConfirmed, models.StatusConfirmed))

	time.Sleep(50 * time.Millisecond)
	if n.promptCount() != 0 || r.callCount() != 0 {
		t.Fatal("old == new transition must be a no-op")
	}
}

func TestNonTriggerStatusIsDropped(t *testing.T) {
	n := &fakeNotifier{}
	r := &fakeResolver{ids: []string{"P1"}}
	p := newTestPipeline(n, r, authedAlways)

	p.HandleOrderEvent(context.Background(), statusEvent("o1", "u1", models.StatusPending, models.StatusShipped))

	time.Sleep(50 * time.Millisecond)
	if n.promptCount() != 0 {
		t.Fatal("non-trigger status must not enqueue")
	}
}

func TestInlineItemsPreferredOverResolver(t *testing.T) {
	n := &fakeNotifier{}
	r := &fakeResolver{ids: []string{"FALLBACK"}}
	p := newTestPipeline(n, r, authedAlways)

	ev := statusEvent("o1", "u1", models.StatusPending, models.StatusConfirmed)
	ev.New.Items = []models.CartItem{{ItemID: "P9", Quantity: 1, Price: 5}}
	p.HandleOrderEvent(context.Background(), ev)

	waitFor(t, func() bool { return n.promptCount() == 1 })
	if r.callCount() != 0 {
		t.Fatal("resolver must not run when the row carries items inline")
	}
	if n.prompts[0] != "u1:P9" {
		t.Fatalf("expected inline product id, got %s", n.prompts[0])
	}
}

func TestResolverErrorCountsAsEmptyButConsumesOrder(t *testing.T) {
	n := &fakeNotifier{}
	r := &fakeResolver{err: errors.New("boom")}
	p := newTestPipeline(n, r, authedAlways)

	ev := statusEvent("o1", "u1", models.StatusPending, models.StatusConfirmed)
	p.HandleOrderEvent(context.Background(), ev)
	time.Sleep(50 * time.Millisecond)

	if n.promptCount() != 0 {
		t.Fatal("failed resolution must produce no prompt")
	}

	// order id is consumed: a retryed event resolves nothing again
	r.mu.Lock()
	r.err = nil
	r.ids = []string{"P1"}
	r.mu.Unlock()

	p.HandleOrderEvent(context.Background(), ev)
	time.Sleep(50 * time.Millisecond)
	if n.promptCount() != 0 {
		t.Fatal("order id must stay consumed after a failed resolution")
	}
}

func TestDebounceCoalescesBursts(t *testing.T) {
	n := &fakeNotifier{}
	p := newTestPipeline(n, nil, authedAlways)

	p.OrderConfirmed("u1", []string{"P1"})
	p.OrderConfirmed("u1", []string{"P2"})
	p.OrderConfirmed("u1", []string{"P3"})

	waitFor(t, func() bool { return n.promptCount() == 1 })
	// one prompt displayed, the rest queued behind the slot
	if got := p.QueueLen("u1"); got != 2 {
		t.Fatalf("expected 2 queued ids, got %d", got)
	}
}

func TestResolvedIDsAreCapped(t *testing.T) {
	n := &fakeNotifier{}
	p := New(n, nil, Options{
		Debounce:       10 * time.Millisecond,
		MaxResolvedIDs: 2,
		Authenticated:  authedAlways,
	})

	ev := statusEvent("o1", "u1", models.StatusPending, models.StatusConfirmed)
	for _, id := range []string{"P1", "P2", "P3", "P4"} {
		ev.New.Items = append(ev.New.Items, models.CartItem{ItemID: id, Quantity: 1})
	}
	p.HandleOrderEvent(context.Background(), ev)

	waitFor(t, func() bool { return n.promptCount() == 1 })
	if got := p.QueueLen("u1"); got != 1 {
		t.Fatalf("expected 1 queued id after cap, got %d", got)
	}
}

func TestUnauthenticatedViewerBlocksQueue(t *testing.T) {
	n := &fakeNotifier{}
	authed := false
	var mu sync.Mutex
	gate := func(string) bool {
		mu.Lock()
		defer mu.Unlock()
		return authed
	}
	p := newTestPipeline(n, nil, gate)

	p.OrderConfirmed("u1", []string{"P1", "P2"})

	waitFor(t, func() bool { return n.authCount() >= 1 })
	if n.promptCount() != 0 {
		t.Fatal("no rating prompt may show before authentication")
	}
	if got := p.QueueLen("u1"); got != 2 {
		t.Fatalf("queue must block, not drop; got %d", got)
	}

	mu.Lock()
	authed = true
	mu.Unlock()
	p.AuthChanged("u1")

	waitFor(t, func() bool { return n.promptCount() == 1 })
	if got := p.QueueLen("u1"); got != 1 {
		t.Fatalf("expected one id promoted, one queued; got %d queued", got)
	}
}

func TestClosePromotesNextQueuedID(t *testing.T) {
	n := &fakeNotifier{}
	p := newTestPipeline(n, nil, authedAlways)

	p.OrderConfirmed("u1", []string{"P1", "P2"})
	waitFor(t, func() bool { return n.promptCount() == 1 })

	first := p.Current("u1")
	if first == "" {
		t.Fatal("expected an occupied display slot")
	}

	p.ClosePrompt("u1")
	waitFor(t, func() bool { return n.promptCount() == 2 })

	second := p.Current("u1")
	if second == "" || second == first {
		t.Fatalf("expected next id promoted, got %q after %q", second, first)
	}

	p.ClosePrompt("u1")
	if got := p.Current("u1"); got != "" {
		t.Fatalf("expected idle slot, got %q", got)
	}
}

func TestStopCancelsPendingFlush(t *testing.T) {
	n := &fakeNotifier{}
	p := newTestPipeline(n, nil, authedAlways)

	p.OrderConfirmed("u1", []string{"P1"})
	p.Stop()

	time.Sleep(50 * time.Millisecond)
	if n.promptCount() != 0 {
		t.Fatal("stopped pipeline must not flush")
	}
}

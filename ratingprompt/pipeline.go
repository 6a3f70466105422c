package ratingprompt

import (
	"context"
	"sync"
	"time"

	"hampr/models"
)

// Notifier delivers prompt and auth-gate pushes to the viewer, normally over
// the realtime hub.
type Notifier interface {
	ShowRatingPrompt(userID, productID string)
	ShowAuthPrompt(userID string)
}

// Resolver finds the product ids an order contained when the changed row
// does not carry them inline.
type Resolver interface {
	Resolve(ctx context.Context, order models.Order) ([]string, error)
}

// Options tune the pipeline. Zero values fall back to the defaults.
type Options struct {
	Debounce        time.Duration               // coalescing window, default 200ms
	MaxResolvedIDs  int                         // cap per order, default 20
	TriggerStatuses map[models.OrderStatus]bool // default {confirmed}
	Authenticated   func(userID string) bool    // auth gate
}

const (
	defaultDebounce = 200 * time.Millisecond
	defaultMaxIDs   = 20
)

// userState is one viewer's prompt machine: Idle (no current, empty queue),
// Queued (ids waiting), Prompting (current occupied).
type userState struct {
	pending []string // awaiting debounce flush
	queue   []string // awaiting display
	current string   // at most one displayed prompt
	timer   *time.Timer
}

// Pipeline queues review prompts per user and shows them one at a time.
// Two producers feed it: the local order:confirmed event and the order-table
// change feed. A session-lifetime de-duplication set guarantees at-most-once
// resolution per order id; it is never pruned, which is fine at this scale.
type Pipeline struct {
	mu        sync.Mutex
	users     map[string]*userState
	processed map[string]bool // order ids already handled

	debounce time.Duration
	maxIDs   int
	triggers map[models.OrderStatus]bool
	authed   func(userID string) bool
	notifier Notifier
	resolver Resolver
	stopped  bool
}

func New(notifier Notifier, resolver Resolver, opts Options) *Pipeline {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.MaxResolvedIDs <= 0 {
		opts.MaxResolvedIDs = defaultMaxIDs
	}
	if opts.TriggerStatuses == nil {
		opts.TriggerStatuses = map[models.OrderStatus]bool{models.StatusConfirmed: true}
	}
	if opts.Authenticated == nil {
		opts.Authenticated = func(string) bool { return false }
	}
	return &Pipeline{
		users:     make(map[string]*userState),
		processed: make(map[string]bool),
		debounce:  opts.Debounce,
		maxIDs:    opts.MaxResolvedIDs,
		triggers:  opts.TriggerStatuses,
		authed:    opts.Authenticated,
		notifier:  notifier,
		resolver:  resolver,
	}
}

func (p *Pipeline) stateFor(userID string) *userState {
	st, ok := p.users[userID]
	if !ok {
		st = &userState{}
		p.users[userID] = st
	}
	return st
}

// OrderConfirmed ingests the local "order:confirmed" event.
func (p *Pipeline) OrderConfirmed(userID string, productIDs []string) {
	if userID == "" || len(productIDs) == 0 {
		return
	}
	p.enqueue(userID, productIDs)
}

// HandleOrderEvent ingests one {old, new} row pair from the change feed.
// Non-transitions (old == new) and statuses outside the trigger set are
// dropped. A given order id resolves at most once per session; resolution
// errors count as zero ids but still consume the order id.
func (p *Pipeline) HandleOrderEvent(ctx context.Context, ev models.OrderEvent) {
	if ev.New.UserID == "" {
		return
	}
	if ev.Old.Status == ev.New.Status {
		return
	}
	if !p.triggers[ev.New.Status] {
		return
	}

	p.mu.Lock()
	if p.processed[ev.New.OrderID] {
		p.mu.Unlock()
		return
	}
	p.processed[ev.New.OrderID] = true
	p.mu.Unlock()

	ids := ev.New.ProductIDs()
	if len(ids) == 0 && p.resolver != nil {
		resolved, err := p.resolver.Resolve(ctx, ev.New)
		if err == nil {
			ids = resolved
		}
	}
	if len(ids) > p.maxIDs {
		ids = ids[:p.maxIDs]
	}
	if len(ids) == 0 {
		return
	}

	p.enqueue(ev.New.UserID, ids)
}

// enqueue stages ids behind the debounce window. A new burst arrival resets
// the pending flush; only the last scheduled flush fires.
func (p *Pipeline) enqueue(userID string, ids []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}

	st := p.stateFor(userID)
	st.pending = append(st.pending, ids...)

	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = time.AfterFunc(p.debounce, func() {
		p.flush(userID)
	})
}

func (p *Pipeline) flush(userID string) {
	p.mu.Lock()
	st := p.stateFor(userID)
	st.queue = append(st.queue, st.pending...)
	st.pending = nil
	st.timer = nil
	p.mu.Unlock()

	p.Evaluate(userID)
}

// Evaluate promotes the next queued id into the display slot. When the
// viewer is unauthenticated the queue is left untouched behind an auth
// prompt: blocked, not dropped.
func (p *Pipeline) Evaluate(userID string) {
	p.mu.Lock()
	st := p.stateFor(userID)

	if st.current != "" || len(st.queue) == 0 {
		p.mu.Unlock()
		return
	}

	if !p.authed(userID) {
		p.mu.Unlock()
		if p.notifier != nil {
			p.notifier.ShowAuthPrompt(userID)
		}
		return
	}

	st.current = st.queue[0]
	st.queue = st.queue[1:]
	current := st.current
	p.mu.Unlock()

	if p.notifier != nil {
		p.notifier.ShowRatingPrompt(userID, current)
	}
}

// Current reports the id occupying the display slot, if any.
func (p *Pipeline) Current(userID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateFor(userID).current
}

// QueueLen reports how many ids wait behind the slot (pending included).
func (p *Pipeline) QueueLen(userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.stateFor(userID)
	return len(st.queue) + len(st.pending)
}

// ClosePrompt clears the display slot and promotes the next queued id.
// Dismissal and submission both land here.
func (p *Pipeline) ClosePrompt(userID string) {
	p.mu.Lock()
	p.stateFor(userID).current = ""
	p.mu.Unlock()
	p.Evaluate(userID)
}

// AuthChanged re-evaluates a user's queue after their auth state changed.
func (p *Pipeline) AuthChanged(userID string) {
	p.Evaluate(userID)
}

// Stop cancels all pending debounce timers and rejects further enqueues.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	for _, st := range p.users {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
	}
}

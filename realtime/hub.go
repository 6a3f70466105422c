package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one websocket connection belonging to a user. A user may hold
// several (tabs, devices); pushes fan out to all of them.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

type pushMsg struct {
	UserID string
	Data   []byte
}

// Event is what the storefront receives: order status changes, rating
// prompts, and auth-gate notices.
type Event struct {
	Type      string `json:"type"` // "order-status", "rating-prompt", "auth-required"
	OrderID   string `json:"orderId,omitempty"`
	Status    string `json:"status,omitempty"`
	ProductID string `json:"productId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type Hub struct {
	users      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	push       chan pushMsg
	stop       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		users:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		push:       make(chan pushMsg),
		stop:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.users[c.UserID] == nil {
				h.users[c.UserID] = make(map[*Client]bool)
			}
			h.users[c.UserID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if conns := h.users[c.UserID]; conns != nil {
				if conns[c] {
					delete(conns, c)
					close(c.Send)
				}
			}
			h.mu.Unlock()

		case m := <-h.push:
			h.mu.Lock()
			for c := range h.users[m.UserID] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.users[m.UserID], c)
				}
			}
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for _, conns := range h.users {
				for c := range conns {
					close(c.Send)
					c.Conn.Close()
				}
			}
			h.users = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.stop)
}

// Push sends an event to every connection the user holds. Users with no open
// connection simply miss the push; server state is re-readable over HTTP.
func (h *Hub) Push(userID string, ev Event) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().Unix()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		log.Println("push marshal:", err)
		return
	}
	select {
	case h.push <- pushMsg{UserID: userID, Data: data}:
	case <-h.stop:
	}
}

// ShowRatingPrompt implements ratingprompt.Notifier.
func (h *Hub) ShowRatingPrompt(userID, productID string) {
	h.Push(userID, Event{Type: "rating-prompt", ProductID: productID})
}

// ShowAuthPrompt implements ratingprompt.Notifier.
func (h *Hub) ShowAuthPrompt(userID string) {
	h.Push(userID, Event{Type: "auth-required"})
}

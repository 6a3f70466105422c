package outbox

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"hampr/models"
	"hampr/rdx"
)

const channel = "order-outbox"

// Message is one order bound for the remote mirrors. Token, when present,
// additionally routes the order to the user-scoped endpoint.
type Message struct {
	Order models.Order `json:"order"`
	Token string       `json:"token,omitempty"`
}

// Emit publishes an order to the outbox channel. One-way: the caller gets no
// result and the local order stays valid whatever happens downstream.
func Emit(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[outbox] marshal error: %v", err)
		return
	}
	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[outbox] publish error: %v", err)
	}
}

// StartMirrorWorker consumes the outbox channel and forwards each order to
// the configured mirror endpoints. Every failure is logged and dropped; there
// is no retry and no feedback to the originating mutation.
func StartMirrorWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[MirrorWorker] Listening for outbound orders...")

	client := &http.Client{Timeout: 10 * time.Second}
	genericURL := os.Getenv("ORDER_MIRROR_URL")
	userURL := os.Getenv("USER_ORDER_MIRROR_URL")

	for msg := range ch {
		var m Message
		if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
			log.Printf("[MirrorWorker] bad payload: %v", err)
			continue
		}
		mirror(client, genericURL, userURL, m)
	}
}

func mirror(client *http.Client, genericURL, userURL string, m Message) {
	if genericURL != "" {
		body := map[string]any{
			"items":         m.Order.Items,
			"email":         m.Order.Customer.Email,
			"paymentMethod": m.Order.PaymentMethod,
			"total":         m.Order.Total,
			"customer": map[string]string{
				"name":    m.Order.Customer.Name,
				"phone":   m.Order.Customer.Phone,
				"address": m.Order.Customer.Address,
				"city":    m.Order.Customer.City,
			},
		}
		post(client, genericURL, "", body)
	}

	if userURL != "" && m.Token != "" {
		post(client, userURL, m.Token, map[string]any{"items": m.Order.Items})
	}
}

func post(client *http.Client, url, token string, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		log.Printf("[MirrorWorker] marshal error: %v", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		log.Printf("[MirrorWorker] request error: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("[MirrorWorker] POST %s failed: %v", url, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("[MirrorWorker] POST %s returned %d", url, resp.StatusCode)
	}
}

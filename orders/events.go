package orders

import (
	"encoding/json"
	"log"

	"hampr/globals"
	"hampr/models"
	"hampr/rdx"
)

// EventsChannel carries {old, new} order snapshots for every effective
// status change; the rating prompt pipeline subscribes to it.
const EventsChannel = "order-events"

// PublishEvent pushes a status change onto the change feed. Best-effort.
func PublishEvent(ev models.OrderEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[orders] event marshal error: %v", err)
		return
	}
	if err := rdx.Conn.Publish(globals.Ctx, EventsChannel, data).Err(); err != nil {
		log.Printf("[orders] event publish error: %v", err)
	}
}

// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/kafet/cafeteria-reservation/internal/model"

// Event types carried by MenuItemEvent.  They mirror the change kinds a
// table-level change feed emits.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// MenuItemEvent is published after every committed menu_items mutation:
// item created, item edited, reservation counter moved, item deleted.
// Concurrent viewers consume it to reconcile their local menu view
// without polling.  NewRow is nil for DELETE events.
type MenuItemEvent struct {
	Table      string          `json:"table"`
	EventType  string          `json:"event_type"`
	MenuItemID uint64          `json:"menu_item_id"`
	NewRow     *model.MenuItem `json:"new_row,omitempty"`
	OccurredAt string          `json:"occurred_at"`
}

package model

import "time"

// Reservation statuses.  There is no intermediate "pending" state: a
// reservation is either counted against the quota (confirmed) or soft
// deleted and kept around for idempotent reactivation (cancelled).
const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Reservation records a user's booking of one serving of a menu item.
// At most one row exists per (user, menu item) pair; cancelling flips
// the status instead of deleting the row so a later re-reservation
// reactivates it.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – user who made the reservation.
//  MenuItemID – meal being reserved.
//  Status     – ReservationConfirmed or ReservationCancelled.
//  PickedUp   – admin-recorded pickup flag; only ever true while the
//               reservation is confirmed.
//  CreatedAt  – creation timestamp (UTC).
type Reservation struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	MenuItemID uint64    `json:"menu_item_id"`
	Status     string    `json:"status"`
	PickedUp   bool      `json:"picked_up"`
	CreatedAt  time.Time `json:"created_at"`
}

// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting error strings. Each sentinel maps to exactly one HTTP
// status in the handler layer.
package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMenuItemNotFound is returned when a referenced menu item id does
// not exist. Handlers translate this into a 404 response.
var ErrMenuItemNotFound = errors.New("menu item not found")

// ErrReservationNotFound is returned when a referenced reservation id
// does not exist. Handlers translate this into a 404 response.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrQuotaExceeded is returned when a reservation is attempted against
// an item whose confirmed count has already reached its quota. The
// caller cannot succeed by retrying until a slot frees up.
var ErrQuotaExceeded = errors.New("no available spots left")

// ErrAlreadyReserved is returned when a user already holds a confirmed
// reservation for the item. It is an idempotent rejection, not a
// failure worth retrying.
var ErrAlreadyReserved = errors.New("active reservation already exists")

// ErrNoActiveReservation is returned when a cancel is attempted and no
// confirmed reservation exists for the (user, item) pair.
var ErrNoActiveReservation = errors.New("no active reservation found")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as toggling pickup on a cancelled reservation
// or lowering a quota below the live reservation count. Handlers
// translate this into a 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering with an email address
// that already has an account.
var ErrEmailExists = errors.New("email already exists")

// ErrTransient wraps storage failures that are safe to retry with
// backoff: lock waits, deadlocks and busy databases. Handlers
// translate it into a 503 response.
var ErrTransient = errors.New("transient storage error")

// wrapTransient tags retryable driver errors with ErrTransient so
// callers can test with errors.Is. Everything else passes through
// unchanged. Matching is on the driver message because the MySQL and
// SQLite drivers expose no shared error type: 1205 is a lock wait
// timeout, 1213 a deadlock, and SQLITE_BUSY/SQLITE_LOCKED surface as
// "busy"/"locked" strings.
func wrapTransient(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "error 1205"),
		strings.Contains(msg, "error 1213"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "database table is locked"),
		strings.Contains(msg, "sqlite_busy"):
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}

package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kafet/cafeteria-reservation/internal/model"
)

// ReservationRepo owns the reservations table (the reservation ledger).
// Rows are keyed by (user_id, menu_item_id) with a uniqueness
// constraint; a cancelled row is kept for idempotent reactivation.
// All writes that touch the quota counter go through the ...Tx variants
// so the reservation service can commit ledger and counter together.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// GetByUserAndItemTx loads the single ledger row for a (user, item)
// pair inside a transaction.  It returns (nil, nil) when no row exists
// yet; the service branches on that to decide between insert,
// idempotent rejection and reactivation.
func (r *ReservationRepo) GetByUserAndItemTx(ctx context.Context, tx *sql.Tx, userID, menuItemID uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, menu_item_id, status, picked_up, created_at
	           FROM reservations WHERE user_id = ? AND menu_item_id = ?`
	var res model.Reservation
	err := tx.QueryRowContext(ctx, q, userID, menuItemID).Scan(
		&res.ID, &res.UserID, &res.MenuItemID, &res.Status, &res.PickedUp, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapTransient(err)
	}
	return &res, nil
}

// CreateTx inserts a new confirmed reservation and returns its id.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID, menuItemID uint64) (uint64, error) {
	const q = `INSERT INTO reservations (user_id, menu_item_id, status, picked_up)
	           VALUES (?, ?, ?, 0)`
	result, err := tx.ExecContext(ctx, q, userID, menuItemID, model.ReservationConfirmed)
	if err != nil {
		return 0, wrapTransient(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ReactivateTx flips a cancelled row back to confirmed and resets the
// pickup flag, reusing the existing row instead of inserting a second
// one for the same (user, item) pair.
func (r *ReservationRepo) ReactivateTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE reservations SET status = ?, picked_up = 0 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.ReservationConfirmed, id)
	return wrapTransient(err)
}

// CancelTx soft-deletes a reservation.  The pickup flag is cleared
// unconditionally so "picked_up implies confirmed" holds by
// construction, even when a picked-up meal is cancelled afterwards.
func (r *ReservationRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE reservations SET status = ?, picked_up = 0 WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, model.ReservationCancelled, id)
	return wrapTransient(err)
}

// DeleteByMenuItemTx hard-deletes every ledger row referencing a menu
// item.  Used only by the cascading menu-item delete.  Returns the
// number of rows removed.
func (r *ReservationRepo) DeleteByMenuItemTx(ctx context.Context, tx *sql.Tx, menuItemID uint64) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE menu_item_id = ?`, menuItemID)
	if err != nil {
		return 0, wrapTransient(err)
	}
	return result.RowsAffected()
}

// GetByID returns a single reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, menu_item_id, status, picked_up, created_at
	           FROM reservations WHERE id = ?`
	var res model.Reservation
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.UserID, &res.MenuItemID, &res.Status, &res.PickedUp, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, wrapTransient(err)
	}
	return &res, nil
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT id, user_id, menu_item_id, status, picked_up, created_at
	           FROM reservations WHERE id = ?`
	var res model.Reservation
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &res.UserID, &res.MenuItemID, &res.Status, &res.PickedUp, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, wrapTransient(err)
	}
	return &res, nil
}

// TogglePickupTx flips the pickup flag of a confirmed reservation.  It
// reports false when the row exists but is not confirmed; cancelled
// meals can never be marked picked up.
func (r *ReservationRepo) TogglePickupTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	const q = `UPDATE reservations SET picked_up = 1 - picked_up
	           WHERE id = ? AND status = ?`
	result, err := tx.ExecContext(ctx, q, id, model.ReservationConfirmed)
	if err != nil {
		return false, wrapTransient(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasActive reports whether the user holds a confirmed reservation for
// the menu item.  Used by the per-card reservation check endpoint.
func (r *ReservationRepo) HasActive(ctx context.Context, userID, menuItemID uint64) (bool, error) {
	const q = `SELECT 1 FROM reservations
	           WHERE user_id = ? AND menu_item_id = ? AND status = ?`
	var one int
	err := r.db.QueryRowContext(ctx, q, userID, menuItemID, model.ReservationConfirmed).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, wrapTransient(err)
	}
	return true, nil
}

// MenuItemSummary is the slice of a menu item that reservation views
// embed: enough to render a reservation card without a second read.
type MenuItemSummary struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Date       string `json:"date"`
	ImageURL   string `json:"image_url"`
	PriceCents int64  `json:"price_cents"`
}

// UserReservation is a confirmed reservation joined with its menu item,
// as returned to the reserving user.
type UserReservation struct {
	ID        uint64          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	PickedUp  bool            `json:"picked_up"`
	MenuItem  MenuItemSummary `json:"menu_item"`
}

const userReservationQuery = `SELECT r.id, r.created_at, r.picked_up,
	       m.id, m.name, m.date, m.image_url, m.price_cents
	FROM reservations r
	JOIN menu_items m ON m.id = r.menu_item_id
	WHERE r.user_id = ? AND r.status = ?`

// ListByUser returns all confirmed reservations for a user joined with
// their menu items, ordered by the meal's serving date ascending.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]UserReservation, error) {
	q := userReservationQuery + ` ORDER BY m.date ASC, r.id ASC`
	return r.queryUserReservations(ctx, q, userID, model.ReservationConfirmed)
}

// ListPendingByUser returns the user's confirmed, not-yet-picked-up
// reservations, capped at limit.  It backs the "meals to pick up"
// summary on the home page.
func (r *ReservationRepo) ListPendingByUser(ctx context.Context, userID uint64, limit int) ([]UserReservation, error) {
	q := userReservationQuery + ` AND r.picked_up = 0 ORDER BY m.date ASC, r.id ASC LIMIT ?`
	return r.queryUserReservations(ctx, q, userID, model.ReservationConfirmed, limit)
}

func (r *ReservationRepo) queryUserReservations(ctx context.Context, q string, args ...any) ([]UserReservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapTransient(err)
	}
	defer rows.Close()
	out := make([]UserReservation, 0)
	for rows.Next() {
		var ur UserReservation
		if err := rows.Scan(&ur.ID, &ur.CreatedAt, &ur.PickedUp,
			&ur.MenuItem.ID, &ur.MenuItem.Name, &ur.MenuItem.Date,
			&ur.MenuItem.ImageURL, &ur.MenuItem.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, ur)
	}
	return out, rows.Err()
}

// UserSummary is the profile slice embedded in admin roster rows.
type UserSummary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AdminReservation is a roster row: a reservation of any status joined
// with both the reserving user and the menu item.
type AdminReservation struct {
	ID        uint64          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Status    string          `json:"status"`
	PickedUp  bool            `json:"picked_up"`
	User      UserSummary     `json:"user"`
	MenuItem  MenuItemSummary `json:"menu_item"`
}

// Pickup filter values accepted by ListForAdmin.
const (
	PickupFilterAll       = "all"
	PickupFilterPicked    = "picked"
	PickupFilterNotPicked = "not-picked"
)

// ListForAdmin returns the full reservation roster, newest first.
// search narrows rows to those whose user name, user email or menu
// item name contains the term (case-insensitive); pickup is one of the
// PickupFilter constants.  Filtering happens in SQL so the roster
// stays a single normalized shape all the way to the caller.
func (r *ReservationRepo) ListForAdmin(ctx context.Context, search, pickup string) ([]AdminReservation, error) {
	q := `SELECT r.id, r.created_at, r.status, r.picked_up,
	             u.id, u.name, u.email,
	             m.id, m.name, m.date, m.image_url, m.price_cents
	      FROM reservations r
	      JOIN users u ON u.id = r.user_id
	      JOIN menu_items m ON m.id = r.menu_item_id`
	conds := make([]string, 0, 2)
	args := make([]any, 0, 3)
	if s := strings.TrimSpace(search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		conds = append(conds, `(LOWER(u.name) LIKE ? OR LOWER(u.email) LIKE ? OR LOWER(m.name) LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}
	switch pickup {
	case PickupFilterPicked:
		conds = append(conds, `r.picked_up = 1`)
	case PickupFilterNotPicked:
		conds = append(conds, `r.picked_up = 0`)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY r.created_at DESC, r.id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapTransient(err)
	}
	defer rows.Close()
	out := make([]AdminReservation, 0)
	for rows.Next() {
		var ar AdminReservation
		if err := rows.Scan(&ar.ID, &ar.CreatedAt, &ar.Status, &ar.PickedUp,
			&ar.User.ID, &ar.User.Name, &ar.User.Email,
			&ar.MenuItem.ID, &ar.MenuItem.Name, &ar.MenuItem.Date,
			&ar.MenuItem.ImageURL, &ar.MenuItem.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, ar)
	}
	return out, rows.Err()
}

// CountConfirmed recomputes the authoritative confirmed count from the
// ledger.  The cached counter on menu_items is the fast path; this
// exists for consistency checks.
func (r *ReservationRepo) CountConfirmed(ctx context.Context, menuItemID uint64) (int64, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE menu_item_id = ? AND status = ?`
	var n int64
	err := r.db.QueryRowContext(ctx, q, menuItemID, model.ReservationConfirmed).Scan(&n)
	if err != nil {
		return 0, wrapTransient(err)
	}
	return n, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/kafet/cafeteria-reservation/internal/model"
)

// MenuRepo provides CRUD operations for menu items.  It owns the
// menu_items table, including the cached reservation counter.  The
// counter is only ever changed through the conditional ...Tx helpers
// below so that a counter mutation always commits together with the
// ledger row that justifies it.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a new MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// DB exposes the underlying handle so callers can begin transactions.
func (r *MenuRepo) DB() *sql.DB { return r.db }

const menuColumns = `id, name, description, image_url, price_cents, date, quota, reservations, dietary_tags`

// scanMenuItem scans one menu_items row into a model.MenuItem.  The
// dietary_tags column holds a JSON array; it is decoded here so no
// caller ever sees the raw encoding.
func scanMenuItem(row interface{ Scan(...any) error }) (*model.MenuItem, error) {
	var item model.MenuItem
	var tags string
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.ImageURL,
		&item.PriceCents, &item.Date, &item.Quota, &item.Reservations, &tags)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &item.DietaryTags); err != nil {
		return nil, err
	}
	if item.DietaryTags == nil {
		item.DietaryTags = []string{}
	}
	return &item, nil
}

// Create inserts a new menu item and returns it with its generated ID
// and database defaults populated.  Validation happens in the handler;
// the repository only persists.
func (r *MenuRepo) Create(ctx context.Context, item *model.MenuItem) (*model.MenuItem, error) {
	tags, err := json.Marshal(item.DietaryTags)
	if err != nil {
		return nil, err
	}
	if item.DietaryTags == nil {
		tags = []byte("[]")
	}
	const q = `INSERT INTO menu_items (name, description, image_url, price_cents, date, quota, dietary_tags)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q,
		item.Name, item.Description, item.ImageURL, item.PriceCents, item.Date, item.Quota, string(tags))
	if err != nil {
		return nil, wrapTransient(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID returns a single menu item or ErrMenuItemNotFound.
func (r *MenuRepo) GetByID(ctx context.Context, id uint64) (*model.MenuItem, error) {
	const q = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = ?`
	item, err := scanMenuItem(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, wrapTransient(err)
	}
	return item, nil
}

// GetByIDTx is GetByID inside an existing transaction.  The reservation
// service reads the refreshed item through this before committing so
// callers always see their own write.
func (r *MenuRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.MenuItem, error) {
	const q = `SELECT ` + menuColumns + ` FROM menu_items WHERE id = ?`
	item, err := scanMenuItem(tx.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, wrapTransient(err)
	}
	return item, nil
}

// ListByDateRange returns all menu items whose date falls inside the
// inclusive [start, end] range, ordered by date ascending with the id
// as a stable tie-break.  Dates use model.DateLayout, which sorts
// lexicographically, so the range filter is a plain string comparison.
func (r *MenuRepo) ListByDateRange(ctx context.Context, start, end string) ([]model.MenuItem, error) {
	const q = `SELECT ` + menuColumns + ` FROM menu_items
	           WHERE date >= ? AND date <= ?
	           ORDER BY date ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, start, end)
	if err != nil {
		return nil, wrapTransient(err)
	}
	defer rows.Close()
	items := make([]model.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// MenuItemPatch carries the optional fields of a merge-patch update.
// Nil fields are left untouched.
type MenuItemPatch struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	PriceCents  *int64    `json:"price_cents"`
	Date        *string   `json:"date"`
	Quota       *int64    `json:"quota"`
	DietaryTags *[]string `json:"dietary_tags"`
}

// Update applies a merge-patch to a menu item: only the supplied fields
// change.  Lowering the quota below the current confirmed count would
// break the quota invariant, so such an update fails with ErrConflict.
// Returns the updated item.
func (r *MenuRepo) Update(ctx context.Context, id uint64, patch MenuItemPatch) (*model.MenuItem, error) {
	sets := make([]string, 0, 7)
	args := make([]any, 0, 9)
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.PriceCents != nil {
		add("price_cents", *patch.PriceCents)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.DietaryTags != nil {
		tags, err := json.Marshal(*patch.DietaryTags)
		if err != nil {
			return nil, err
		}
		add("dietary_tags", string(tags))
	}
	if patch.Quota != nil {
		add("quota", *patch.Quota)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	query := "UPDATE menu_items SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)
	if patch.Quota != nil {
		// Guard the invariant inside the same statement so a racing
		// reservation cannot slip between a check and the write.
		query += " AND reservations <= ?"
		args = append(args, *patch.Quota)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, wrapTransient(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Distinguish a missing item from a rejected quota change.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return r.GetByID(ctx, id)
}

// SetImageURL stores the public URL of an uploaded meal photo.
func (r *MenuRepo) SetImageURL(ctx context.Context, id uint64, url string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET image_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return wrapTransient(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

// IncrementReservedTx bumps the cached reservation counter by one, but
// only while it is still below the quota.  The conditional update is
// the oversell guard: when two callers race for the last slot the
// storage engine serializes the updates and exactly one sees a row
// affected.  Returns false when the quota is already full.
func (r *MenuRepo) IncrementReservedTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	const q = `UPDATE menu_items SET reservations = reservations + 1
	           WHERE id = ? AND reservations < quota`
	result, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return false, wrapTransient(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DecrementReservedTx lowers the cached reservation counter by one,
// never below zero.
func (r *MenuRepo) DecrementReservedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE menu_items SET reservations = reservations - 1
	           WHERE id = ? AND reservations > 0`
	_, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return wrapTransient(err)
	}
	return nil
}

// DeleteTx removes the menu item row inside an existing transaction.
// Dependent reservation rows must already be gone; the reservation
// service handles the full cascade.
func (r *MenuRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return wrapTransient(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

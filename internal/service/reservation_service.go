// Package service holds the reservation service: the only writer of
// reservation rows and of the cached reservation counter on menu
// items.  Every operation runs as one atomic transaction so the
// counter and the ledger are never visible in disagreement.
package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/kafet/cafeteria-reservation/internal/model"
	"github.com/kafet/cafeteria-reservation/internal/queue"
	"github.com/kafet/cafeteria-reservation/internal/repository"
)

// ImageRemover deletes a stored meal photo by its public URL.  Removal
// failures are logged, never surfaced: the primary deletion has already
// committed by the time it runs.
type ImageRemover interface {
	Remove(url string) error
}

// ReservationService coordinates the catalog store and the reservation
// ledger.  Publish and Images are optional collaborators: a nil
// Publish disables the change feed and a nil Images skips photo
// cleanup, which is how tests run the service hermetically.
type ReservationService struct {
	db     *sql.DB
	menus  *repository.MenuRepo
	ledger *repository.ReservationRepo

	// Publish emits a change-feed event after a successful commit.
	Publish func(context.Context, queue.MenuItemEvent) error
	// Images removes stored meal photos after a cascading delete.
	Images ImageRemover
}

// NewReservationService constructs the service.  All repositories must
// be non-nil and bound to the same database handle as db.
func NewReservationService(db *sql.DB, menus *repository.MenuRepo, ledger *repository.ReservationRepo) *ReservationService {
	if db == nil || menus == nil || ledger == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{db: db, menus: menus, ledger: ledger}
}

// withTx runs fn inside a transaction, rolling back unless fn succeeds
// and the commit goes through.  fn must only touch the database through
// the passed tx; mixing in pool queries would self-deadlock on engines
// with a single writer connection.
func (s *ReservationService) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Reserve books one serving of a menu item for a user.
//
// Inside a single transaction it looks up the (user, item) ledger row:
// no row inserts a fresh confirmed reservation, a confirmed row is an
// idempotent rejection, and a cancelled row is reactivated.  In both
// writing branches the quota check and the counter bump are one
// conditional update, so two users racing for the last slot can never
// both succeed.  Returns the just-committed item snapshot so callers
// see their own write without a second read.
func (s *ReservationService) Reserve(ctx context.Context, userID, menuItemID uint64) (*model.MenuItem, error) {
	var item *model.MenuItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.menus.GetByIDTx(ctx, tx, menuItemID); err != nil {
			return err
		}
		existing, err := s.ledger.GetByUserAndItemTx(ctx, tx, userID, menuItemID)
		if err != nil {
			return err
		}
		switch {
		case existing == nil:
			ok, err := s.menus.IncrementReservedTx(ctx, tx, menuItemID)
			if err != nil {
				return err
			}
			if !ok {
				return repository.ErrQuotaExceeded
			}
			if _, err := s.ledger.CreateTx(ctx, tx, userID, menuItemID); err != nil {
				return err
			}
		case existing.Status == model.ReservationConfirmed:
			return repository.ErrAlreadyReserved
		default: // cancelled: reuse the row instead of inserting a new one
			ok, err := s.menus.IncrementReservedTx(ctx, tx, menuItemID)
			if err != nil {
				return err
			}
			if !ok {
				return repository.ErrQuotaExceeded
			}
			if err := s.ledger.ReactivateTx(ctx, tx, existing.ID); err != nil {
				return err
			}
		}
		item, err = s.menus.GetByIDTx(ctx, tx, menuItemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishChange(ctx, queue.EventUpdate, menuItemID, item)
	return item, nil
}

// Cancel releases a user's confirmed reservation, freeing its quota
// slot and clearing the pickup flag.  The ledger row survives as
// cancelled so a later Reserve reactivates it.  Fails with
// ErrNoActiveReservation when there is nothing confirmed to cancel.
func (s *ReservationService) Cancel(ctx context.Context, userID, menuItemID uint64) (*model.MenuItem, error) {
	var item *model.MenuItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.menus.GetByIDTx(ctx, tx, menuItemID); err != nil {
			return err
		}
		existing, err := s.ledger.GetByUserAndItemTx(ctx, tx, userID, menuItemID)
		if err != nil {
			return err
		}
		if existing == nil || existing.Status != model.ReservationConfirmed {
			return repository.ErrNoActiveReservation
		}
		if err := s.ledger.CancelTx(ctx, tx, existing.ID); err != nil {
			return err
		}
		if err := s.menus.DecrementReservedTx(ctx, tx, menuItemID); err != nil {
			return err
		}
		item, err = s.menus.GetByIDTx(ctx, tx, menuItemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publishChange(ctx, queue.EventUpdate, menuItemID, item)
	return item, nil
}

// DeleteMenuItemCascade removes a menu item together with every
// reservation row referencing it, in one transaction.  The stored meal
// photo is removed best-effort after the commit; its failure is logged
// and never surfaced because the primary deletion already succeeded.
func (s *ReservationService) DeleteMenuItemCascade(ctx context.Context, menuItemID uint64) error {
	var imageURL string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		item, err := s.menus.GetByIDTx(ctx, tx, menuItemID)
		if err != nil {
			return err
		}
		imageURL = item.ImageURL
		if _, err := s.ledger.DeleteByMenuItemTx(ctx, tx, menuItemID); err != nil {
			return err
		}
		return s.menus.DeleteTx(ctx, tx, menuItemID)
	})
	if err != nil {
		return err
	}
	s.publishChange(ctx, queue.EventDelete, menuItemID, nil)
	if imageURL != "" && s.Images != nil {
		if err := s.Images.Remove(imageURL); err != nil {
			log.Printf("reservation-service: orphaned image %s after menu item %d delete: %v",
				imageURL, menuItemID, err)
		}
	}
	return nil
}

// TogglePickup flips the picked_up flag of a confirmed reservation and
// returns the updated row.  Unknown ids fail with
// ErrReservationNotFound; cancelled reservations fail with ErrConflict
// because confirmed is the only state eligible for pickup.
func (s *ReservationService) TogglePickup(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	var res *model.Reservation
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		toggled, err := s.ledger.TogglePickupTx(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		res, err = s.ledger.GetByIDTx(ctx, tx, reservationID)
		if err != nil {
			return err
		}
		if !toggled {
			return repository.ErrConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// PublishMenuChange emits a change-feed event for catalog mutations
// made outside this service (admin create/update).  It shares the
// nil-safe publish path used by the transactional operations.
func (s *ReservationService) PublishMenuChange(ctx context.Context, eventType string, item *model.MenuItem) {
	var id uint64
	if item != nil {
		id = item.ID
	}
	s.publishChange(ctx, eventType, id, item)
}

// publishChange sends a MenuItemEvent when a publisher is configured.
// The feed is advisory, so failures are already logged inside the
// publisher and otherwise ignored.
func (s *ReservationService) publishChange(ctx context.Context, eventType string, menuItemID uint64, item *model.MenuItem) {
	if s.Publish == nil {
		return
	}
	_ = s.Publish(ctx, queue.MenuItemEvent{
		Table:      "menu_items",
		EventType:  eventType,
		MenuItemID: menuItemID,
		NewRow:     item,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

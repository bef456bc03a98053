package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/kafet/cafeteria-reservation/internal/database"
	"github.com/kafet/cafeteria-reservation/internal/model"
)

func seedTestUser(t *testing.T, db *sql.DB, name, email string) uint64 {
	t.Helper()
	id, err := NewUserRepo(db).Create(context.Background(), name, email, "secret", model.RoleUser, 4)
	if err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return id
}

// confirmReservation inserts a confirmed ledger row the way the service
// does: counter bump and insert in one transaction.
func confirmReservation(t *testing.T, db *sql.DB, userID, itemID uint64) uint64 {
	t.Helper()
	ctx := context.Background()
	menus := NewMenuRepo(db)
	ledger := NewReservationRepo(db)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	ok, err := menus.IncrementReservedTx(ctx, tx, itemID)
	if err != nil || !ok {
		tx.Rollback()
		t.Fatalf("IncrementReservedTx: ok=%v err=%v", ok, err)
	}
	id, err := ledger.CreateTx(ctx, tx, userID, itemID)
	if err != nil {
		tx.Rollback()
		t.Fatalf("CreateTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return id
}

func markPickedUp(t *testing.T, db *sql.DB, reservationID uint64) {
	t.Helper()
	ctx := context.Background()
	ledger := NewReservationRepo(db)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	ok, err := ledger.TogglePickupTx(ctx, tx, reservationID)
	if err != nil || !ok {
		tx.Rollback()
		t.Fatalf("TogglePickupTx: ok=%v err=%v", ok, err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestListByUserOrdersByServingDate(t *testing.T) {
	db := database.NewTestDB(t)
	menus := NewMenuRepo(db)
	ledger := NewReservationRepo(db)
	uid := seedTestUser(t, db, "Anna", "anna@example.com")

	// Insert out of date order to prove the sort.
	late := seedMenuItem(t, menus, "Friday Meal", "2026-09-11", 10, nil)
	early := seedMenuItem(t, menus, "Monday Meal", "2026-09-07", 10, nil)
	mid := seedMenuItem(t, menus, "Wednesday Meal", "2026-09-09", 10, nil)
	for _, it := range []*model.MenuItem{late, early, mid} {
		confirmReservation(t, db, uid, it.ID)
	}

	list, err := ledger.ListByUser(context.Background(), uid)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	wantDates := []string{"2026-09-07", "2026-09-09", "2026-09-11"}
	for i, ur := range list {
		if ur.MenuItem.Date != wantDates[i] {
			t.Errorf("position %d date = %s, want %s", i, ur.MenuItem.Date, wantDates[i])
		}
	}
}

func TestListByUserExcludesCancelled(t *testing.T) {
	db := database.NewTestDB(t)
	menus := NewMenuRepo(db)
	ledger := NewReservationRepo(db)
	uid := seedTestUser(t, db, "Anna", "anna@example.com")
	item := seedMenuItem(t, menus, "Goulash", "2026-09-08", 10, nil)
	resID := confirmReservation(t, db, uid, item.ID)

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	if err := ledger.CancelTx(ctx, tx, resID); err != nil {
		tx.Rollback()
		t.Fatalf("CancelTx: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	list, err := ledger.ListByUser(ctx, uid)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("cancelled reservation still listed: %+v", list)
	}

	active, err := ledger.HasActive(ctx, uid, item.ID)
	if err != nil {
		t.Fatalf("HasActive: %v", err)
	}
	if active {
		t.Error("HasActive = true for a cancelled reservation")
	}
}

func TestListPendingByUser(t *testing.T) {
	db := database.NewTestDB(t)
	menus := NewMenuRepo(db)
	ledger := NewReservationRepo(db)
	uid := seedTestUser(t, db, "Anna", "anna@example.com")

	a := seedMenuItem(t, menus, "Meal A", "2026-09-07", 10, nil)
	b := seedMenuItem(t, menus, "Meal B", "2026-09-08", 10, nil)
	c := seedMenuItem(t, menus, "Meal C", "2026-09-09", 10, nil)
	confirmReservation(t, db, uid, a.ID)
	pickedID := confirmReservation(t, db, uid, b.ID)
	confirmReservation(t, db, uid, c.ID)
	markPickedUp(t, db, pickedID)

	ctx := context.Background()
	pending, err := ledger.ListPendingByUser(ctx, uid, 10)
	if err != nil {
		t.Fatalf("ListPendingByUser: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2 (picked-up row excluded)", len(pending))
	}
	if pending[0].MenuItem.Name != "Meal A" || pending[1].MenuItem.Name != "Meal C" {
		t.Errorf("pending order = %s, %s", pending[0].MenuItem.Name, pending[1].MenuItem.Name)
	}

	// The limit caps the result at the soonest meals.
	pending, err = ledger.ListPendingByUser(ctx, uid, 1)
	if err != nil {
		t.Fatalf("ListPendingByUser limit: %v", err)
	}
	if len(pending) != 1 || pending[0].MenuItem.Name != "Meal A" {
		t.Errorf("limited pending = %+v", pending)
	}
}

func TestListForAdmin(t *testing.T) {
	db := database.NewTestDB(t)
	menus := NewMenuRepo(db)
	ledger := NewReservationRepo(db)

	anna := seedTestUser(t, db, "Anna Novak", "anna@example.com")
	bert := seedTestUser(t, db, "Bert Kos", "bert@school.org")
	soup := seedMenuItem(t, menus, "Lentil Soup", "2026-09-07", 10, nil)
	pizza := seedMenuItem(t, menus, "Pizza Margherita", "2026-09-08", 10, nil)

	confirmReservation(t, db, anna, soup.ID)
	pickedID := confirmReservation(t, db, anna, pizza.ID)
	confirmReservation(t, db, bert, soup.ID)
	markPickedUp(t, db, pickedID)

	ctx := context.Background()
	all, err := ledger.ListForAdmin(ctx, "", PickupFilterAll)
	if err != nil {
		t.Fatalf("ListForAdmin: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("roster = %d rows, want 3", len(all))
	}

	// Case-insensitive search across user name, email and meal name.
	for _, term := range []string{"anna", "ANNA", "novak", "anna@example"} {
		rows, err := ledger.ListForAdmin(ctx, term, PickupFilterAll)
		if err != nil {
			t.Fatalf("search %q: %v", term, err)
		}
		if len(rows) != 2 {
			t.Errorf("search %q = %d rows, want 2", term, len(rows))
		}
	}
	rows, err := ledger.ListForAdmin(ctx, "pizza", PickupFilterAll)
	if err != nil {
		t.Fatalf("search pizza: %v", err)
	}
	if len(rows) != 1 || rows[0].User.Name != "Anna Novak" {
		t.Errorf("meal-name search = %+v", rows)
	}

	picked, err := ledger.ListForAdmin(ctx, "", PickupFilterPicked)
	if err != nil {
		t.Fatalf("picked filter: %v", err)
	}
	if len(picked) != 1 || !picked[0].PickedUp {
		t.Errorf("picked filter = %+v", picked)
	}
	notPicked, err := ledger.ListForAdmin(ctx, "", PickupFilterNotPicked)
	if err != nil {
		t.Fatalf("not-picked filter: %v", err)
	}
	if len(notPicked) != 2 {
		t.Errorf("not-picked = %d rows, want 2", len(notPicked))
	}

	// Search and pickup filter combine.
	rows, err = ledger.ListForAdmin(ctx, "anna", PickupFilterNotPicked)
	if err != nil {
		t.Fatalf("combined filter: %v", err)
	}
	if len(rows) != 1 || rows[0].MenuItem.Name != "Lentil Soup" {
		t.Errorf("combined filter = %+v", rows)
	}
}

func TestUniqueUserItemConstraint(t *testing.T) {
	db := database.NewTestDB(t)
	menus := NewMenuRepo(db)
	ledger := NewReservationRepo(db)
	uid := seedTestUser(t, db, "Anna", "anna@example.com")
	item := seedMenuItem(t, menus, "Goulash", "2026-09-08", 10, nil)
	confirmReservation(t, db, uid, item.ID)

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()
	if _, err := ledger.CreateTx(ctx, tx, uid, item.ID); err == nil {
		t.Fatal("second ledger row for the same (user, item) pair was accepted")
	}
}

func TestTransientErrorsAreTagged(t *testing.T) {
	err := wrapTransient(errors.New("database is locked (5) (SQLITE_BUSY)"))
	if !errors.Is(err, ErrTransient) {
		t.Errorf("busy error not tagged transient: %v", err)
	}
	err = wrapTransient(errors.New("Error 1213: Deadlock found when trying to get lock"))
	if !errors.Is(err, ErrTransient) {
		t.Errorf("deadlock error not tagged transient: %v", err)
	}
	plain := errors.New("syntax error")
	if got := wrapTransient(plain); got != plain {
		t.Errorf("plain error was rewritten: %v", got)
	}
}

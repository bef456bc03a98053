package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kafet/cafeteria-reservation/internal/database"
	"github.com/kafet/cafeteria-reservation/internal/model"
)

func seedMenuItem(t *testing.T, repo *MenuRepo, name, date string, quota int64, tags []string) *model.MenuItem {
	t.Helper()
	item, err := repo.Create(context.Background(), &model.MenuItem{
		Name:        name,
		Description: "test meal",
		PriceCents:  390,
		Date:        date,
		Quota:       quota,
		DietaryTags: tags,
	})
	if err != nil {
		t.Fatalf("seeding %s: %v", name, err)
	}
	return item
}

func TestMenuCreateAndGet(t *testing.T) {
	repo := NewMenuRepo(database.NewTestDB(t))
	created := seedMenuItem(t, repo, "Lentil Soup", "2026-09-07", 40, []string{model.TagVegan, model.TagGlutenFree})

	got, err := repo.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Lentil Soup" || got.Reservations != 0 {
		t.Errorf("unexpected item: %+v", got)
	}
	if !reflect.DeepEqual(got.DietaryTags, []string{model.TagVegan, model.TagGlutenFree}) {
		t.Errorf("dietary tags did not round-trip: %v", got.DietaryTags)
	}

	if _, err := repo.GetByID(context.Background(), 9999); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("GetByID unknown err = %v, want ErrMenuItemNotFound", err)
	}
}

func TestMenuListByDateRange(t *testing.T) {
	repo := NewMenuRepo(database.NewTestDB(t))
	seedMenuItem(t, repo, "Wednesday Meal", "2026-09-09", 10, nil)
	seedMenuItem(t, repo, "Monday Meal B", "2026-09-07", 10, nil)
	seedMenuItem(t, repo, "Monday Meal A", "2026-09-07", 10, nil)
	seedMenuItem(t, repo, "Next Week", "2026-09-14", 10, nil)

	items, err := repo.ListByDateRange(context.Background(), "2026-09-07", "2026-09-11")
	if err != nil {
		t.Fatalf("ListByDateRange: %v", err)
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	want := []string{"Monday Meal B", "Monday Meal A", "Wednesday Meal"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("listing = %v, want %v (date asc, id as tie-break)", names, want)
	}

	// A single-day range returns just that day.
	items, err = repo.ListByDateRange(context.Background(), "2026-09-09", "2026-09-09")
	if err != nil {
		t.Fatalf("ListByDateRange day: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Wednesday Meal" {
		t.Errorf("day listing = %+v", items)
	}
}

func TestMenuUpdateMergePatch(t *testing.T) {
	repo := NewMenuRepo(database.NewTestDB(t))
	item := seedMenuItem(t, repo, "Goulash", "2026-09-08", 30, nil)

	newName := "Beef Goulash"
	newPrice := int64(520)
	updated, err := repo.Update(context.Background(), item.ID, MenuItemPatch{
		Name:       &newName,
		PriceCents: &newPrice,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != newName || updated.PriceCents != newPrice {
		t.Errorf("patched fields not applied: %+v", updated)
	}
	// Untouched fields survive.
	if updated.Date != "2026-09-08" || updated.Quota != 30 {
		t.Errorf("unpatched fields changed: %+v", updated)
	}

	tags := []string{model.TagVegetarian}
	updated, err = repo.Update(context.Background(), item.ID, MenuItemPatch{DietaryTags: &tags})
	if err != nil {
		t.Fatalf("Update tags: %v", err)
	}
	if !reflect.DeepEqual(updated.DietaryTags, tags) {
		t.Errorf("tags = %v, want %v", updated.DietaryTags, tags)
	}

	// Empty patch is a no-op read.
	updated, err = repo.Update(context.Background(), item.ID, MenuItemPatch{})
	if err != nil {
		t.Fatalf("empty Update: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("empty patch changed the row: %+v", updated)
	}

	if _, err := repo.Update(context.Background(), 9999, MenuItemPatch{Name: &newName}); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("Update unknown err = %v, want ErrMenuItemNotFound", err)
	}
}

func TestMenuQuotaCannotDropBelowReservations(t *testing.T) {
	db := database.NewTestDB(t)
	repo := NewMenuRepo(db)
	item := seedMenuItem(t, repo, "Pizza", "2026-09-10", 5, nil)

	ctx := context.Background()
	// Take three slots.
	for i := 0; i < 3; i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin tx: %v", err)
		}
		ok, err := repo.IncrementReservedTx(ctx, tx, item.ID)
		if err != nil || !ok {
			t.Fatalf("IncrementReservedTx: ok=%v err=%v", ok, err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}

	two := int64(2)
	if _, err := repo.Update(ctx, item.ID, MenuItemPatch{Quota: &two}); !errors.Is(err, ErrConflict) {
		t.Fatalf("lowering quota below live count err = %v, want ErrConflict", err)
	}

	three := int64(3)
	updated, err := repo.Update(ctx, item.ID, MenuItemPatch{Quota: &three})
	if err != nil {
		t.Fatalf("lowering quota to the live count: %v", err)
	}
	if updated.Quota != 3 {
		t.Errorf("quota = %d, want 3", updated.Quota)
	}
}

func TestIncrementStopsAtQuota(t *testing.T) {
	db := database.NewTestDB(t)
	repo := NewMenuRepo(db)
	item := seedMenuItem(t, repo, "Fish Sticks", "2026-09-11", 2, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			t.Fatalf("begin tx: %v", err)
		}
		ok, err := repo.IncrementReservedTx(ctx, tx, item.ID)
		if err != nil {
			t.Fatalf("IncrementReservedTx: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("commit: %v", err)
		}
		if wantOK := i < 2; ok != wantOK {
			t.Errorf("increment %d ok = %v, want %v", i, ok, wantOK)
		}
	}
	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Reservations != 2 {
		t.Errorf("reservations = %d, want 2 (capped at quota)", got.Reservations)
	}
}

func TestSetImageURL(t *testing.T) {
	repo := NewMenuRepo(database.NewTestDB(t))
	item := seedMenuItem(t, repo, "Pancakes", "2026-09-11", 20, nil)

	ctx := context.Background()
	if err := repo.SetImageURL(ctx, item.ID, "/images/abc.jpg"); err != nil {
		t.Fatalf("SetImageURL: %v", err)
	}
	got, err := repo.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ImageURL != "/images/abc.jpg" {
		t.Errorf("image_url = %q", got.ImageURL)
	}

	if err := repo.SetImageURL(ctx, 9999, "/images/x.jpg"); !errors.Is(err, ErrMenuItemNotFound) {
		t.Errorf("SetImageURL unknown err = %v, want ErrMenuItemNotFound", err)
	}
}

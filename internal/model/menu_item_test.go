package model

import "testing"

func validItem() MenuItem {
	return MenuItem{
		Name:        "Spaghetti",
		Description: "With tomato sauce",
		PriceCents:  450,
		Date:        "2026-09-01",
		Quota:       50,
		DietaryTags: []string{TagVegetarian},
	}
}

func TestMenuItemValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*MenuItem)
		wantErr bool
	}{
		{"valid", func(m *MenuItem) {}, false},
		{"no tags", func(m *MenuItem) { m.DietaryTags = nil }, false},
		{"zero quota", func(m *MenuItem) { m.Quota = 0 }, false},
		{"free meal", func(m *MenuItem) { m.PriceCents = 0 }, false},
		{"missing name", func(m *MenuItem) { m.Name = "" }, true},
		{"missing description", func(m *MenuItem) { m.Description = "" }, true},
		{"negative price", func(m *MenuItem) { m.PriceCents = -1 }, true},
		{"negative quota", func(m *MenuItem) { m.Quota = -1 }, true},
		{"bad date", func(m *MenuItem) { m.Date = "01.09.2026" }, true},
		{"unknown tag", func(m *MenuItem) { m.DietaryTags = []string{"spicy"} }, true},
		{"duplicate tag", func(m *MenuItem) { m.DietaryTags = []string{TagVegan, TagVegan} }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := validItem()
			tc.mutate(&item)
			err := item.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestSpotsLeft(t *testing.T) {
	m := MenuItem{Quota: 5, Reservations: 3}
	if got := m.SpotsLeft(); got != 2 {
		t.Errorf("SpotsLeft = %d, want 2", got)
	}
	m.Reservations = 5
	if got := m.SpotsLeft(); got != 0 {
		t.Errorf("SpotsLeft at quota = %d, want 0", got)
	}
	// A quota lowered by an admin never yields a negative count.
	m = MenuItem{Quota: 2, Reservations: 3}
	if got := m.SpotsLeft(); got != 0 {
		t.Errorf("SpotsLeft over quota = %d, want 0", got)
	}
}

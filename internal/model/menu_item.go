package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the serving-date format used throughout the API and the
// database.  It sorts lexicographically, which the date-range queries
// rely on.
const DateLayout = "2006-01-02"

// Dietary tags a menu item may carry.
const (
	TagGlutenFree = "gluten-free"
	TagVegan      = "vegan"
	TagVegetarian = "vegetarian"
	TagOrganic    = "organic"
)

var validTags = map[string]bool{
	TagGlutenFree: true,
	TagVegan:      true,
	TagVegetarian: true,
	TagOrganic:    true,
}

// MenuItem is one meal offered on a specific serving date.  Quota is
// the number of servings offered; Reservations is the cached count of
// confirmed reservations, maintained transactionally by the
// reservation service and never written anywhere else.
type MenuItem struct {
	ID           uint64   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	ImageURL     string   `json:"image_url"`
	PriceCents   int64    `json:"price_cents"`
	Date         string   `json:"date"`
	Quota        int64    `json:"quota"`
	Reservations int64    `json:"reservations"`
	DietaryTags  []string `json:"dietary_tags"`
}

// Validate checks the fields an admin supplies when creating an item.
func (m *MenuItem) Validate() error {
	if m.Name == "" {
		return errors.New("name is required")
	}
	if m.Description == "" {
		return errors.New("description is required")
	}
	if m.PriceCents < 0 {
		return errors.New("price_cents must not be negative")
	}
	if m.Quota < 0 {
		return errors.New("quota must not be negative")
	}
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return errors.New("invalid date, want YYYY-MM-DD")
	}
	return ValidateDietaryTags(m.DietaryTags)
}

// ValidateDietaryTags checks that every tag is known and appears once.
func ValidateDietaryTags(tags []string) error {
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		if !validTags[t] {
			return fmt.Errorf("unknown dietary tag: %q", t)
		}
		if seen[t] {
			return fmt.Errorf("duplicate dietary tag: %q", t)
		}
		seen[t] = true
	}
	return nil
}

// SpotsLeft returns the number of unreserved servings.
func (m *MenuItem) SpotsLeft() int64 {
	left := m.Quota - m.Reservations
	if left < 0 {
		return 0
	}
	return left
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kafet/cafeteria-reservation/internal/database"
	"github.com/kafet/cafeteria-reservation/internal/model"
	"github.com/kafet/cafeteria-reservation/internal/repository"
)

func TestSchoolWeek(t *testing.T) {
	cases := []struct {
		date  string
		start string
		end   string
	}{
		{"2026-09-07", "2026-09-07", "2026-09-11"}, // Monday
		{"2026-09-09", "2026-09-07", "2026-09-11"}, // Wednesday
		{"2026-09-11", "2026-09-07", "2026-09-11"}, // Friday
		{"2026-09-12", "2026-09-07", "2026-09-11"}, // Saturday stays in its week
		{"2026-09-13", "2026-09-07", "2026-09-11"}, // Sunday too
		{"2026-09-14", "2026-09-14", "2026-09-18"}, // next Monday
	}
	for _, tc := range cases {
		d, err := time.Parse(model.DateLayout, tc.date)
		if err != nil {
			t.Fatalf("parsing %s: %v", tc.date, err)
		}
		start, end := schoolWeek(d)
		if start != tc.start || end != tc.end {
			t.Errorf("schoolWeek(%s) = [%s, %s], want [%s, %s]",
				tc.date, start, end, tc.start, tc.end)
		}
	}
}

func TestMenuListWeekView(t *testing.T) {
	db := database.NewTestDB(t)
	menus := repository.NewMenuRepo(db)
	h := NewMenuHandler(menus)

	seed := func(name, date string) {
		t.Helper()
		_, err := menus.Create(context.Background(), &model.MenuItem{
			Name: name, Description: "d", PriceCents: 100, Date: date, Quota: 10,
		})
		if err != nil {
			t.Fatalf("seeding %s: %v", name, err)
		}
	}
	seed("In Week", "2026-09-08")
	seed("Also In Week", "2026-09-11")
	seed("Next Week", "2026-09-14")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/menu?date=2026-09-09&view=week", nil)
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Start string           `json:"start"`
		End   string           `json:"end"`
		Items []model.MenuItem `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Start != "2026-09-07" || resp.End != "2026-09-11" {
		t.Errorf("range = [%s, %s]", resp.Start, resp.End)
	}
	if len(resp.Items) != 2 {
		t.Errorf("items = %d, want 2", len(resp.Items))
	}
}

func TestMenuListRejectsBadParams(t *testing.T) {
	db := database.NewTestDB(t)
	h := NewMenuHandler(repository.NewMenuRepo(db))
	e := echo.New()

	for _, target := range []string{
		"/v1/menu?date=not-a-date",
		"/v1/menu?view=month",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		if err := h.List(e.NewContext(req, rec)); err != nil {
			t.Fatalf("List(%s): %v", target, err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d, want 400", target, rec.Code)
		}
	}
}

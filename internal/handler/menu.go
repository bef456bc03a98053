package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kafet/cafeteria-reservation/internal/model"
	"github.com/kafet/cafeteria-reservation/internal/repository"
)

// MenuHandler serves the public menu catalog: day and week listings
// plus single-item lookups.  No authentication is required so students
// can browse before logging in.
type MenuHandler struct {
	Menus *repository.MenuRepo
}

func NewMenuHandler(menus *repository.MenuRepo) *MenuHandler {
	if menus == nil {
		panic("nil repository passed to NewMenuHandler")
	}
	return &MenuHandler{Menus: menus}
}

// List handles GET /v1/menu?date=YYYY-MM-DD&view=day|week.  The date
// defaults to today; view defaults to day.  The week view covers the
// school week containing the date: Monday through Friday.
func (h *MenuHandler) List(c echo.Context) error {
	dateStr := c.QueryParam("date")
	if dateStr == "" {
		dateStr = time.Now().UTC().Format(model.DateLayout)
	}
	day, err := time.Parse(model.DateLayout, dateStr)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, want YYYY-MM-DD"})
	}

	start, end := dateStr, dateStr
	switch view := c.QueryParam("view"); view {
	case "", "day":
	case "week":
		start, end = schoolWeek(day)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid view, want day or week"})
	}

	items, err := h.Menus.ListByDateRange(c.Request().Context(), start, end)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"start": start,
		"end":   end,
		"items": items,
	})
}

// Get handles GET /v1/menu/:id.
func (h *MenuHandler) Get(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}
	item, err := h.Menus.GetByID(c.Request().Context(), id)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// schoolWeek returns the Monday and Friday dates of the week containing
// d.  Weekend dates map to the week they fall in, so a Saturday request
// shows the week just ended rather than an empty one.
func schoolWeek(d time.Time) (start, end string) {
	daysSinceMonday := (int(d.Weekday()) + 6) % 7
	monday := d.AddDate(0, 0, -daysSinceMonday)
	friday := monday.AddDate(0, 0, 4)
	return monday.Format(model.DateLayout), friday.Format(model.DateLayout)
}

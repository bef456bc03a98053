package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kafet/cafeteria-reservation/internal/repository"
)

// getUserID extracts the user_id set by the JWT middleware and converts
// it to uint64.  JWT numeric claims decode as float64, but the value
// may also arrive as a string or an integer type depending on how the
// token was issued.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseIDParam parses a positive numeric path parameter.
func parseIDParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// writeRepoError maps repository/service sentinel errors to HTTP
// responses: missing rows to 404, state conflicts to 409, transient
// storage trouble to 503 and anything else to 500.
func writeRepoError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrMenuItemNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "menu item not found"})
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrQuotaExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no available spots left"})
	case errors.Is(err, repository.ErrAlreadyReserved):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already reserved"})
	case errors.Is(err, repository.ErrNoActiveReservation):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no active reservation"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflicting state"})
	case errors.Is(err, repository.ErrTransient):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage temporarily unavailable, retry"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

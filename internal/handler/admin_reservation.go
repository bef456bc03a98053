package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kafet/cafeteria-reservation/internal/repository"
	"github.com/kafet/cafeteria-reservation/internal/service"
)

// AdminReservationHandler serves the serving-line roster: the full
// reservation list across all users, with search and pickup filtering,
// plus the pickup toggle the cafeteria staff taps when handing out a
// meal.
type AdminReservationHandler struct {
	Service      *service.ReservationService
	Reservations *repository.ReservationRepo
}

func NewAdminReservationHandler(svc *service.ReservationService, reservations *repository.ReservationRepo) *AdminReservationHandler {
	if svc == nil || reservations == nil {
		panic("nil dependency passed to NewAdminReservationHandler")
	}
	return &AdminReservationHandler{Service: svc, Reservations: reservations}
}

// Roster handles GET /v1/admin/reservations?search=&pickup=.  search
// matches user name, user email or menu item name case-insensitively;
// pickup is all (default), picked or not-picked.
func (h *AdminReservationHandler) Roster(c echo.Context) error {
	pickup := c.QueryParam("pickup")
	switch pickup {
	case "", repository.PickupFilterAll:
		pickup = repository.PickupFilterAll
	case repository.PickupFilterPicked, repository.PickupFilterNotPicked:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pickup filter, want all, picked or not-picked"})
	}

	items, err := h.Reservations.ListForAdmin(c.Request().Context(), c.QueryParam("search"), pickup)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// TogglePickup handles POST /v1/admin/reservations/:id/pickup.  It
// flips the picked-up flag of a confirmed reservation; cancelled
// reservations answer 409 because only a confirmed meal can be handed
// out (or handed back).
func (h *AdminReservationHandler) TogglePickup(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Service.TogglePickup(c.Request().Context(), id)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

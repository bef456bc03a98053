package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kafet/cafeteria-reservation/internal/repository"
	"github.com/kafet/cafeteria-reservation/internal/service"
)

// defaultPendingLimit caps the "meals to pick up" summary when the
// client does not ask for a specific limit.
const defaultPendingLimit = 5

// ReservationHandler implements the endpoints a student uses to manage
// their own meal reservations.  All writes go through the reservation
// service so the quota counter and the ledger stay consistent.
type ReservationHandler struct {
	Service      *service.ReservationService
	Reservations *repository.ReservationRepo
}

func NewReservationHandler(svc *service.ReservationService, reservations *repository.ReservationRepo) *ReservationHandler {
	if svc == nil || reservations == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Service: svc, Reservations: reservations}
}

// Reserve handles POST /v1/menu/:id/reserve.  Booking an item that is
// full answers 409; booking one already held answers 409 as well, so a
// double-submitted form cannot take two slots.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}

	item, err := h.Service.Reserve(c.Request().Context(), userID, itemID)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"menu_item": item})
}

// Cancel handles DELETE /v1/menu/:id/reserve.  Only a confirmed
// reservation can be cancelled; anything else answers 409.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}

	item, err := h.Service.Cancel(c.Request().Context(), userID, itemID)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"menu_item": item})
}

// Check handles GET /v1/menu/:id/reservation.  It reports whether the
// current user holds a confirmed reservation for the item, so the menu
// card can render its reserve/cancel button correctly.
func (h *ReservationHandler) Check(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid menu item id"})
	}

	active, err := h.Reservations.HasActive(c.Request().Context(), userID, itemID)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reserved": active})
}

// ListMine handles GET /v1/reservations: every confirmed reservation of
// the current user joined with its menu item, ordered by serving date.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListPending handles GET /v1/reservations/pending?limit=N: confirmed
// reservations not yet picked up, soonest serving date first.
func (h *ReservationHandler) ListPending(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	limit := defaultPendingLimit
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	items, err := h.Reservations.ListPendingByUser(c.Request().Context(), userID, limit)
	if err != nil {
		return writeRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kafet/cafeteria-reservation/internal/handler"
	"github.com/kafet/cafeteria-reservation/internal/middleware"
	"github.com/kafet/cafeteria-reservation/internal/model"
)

// RegisterUserRoutes registers the reservation endpoints available to
// every authenticated account (students and admins alike).
func RegisterUserRoutes(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin, model.RoleUser))

	g.POST("/menu/:id/reserve", r.Reserve)
	g.DELETE("/menu/:id/reserve", r.Cancel)
	g.GET("/menu/:id/reservation", r.Check)
	g.GET("/reservations", r.ListMine)
	g.GET("/reservations/pending", r.ListPending)
}

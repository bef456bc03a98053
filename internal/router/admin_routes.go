package router

import (
	"github.com/labstack/echo/v4"

	"github.com/kafet/cafeteria-reservation/internal/handler"
	"github.com/kafet/cafeteria-reservation/internal/middleware"
	"github.com/kafet/cafeteria-reservation/internal/model"
)

// RegisterAdminRoutes registers catalog management and the serving-line
// roster under /v1/admin, gated on the admin role.
func RegisterAdminRoutes(e *echo.Echo, m *handler.AdminMenuHandler, r *handler.AdminReservationHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.POST("/menu", m.Create)
	g.PATCH("/menu/:id", m.Update)
	g.DELETE("/menu/:id", m.Delete)
	g.POST("/menu/:id/image", m.UploadImage)

	g.GET("/reservations", r.Roster)
	g.POST("/reservations/:id/pickup", r.TogglePickup)
}

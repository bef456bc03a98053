package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/kafet/cafeteria-reservation/internal/handler"
	"github.com/kafet/cafeteria-reservation/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication:
// the health check and static serving of stored meal photos.
func RegisterRoutes(e *echo.Echo, imageDir string) {
	e.GET("/healthz", handler.Health)
	if imageDir != "" {
		e.Static("/images", imageDir)
	}
}

// RegisterAuth registers the authentication endpoints.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout accepts either a refresh token in the body or a bearer
	// token, so it stays outside the JWT middleware.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublicMenu registers the unauthenticated menu browse
// endpoints.  cache is the response-cache middleware; it fronts only
// these read-only routes.
func RegisterPublicMenu(e *echo.Echo, m *handler.MenuHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/menu")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("", m.List)
	g.GET("/:id", m.Get)
}

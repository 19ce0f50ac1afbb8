package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/iliyamo/restaurant-table-reservation/internal/handler"    // request handlers
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware" // JWT, role, rate limit and cache middleware
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance: the HTML landing page and a health
// check for load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and their
// middleware.  Unauthenticated operations (register, login, refresh,
// logout) live under /v1/auth; protected endpoints live under /v1
// behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the presented refresh token and returns a new pair.
	g.POST("/refresh", a.Refresh)
	// Logout takes a refresh token in the body, no JWT required.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("OWNER", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterCatalog registers the restaurant catalog.  Browsing is
// public so guests can check availability before registering; the
// read routes sit behind the Redis response cache and the rate
// limiter when those are enabled.  Creating a branch requires an
// authenticated OWNER.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, jwtSecret string, mw ...echo.MiddlewareFunc) {
	e.GET("/v1/restaurants", h.List, mw...)
	e.GET("/v1/restaurants/:id", h.Get, mw...)

	owner := e.Group("/v1")
	owner.Use(middleware.JWTAuth(jwtSecret))
	owner.Use(middleware.RequireRole("OWNER"))
	owner.POST("/restaurants", h.Create)
}

// RegisterBookings registers the booking lifecycle under /v1 for any
// authenticated user.  Cancellation is reachable both by booking ID
// and, for older clients, by restaurant ID.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("OWNER", "CUSTOMER"))

	g.POST("/bookings", h.Create)
	g.GET("/bookings", h.List)
	g.PATCH("/bookings/:id/time", h.ModifyTime)
	g.DELETE("/bookings/:id", h.Cancel)
	// Legacy route: cancels the caller's oldest active booking at the branch.
	g.DELETE("/restaurants/:id/booking", h.CancelByRestaurant)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Bilal-32/movie-api/internal/handler"
)

// RegisterUsers registers the /users endpoints. Registration is open; every
// other route runs auth first. Middleware is attached per route rather than
// through a Group so unmatched paths still reach the fallback route.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, auth echo.MiddlewareFunc) {
	e.POST("/users", h.Register)

	e.GET("/users", h.List, auth)
	e.GET("/users/:username", h.Get, auth)
	e.PUT("/users/:username", h.Update, auth)
	e.DELETE("/users/:username", h.Delete, auth)

	e.POST("/users/:username/movies/:movieId", h.AddFavorite, auth)
	e.DELETE("/users/:username/movies/:movieId", h.RemoveFavorite, auth)
}

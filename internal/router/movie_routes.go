package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Bilal-32/movie-api/internal/handler"
)

// RegisterMovies registers the read-only catalog endpoints. With
// publicList the full listing skips auth; lookups always require a token.
func RegisterMovies(e *echo.Echo, h *handler.MovieHandler, auth echo.MiddlewareFunc, publicList bool) {
	if publicList {
		e.GET("/movies", h.List)
	} else {
		e.GET("/movies", h.List, auth)
	}
	e.GET("/movies/:title", h.GetByTitle, auth)
	e.GET("/movies/genre/:name", h.GetGenre, auth)
	e.GET("/movies/director/:name", h.GetDirector, auth)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bilal-32/movie-api/internal/repository"
)

// MovieHandler serves the read-only catalog.
type MovieHandler struct {
	Movies MovieStore
}

// NewMovieHandler returns a MovieHandler reading from m.
func NewMovieHandler(m MovieStore) *MovieHandler { return &MovieHandler{Movies: m} }

// List returns the whole catalog.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := storeContext(c)
	defer cancel()

	movies, err := h.Movies.List(ctx)
	if err != nil {
		return storeError(c, "movies.list", err)
	}
	return c.JSON(http.StatusOK, movies)
}

// GetByTitle returns the movie titled :title, or null.
func (h *MovieHandler) GetByTitle(c echo.Context) error {
	ctx, cancel := storeContext(c)
	defer cancel()

	m, err := h.Movies.GetByTitle(ctx, c.Param("title"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return storeError(c, "movies.title", err)
	}
	return c.JSON(http.StatusOK, m)
}

// GetGenre returns the genre named :name.
func (h *MovieHandler) GetGenre(c echo.Context) error {
	name := c.Param("name")

	ctx, cancel := storeContext(c)
	defer cancel()

	g, err := h.Movies.GetGenre(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.String(http.StatusBadRequest, name+" was not found")
		}
		return storeError(c, "movies.genre", err)
	}
	return c.JSON(http.StatusOK, g)
}

// GetDirector returns the director named :name.
func (h *MovieHandler) GetDirector(c echo.Context) error {
	name := c.Param("name")

	ctx, cancel := storeContext(c)
	defer cancel()

	d, err := h.Movies.GetDirector(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.String(http.StatusBadRequest, name+" was not found")
		}
		return storeError(c, "movies.director", err)
	}
	return c.JSON(http.StatusOK, d)
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/storetest"
)

func catalog() *storetest.Movies {
	return &storetest.Movies{Items: []model.Movie{
		{
			Title:    "Inception",
			Genre:    model.Genre{Name: "Science Fiction", Description: "Imagined science."},
			Director: model.Director{Name: "Christopher Nolan", Bio: "Filmmaker.", Birth: "1970"},
			Featured: true,
		},
		{
			Title:    "Heat",
			Genre:    model.Genre{Name: "Crime", Description: "Crime films."},
			Director: model.Director{Name: "Michael Mann", Bio: "Filmmaker.", Birth: "1943"},
		},
	}}
}

func newMovieServer(m *storetest.Movies) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	h := NewMovieHandler(m)
	e.GET("/movies", h.List)
	e.GET("/movies/:title", h.GetByTitle)
	e.GET("/movies/genre/:name", h.GetGenre)
	e.GET("/movies/director/:name", h.GetDirector)
	return e
}

func TestMovies_List(t *testing.T) {
	rec := do(newMovieServer(catalog()), http.MethodGet, "/movies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var movies []model.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
	require.Len(t, movies, 2)
	assert.Equal(t, "Inception", movies[0].Title)
}

func TestMovies_GetByTitle(t *testing.T) {
	e := newMovieServer(catalog())

	rec := do(e, http.MethodGet, "/movies/Heat", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m model.Movie
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.Equal(t, "Michael Mann", m.Director.Name)

	rec = do(e, http.MethodGet, "/movies/Unknown", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "null", rec.Body.String())
}

func TestMovies_GenreAndDirector(t *testing.T) {
	e := newMovieServer(catalog())

	rec := do(e, http.MethodGet, "/movies/genre/Crime", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Crime","description":"Crime films."}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/movies/director/Christopher%20Nolan", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Christopher Nolan","bio":"Filmmaker.","birth":"1970"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/movies/genre/Western", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Western was not found", rec.Body.String())

	rec = do(e, http.MethodGet, "/movies/director/Nobody", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Nobody was not found", rec.Body.String())
}

func TestMovies_StoreFailure(t *testing.T) {
	m := catalog()
	m.Err = errors.New("cursor killed")
	rec := do(newMovieServer(m), http.MethodGet, "/movies", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error: cursor killed", rec.Body.String())
}

package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bilal-32/movie-api/internal/logging"
)

// ErrorHandler is the last stage of every request. Framework errors keep
// their status; anything else, including recovered panics, becomes a
// generic 500.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Internal != nil {
			logging.Ctx(c.Request().Context()).Debug().Err(he.Internal).Int("status", he.Code).Msg("http error")
		}
		msg := he.Message
		if _, ok := msg.(string); !ok {
			msg = http.StatusText(he.Code)
		}
		writeError(c, he.Code, echo.Map{"message": msg})
		return
	}

	logging.Ctx(c.Request().Context()).Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("unhandled error")
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(http.StatusInternalServerError)
		return
	}
	_ = c.String(http.StatusInternalServerError, "Something broke! Sorry...")
}

// writeError answers with body, or with no body for HEAD requests.
func writeError(c echo.Context, code int, body echo.Map) {
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, body)
}

package router // package router defines how HTTP routes are registered for the API

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Bilal-32/movie-api/internal/config"
	"github.com/Bilal-32/movie-api/internal/handler"
	"github.com/Bilal-32/movie-api/internal/logging"
	"github.com/Bilal-32/movie-api/internal/middleware"
)

// accessLogFormat is the Apache combined log format plus latency.
const accessLogFormat = `${remote_ip} - - [${time_custom}] "${method} ${uri} ${protocol}" ${status} ${bytes_out} "${referer}" "${user_agent}" ${latency_human}` + "\n"

// Setup applies the cross-cutting middleware every request goes through and
// installs the fallback error handler. accessLog receives one line per
// request.
func Setup(e *echo.Echo, cfg config.Config, accessLog io.Writer) {
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: logging.GenerateRequestID,
		RequestIDHandler: func(c echo.Context, id string) {
			c.SetRequest(c.Request().WithContext(logging.ContextWithRequestID(c.Request().Context(), id)))
		},
	}))
	e.Use(echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format:           accessLogFormat,
		CustomTimeFormat: "02/Jan/2006:15:04:05 -0700",
		Output:           accessLog,
	}))
	e.Use(middleware.Metrics())
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logging.Ctx(c.Request().Context()).Error().Err(err).Bytes("stack", stack).Msg("panic recovered")
			return err
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	e.Use(echomw.StaticWithConfig(echomw.StaticConfig{Root: cfg.StaticDir}))
}

// RegisterRoutes registers the unauthenticated site routes: welcome,
// documentation, health check and metrics.
func RegisterRoutes(e *echo.Echo, s *handler.SiteHandler) {
	e.GET("/", s.Welcome)
	e.GET("/documentation", s.Documentation)
	e.GET("/healthz", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth registers login (open) and logout (protected).
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	e.POST("/login", a.Login)
	e.POST("/logout", a.Logout, auth)
}

// fallbackMethods are answered 404 on unmatched paths. Without them the
// GET catch-all turns every other method into a 405.
var fallbackMethods = []string{
	http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
}

// RegisterFallback must be called last: it answers every GET no other route
// matched, and 404 for other methods.
func RegisterFallback(e *echo.Echo, s *handler.SiteHandler) {
	e.GET("/*", s.UnknownPath)
	e.Match(fallbackMethods, "/*", func(echo.Context) error { return echo.ErrNotFound })
}

package handler

import (
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"
)

// SiteHandler serves the unauthenticated pages around the API.
type SiteHandler struct {
	StaticDir string
}

// NewSiteHandler serves pages from staticDir.
func NewSiteHandler(staticDir string) *SiteHandler { return &SiteHandler{StaticDir: staticDir} }

// Welcome answers GET /.
func (h *SiteHandler) Welcome(c echo.Context) error {
	return c.String(http.StatusOK, "Welcome to my movie API!")
}

// Documentation serves the static documentation page.
func (h *SiteHandler) Documentation(c echo.Context) error {
	return c.File(filepath.Join(h.StaticDir, "documentation.html"))
}

// Health is a liveness probe for load balancers.
func (h *SiteHandler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// UnknownPath answers any unmatched GET. The status stays 200 for clients
// that relied on the original behaviour.
func (h *SiteHandler) UnknownPath(c echo.Context) error {
	return c.String(http.StatusOK, "I don't know that path!")
}

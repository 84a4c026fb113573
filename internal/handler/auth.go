package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Bilal-32/movie-api/internal/config"
	"github.com/Bilal-32/movie-api/internal/logging"
	"github.com/Bilal-32/movie-api/internal/middleware"
	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/repository"
	"github.com/Bilal-32/movie-api/internal/utils"
)

// AuthHandler bundles dependencies for login and logout.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenRevoker // nil disables logout
}

// NewAuthHandler returns an AuthHandler. A nil t makes logout answer 503.
func NewAuthHandler(cfg config.Config, u UserStore, t TokenRevoker) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username" form:"username" query:"username"`
	Password string `json:"password" form:"password" query:"password"`
}

type loginResp struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// badLogin never says which of username or password was wrong.
var badLogin = echo.Map{"message": "Incorrect username or password.", "user": false}

// Login: verify credentials and issue a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, badLogin)
	}
	// POST does not bind query parameters; accept them as a fallback.
	if req.Username == "" {
		req.Username = c.QueryParam("username")
	}
	if req.Password == "" {
		req.Password = c.QueryParam("password")
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, badLogin)
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.BurnPasswordCheck(req.Password)
			return c.JSON(http.StatusBadRequest, badLogin)
		}
		return storeError(c, "login.lookup", err)
	}
	// same response as an unknown user
	if !utils.VerifyPassword(u.Password, req.Password) {
		return c.JSON(http.StatusBadRequest, badLogin)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.Username, h.Cfg.TokenTTL)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("issue token failed")
		return c.String(http.StatusInternalServerError, "Error: "+err.Error())
	}
	return c.JSON(http.StatusOK, loginResp{User: u, Token: access.Token})
}

// Logout: revoke the bearer token presented with this request (protected).
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized"})
	}
	if h.Tokens == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": repository.ErrRevocationUnavailable.Error()})
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	if err := h.Tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		if errors.Is(err, repository.ErrRevocationUnavailable) {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": err.Error()})
		}
		return storeError(c, "logout.revoke", err)
	}
	return c.NoContent(http.StatusNoContent)
}

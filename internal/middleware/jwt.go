package middleware // middleware provides shared request processing for handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Bilal-32/movie-api/internal/logging"
	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/repository"
	"github.com/Bilal-32/movie-api/internal/utils"
)

// UserLookup resolves a token's username against the credential store.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// unauthorized is the only body a rejected request ever sees, whatever the
// reason: missing header, bad signature, expiry, revocation or unknown user.
var unauthorized = echo.Map{"message": "Unauthorized"}

// JWTAuth returns an Echo middleware that validates a Bearer token, resolves
// its username to a stored user and attaches both to the request. revoked
// may be nil when no denylist is configured.
func JWTAuth(secret string, users UserLookup, revoked RevocationChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, unauthorized)
			}

			claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
			if err != nil {
				logging.Ctx(c.Request().Context()).Debug().Err(err).Msg("bearer token rejected")
				return c.JSON(http.StatusUnauthorized, unauthorized)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(ctx, claims.ID)
				if err != nil {
					logging.Ctx(ctx).Error().Err(err).Msg("revocation check failed")
					return c.String(http.StatusInternalServerError, "Error: "+err.Error())
				}
				if isRevoked {
					return c.JSON(http.StatusUnauthorized, unauthorized)
				}
			}

			user, err := users.GetByUsername(ctx, claims.Username)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return c.JSON(http.StatusUnauthorized, unauthorized)
				}
				logging.Ctx(ctx).Error().Err(err).Msg("resolve token user failed")
				return c.String(http.StatusInternalServerError, "Error: "+err.Error())
			}

			setIdentity(c, Identity{User: user, Claims: claims})
			return next(c)
		}
	}
}

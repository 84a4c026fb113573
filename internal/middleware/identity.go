package middleware

// identity.go holds the typed accessors for the identity JWTAuth attaches
// to the request. Handlers never read the raw context keys.

import (
	"github.com/labstack/echo/v4"

	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/utils"
)

const (
	userKey   = "auth.user"
	claimsKey = "auth.claims"
)

// Identity is what a successful authentication resolves to.
type Identity struct {
	User   *model.User
	Claims *utils.Claims
}

// setIdentity stores id on the request context.
func setIdentity(c echo.Context, id Identity) {
	c.Set(userKey, id.User)
	c.Set(claimsKey, id.Claims)
}

// CurrentUser returns the user resolved by JWTAuth.
func CurrentUser(c echo.Context) (*model.User, bool) {
	u, ok := c.Get(userKey).(*model.User)
	return u, ok && u != nil
}

// CurrentClaims returns the verified token claims of the request.
func CurrentClaims(c echo.Context) (*utils.Claims, bool) {
	cl, ok := c.Get(claimsKey).(*utils.Claims)
	return cl, ok && cl != nil
}

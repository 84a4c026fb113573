package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Bilal-32/movie-api/internal/logging"
	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/queue"
)

// UserStore is the credential store as seen by handlers.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, in model.UserInput, cost int) (*model.User, error)
	Update(ctx context.Context, username string, in model.UserInput, cost int) (*model.User, error)
	AddFavorite(ctx context.Context, username, movieID string) (*model.User, error)
	RemoveFavorite(ctx context.Context, username, movieID string) (*model.User, error)
	Delete(ctx context.Context, username string) error
}

// MovieStore is the catalog store as seen by handlers.
type MovieStore interface {
	List(ctx context.Context) ([]model.Movie, error)
	GetByTitle(ctx context.Context, title string) (*model.Movie, error)
	GetGenre(ctx context.Context, name string) (*model.Genre, error)
	GetDirector(ctx context.Context, name string) (*model.Director, error)
}

// TokenRevoker adds a token id to the logout denylist.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, exp time.Time) error
}

// EventPublisher receives user lifecycle events. Failures never fail the
// request that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.UserEvent) error
}

const storeTimeout = 5 * time.Second

// storeContext bounds a store call by storeTimeout and the request context.
func storeContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), storeTimeout)
}

// storeError logs a failed store call and answers 500 with the error text.
func storeError(c echo.Context, op string, err error) error {
	logging.Ctx(c.Request().Context()).Error().Err(err).Str("op", op).Msg("store call failed")
	return c.String(http.StatusInternalServerError, "Error: "+err.Error())
}

// publishTimeout bounds how long a mutation waits on the broker.
const publishTimeout = 500 * time.Millisecond

// publish sends ev without failing the request. A slow or down broker costs
// the request at most publishTimeout.
func publish(c echo.Context, events EventPublisher, ev queue.UserEvent) {
	if events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), publishTimeout)
	defer cancel()
	if err := events.Publish(ctx, ev); err != nil {
		logging.Ctx(c.Request().Context()).Warn().Err(err).Str("event", ev.Type).Msg("publish user event failed")
	}
}

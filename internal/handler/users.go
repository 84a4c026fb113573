package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Bilal-32/movie-api/internal/config"
	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/queue"
	"github.com/Bilal-32/movie-api/internal/repository"
	"github.com/Bilal-32/movie-api/internal/validation"
)

// UserHandler bundles dependencies for the /users endpoints.
type UserHandler struct {
	Cfg    config.Config
	Users  UserStore
	Events EventPublisher
}

// NewUserHandler returns a UserHandler. ev may be nil to disable events.
func NewUserHandler(cfg config.Config, u UserStore, ev EventPublisher) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Events: ev}
}

// profileFields lists the body fields of registration and profile update.
var profileFields = []string{"username", "password", "email", "birthday"}

type userForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Email    string `form:"email"`
	Birthday string `form:"birthday"`
}

// readProfile returns the profile fields of the body as strings. JSON values
// of any scalar type are accepted and stringified so that validation, not
// decoding, reports them; only unparseable JSON is an error.
func readProfile(c echo.Context) (map[string]string, error) {
	req := c.Request()
	if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var f userForm
		if err := c.Bind(&f); err != nil {
			return nil, err
		}
		return map[string]string{
			"username": f.Username,
			"password": f.Password,
			"email":    f.Email,
			"birthday": f.Birthday,
		}, nil
	}

	// numbers keep their literal text instead of becoming float64
	var raw map[string]any
	dec := json.NewDecoder(req.Body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	out := make(map[string]string, len(profileFields))
	for _, k := range profileFields {
		out[k] = stringify(raw[k])
	}
	return out, nil
}

// stringify renders a decoded JSON value as the string validation sees.
// null becomes the empty string.
func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// bindUser binds and validates a profile body. A non-nil response error
// means the response has already been written.
func bindUser(c echo.Context) (model.UserInput, bool, error) {
	fields, err := readProfile(c)
	if err != nil {
		return model.UserInput{}, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if verr := validation.ValidateFields(fields, validation.UserRules); verr != nil {
		return model.UserInput{}, false, c.JSON(http.StatusUnprocessableEntity, echo.Map{"errors": verr.Errors()})
	}
	birthday, _ := validation.ParseDate(fields["birthday"]) // already validated
	return model.UserInput{
		Username: fields["username"],
		Password: fields["password"],
		Email:    fields["email"],
		Birthday: birthday,
	}, true, nil
}

// Register: create a user unless the username is taken.
func (h *UserHandler) Register(c echo.Context) error {
	in, ok, err := bindUser(c)
	if !ok {
		return err
	}

	ctx, cancel := storeContext(c)
	defer cancel()

	// existence check first; the unique index still guards concurrent registrations
	if _, err := h.Users.GetByUsername(ctx, in.Username); err == nil {
		return c.String(http.StatusBadRequest, in.Username+" already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return storeError(c, "users.lookup", err)
	}

	u, err := h.Users.Create(ctx, in, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) { // lost a race with a concurrent registration
			return c.String(http.StatusBadRequest, in.Username+" already exists")
		}
		return storeError(c, "users.create", err)
	}
	publish(c, h.Events, queue.NewUserEvent(queue.EventUserRegistered, u.Username))
	return c.JSON(http.StatusCreated, u)
}

// List returns every user.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := storeContext(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return storeError(c, "users.list", err)
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one user, or null when the username is unknown.
func (h *UserHandler) Get(c echo.Context) error {
	ctx, cancel := storeContext(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return storeError(c, "users.get", err)
	}
	return c.JSON(http.StatusOK, u)
}

// Update replaces the profile of :username. An unknown username yields null.
func (h *UserHandler) Update(c echo.Context) error {
	in, ok, err := bindUser(c)
	if !ok {
		return err
	}
	current := c.Param("username")

	ctx, cancel := storeContext(c)
	defer cancel()

	u, err := h.Users.Update(ctx, current, in, h.Cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusOK, nil)
	case errors.Is(err, repository.ErrUserExists):
		return c.String(http.StatusBadRequest, in.Username+" already exists")
	case err != nil:
		return storeError(c, "users.update", err)
	}

	// a rename is reported with the old name so consumers can follow it
	ev := queue.NewUserEvent(queue.EventUserUpdated, u.Username)
	if current != u.Username {
		ev.PreviousUsername = current
	}
	publish(c, h.Events, ev)
	return c.JSON(http.StatusOK, u)
}

// Delete removes :username; a missing user is a client error.
func (h *UserHandler) Delete(c echo.Context) error {
	name := c.Param("username")

	ctx, cancel := storeContext(c)
	defer cancel()

	if err := h.Users.Delete(ctx, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.String(http.StatusBadRequest, name+" was not found")
		}
		return storeError(c, "users.delete", err)
	}
	publish(c, h.Events, queue.NewUserEvent(queue.EventUserDeleted, name))
	return c.String(http.StatusOK, name+" was deleted.")
}

// AddFavorite appends :movieId to the favorites of :username.
func (h *UserHandler) AddFavorite(c echo.Context) error {
	return h.mutateFavorites(c, queue.EventFavoriteAdded, h.Users.AddFavorite)
}

// RemoveFavorite removes every :movieId from the favorites of :username.
func (h *UserHandler) RemoveFavorite(c echo.Context) error {
	return h.mutateFavorites(c, queue.EventFavoriteRemoved, h.Users.RemoveFavorite)
}

func (h *UserHandler) mutateFavorites(c echo.Context, kind string,
	op func(ctx context.Context, username, movieID string) (*model.User, error)) error {
	name, movieID := c.Param("username"), c.Param("movieId")

	ctx, cancel := storeContext(c)
	defer cancel()

	u, err := op(ctx, name, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusOK, nil)
		}
		return storeError(c, "users.favorites", err)
	}
	ev := queue.NewUserEvent(kind, name)
	ev.MovieID = movieID
	publish(c, h.Events, ev)
	return c.JSON(http.StatusOK, u)
}

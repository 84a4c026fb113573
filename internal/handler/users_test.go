package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bilal-32/movie-api/internal/config"
	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/queue"
	"github.com/Bilal-32/movie-api/internal/storetest"
	"github.com/Bilal-32/movie-api/internal/utils"
	"github.com/Bilal-32/movie-api/internal/validation"
)

var testCfg = config.Config{BcryptCost: 4, JWTSecret: "handler_test_secret_value_32chars", TokenTTL: time.Hour}

func newUserServer(users *storetest.Users, events *storetest.Events) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	h := NewUserHandler(testCfg, users, nil)
	if events != nil {
		h.Events = events
	}
	e.POST("/users", h.Register)
	e.GET("/users", h.List)
	e.GET("/users/:username", h.Get)
	e.PUT("/users/:username", h.Update)
	e.DELETE("/users/:username", h.Delete)
	e.POST("/users/:username/movies/:movieId", h.AddFavorite)
	e.DELETE("/users/:username/movies/:movieId", h.RemoveFavorite)
	return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const aliceBody = `{"username":"alice01","password":"s3cret","email":"alice@example.com","birthday":"1990-04-12"}`

func TestRegister_CreatesUser(t *testing.T) {
	users := storetest.NewUsers()
	events := &storetest.Events{}
	rec := do(newUserServer(users, events), http.MethodPost, "/users", aliceBody)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeUser(t, rec)
	assert.Equal(t, "alice01", body["username"])
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "1990-04-12T00:00:00Z", body["birthday"])
	assert.Equal(t, []any{}, body["favoriteMovies"])
	assert.NotContains(t, body, "password")

	stored, err := users.GetByUsername(t.Context(), "alice01")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.Password)
	assert.True(t, utils.VerifyPassword(stored.Password, "s3cret"))
	assert.Equal(t, []string{queue.EventUserRegistered}, events.Types())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	users := storetest.NewUsers(model.User{Username: "alice01"})
	events := &storetest.Events{}
	rec := do(newUserServer(users, events), http.MethodPost, "/users", aliceBody)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "alice01 already exists", rec.Body.String())
	assert.Equal(t, 1, users.Count())
	assert.Empty(t, events.Types())
}

func TestRegister_ReportsEveryViolation(t *testing.T) {
	users := storetest.NewUsers()
	rec := do(newUserServer(users, nil), http.MethodPost, "/users",
		`{"username":"ab!","password":"","email":"not-an-email","birthday":"yesterday"}`)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Errors []validation.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	var params []string
	for _, fe := range body.Errors {
		params = append(params, fe.Param)
		assert.NotEmpty(t, fe.Msg)
	}
	assert.Equal(t, []string{"username", "username", "password", "email", "birthday"}, params)
	assert.Zero(t, users.Count())
}

func TestRegister_MistypedFieldsAreValidated(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		params []string
	}{
		{
			name:   "boolean birthday",
			body:   `{"username":"ab","password":"s3cret","email":"x","birthday":true}`,
			params: []string{"username", "username", "email", "birthday"},
		},
		{
			name:   "numeric birthday",
			body:   `{"username":"alice01","password":"s3cret","email":"alice@example.com","birthday":19900412}`,
			params: []string{"birthday"},
		},
		{
			name:   "null password and object email",
			body:   `{"username":"alice01","password":null,"email":{"a":1},"birthday":"1990-04-12"}`,
			params: []string{"password", "email"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := storetest.NewUsers()
			rec := do(newUserServer(users, nil), http.MethodPost, "/users", tt.body)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			var body struct {
				Errors []validation.FieldError `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			var params []string
			for _, fe := range body.Errors {
				params = append(params, fe.Param)
			}
			assert.Equal(t, tt.params, params)
			assert.Zero(t, users.Count())
		})
	}
}

func TestRegister_NumericUsernameIsStringified(t *testing.T) {
	users := storetest.NewUsers()
	rec := do(newUserServer(users, nil), http.MethodPost, "/users",
		`{"username":12345,"password":"s3cret","email":"n@example.com","birthday":"1990-04-12"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "12345", decodeUser(t, rec)["username"])
}

func TestRegister_FormBody(t *testing.T) {
	users := storetest.NewUsers()
	form := "username=carol01&password=s3cret&email=carol%40example.com&birthday=1985-07-01"
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	newUserServer(users, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, users.Count())
}

func TestRegister_MalformedBody(t *testing.T) {
	users := storetest.NewUsers()
	rec := do(newUserServer(users, nil), http.MethodPost, "/users", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(newUserServer(users, nil), http.MethodPost, "/users", `["alice01"]`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, users.Count())
}

func TestRegister_StoreFailure(t *testing.T) {
	users := storetest.NewUsers()
	users.Err = errors.New("server selection timeout")
	rec := do(newUserServer(users, nil), http.MethodPost, "/users", aliceBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error: server selection timeout", rec.Body.String())
}

func TestListAndGet(t *testing.T) {
	users := storetest.NewUsers(model.User{Username: "alice01"}, model.User{Username: "bobby02"})
	e := newUserServer(users, nil)

	rec := do(e, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)

	rec = do(e, http.MethodGet, "/users/bobby02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bobby02", decodeUser(t, rec)["username"])

	rec = do(e, http.MethodGet, "/users/nobody99", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "null", rec.Body.String())
}

func TestUpdate(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		users := storetest.NewUsers(model.User{Username: "alice01"})
		events := &storetest.Events{}
		rec := do(newUserServer(users, events), http.MethodPut, "/users/alice01",
			`{"username":"alice02","password":"newpass","email":"a2@example.com","birthday":"1991/01/31"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeUser(t, rec)
		assert.Equal(t, "alice02", body["username"])
		assert.Equal(t, "1991-01-31T00:00:00Z", body["birthday"])

		stored, err := users.GetByUsername(t.Context(), "alice02")
		require.NoError(t, err)
		assert.True(t, utils.VerifyPassword(stored.Password, "newpass"))

		ev := events.Last()
		assert.Equal(t, queue.EventUserUpdated, ev.Type)
		assert.Equal(t, "alice01", ev.PreviousUsername)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := storetest.NewUsers()
		rec := do(newUserServer(users, nil), http.MethodPut, "/users/ghost01", aliceBody)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "null", rec.Body.String())
	})

	t.Run("taken username", func(t *testing.T) {
		users := storetest.NewUsers(model.User{Username: "alice01"}, model.User{Username: "bobby02"})
		rec := do(newUserServer(users, nil), http.MethodPut, "/users/bobby02", aliceBody)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "alice01 already exists", rec.Body.String())
	})

	t.Run("invalid body", func(t *testing.T) {
		users := storetest.NewUsers(model.User{Username: "alice01", Email: "old@example.com"})
		rec := do(newUserServer(users, nil), http.MethodPut, "/users/alice01",
			`{"username":"alice01","password":"x","email":"bad","birthday":"1990-04-12"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		stored, err := users.GetByUsername(t.Context(), "alice01")
		require.NoError(t, err)
		assert.Equal(t, "old@example.com", stored.Email)
	})
}

func TestFavorites_ListSemantics(t *testing.T) {
	users := storetest.NewUsers(model.User{Username: "alice01"})
	events := &storetest.Events{}
	e := newUserServer(users, events)

	for range 2 {
		rec := do(e, http.MethodPost, "/users/alice01/movies/m1", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(e, http.MethodPost, "/users/alice01/movies/m2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"m1", "m1", "m2"}, decodeUser(t, rec)["favoriteMovies"])

	rec = do(e, http.MethodDelete, "/users/alice01/movies/m1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"m2"}, decodeUser(t, rec)["favoriteMovies"])

	ev := events.Last()
	assert.Equal(t, queue.EventFavoriteRemoved, ev.Type)
	assert.Equal(t, "m1", ev.MovieID)

	rec = do(e, http.MethodPost, "/users/ghost01/movies/m1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "null", rec.Body.String())
}

func TestDelete(t *testing.T) {
	users := storetest.NewUsers(model.User{Username: "bobby02"})
	events := &storetest.Events{}
	e := newUserServer(users, events)

	rec := do(e, http.MethodDelete, "/users/bobby02", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bobby02 was deleted.", rec.Body.String())
	assert.Zero(t, users.Count())

	rec = do(e, http.MethodDelete, "/users/bobby02", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bobby02 was not found", rec.Body.String())
	assert.Equal(t, []string{queue.EventUserDeleted}, events.Types())
}

// stalledBroker blocks every publish until its context ends.
type stalledBroker struct{ deadline time.Duration }

func (b *stalledBroker) Publish(ctx context.Context, _ queue.UserEvent) error {
	if d, ok := ctx.Deadline(); ok {
		b.deadline = time.Until(d)
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRegister_SlowBrokerDoesNotStallRequest(t *testing.T) {
	users := storetest.NewUsers()
	broker := &stalledBroker{}
	e := echo.New()
	h := NewUserHandler(testCfg, users, broker)
	e.POST("/users", h.Register)

	start := time.Now()
	rec := do(e, http.MethodPost, "/users", aliceBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Positive(t, broker.deadline)
	assert.LessOrEqual(t, broker.deadline, publishTimeout)
}

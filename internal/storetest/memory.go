// Package storetest provides in-memory stores with the same semantics as the
// MongoDB repositories, for handler, middleware and router tests.
package storetest

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Bilal-32/movie-api/internal/model"
	"github.com/Bilal-32/movie-api/internal/queue"
	"github.com/Bilal-32/movie-api/internal/repository"
	"github.com/Bilal-32/movie-api/internal/utils"
)

// Users is an in-memory credential store. Set Err to make every call fail.
type Users struct {
	mu    sync.Mutex
	users []model.User
	Err   error
}

// NewUsers returns a store pre-populated with users.
func NewUsers(users ...model.User) *Users {
	s := &Users{}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = bson.NewObjectID()
		}
		if u.FavoriteMovies == nil {
			u.FavoriteMovies = []string{}
		}
		s.users = append(s.users, u)
	}
	return s
}

// Count returns the number of stored users.
func (s *Users) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// index returns the position of username, or -1.
func (s *Users) index(username string) int {
	return slices.IndexFunc(s.users, func(u model.User) bool { return u.Username == username })
}

// GetByUsername returns a copy of the stored user.
func (s *Users) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	i := s.index(username)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	u := clone(s.users[i])
	return &u, nil
}

// List returns copies of every stored user.
func (s *Users) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, clone(u))
	}
	return out, nil
}

// Create hashes the password and appends the user; duplicates fail with ErrUserExists.
func (s *Users) Create(_ context.Context, in model.UserInput, cost int) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.index(in.Username) >= 0 {
		return nil, repository.ErrUserExists
	}
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	u := model.User{
		ID:             bson.NewObjectID(),
		Username:       in.Username,
		Password:       hash,
		Email:          in.Email,
		Birthday:       in.Birthday,
		FavoriteMovies: []string{},
	}
	s.users = append(s.users, u)
	out := clone(u)
	return &out, nil
}

// Update replaces the profile, rejecting a rename onto a taken username.
func (s *Users) Update(_ context.Context, username string, in model.UserInput, cost int) (*model.User, error) {
	hash, err := utils.HashPassword(in.Password, cost)
	if err != nil {
		return nil, err
	}
	return s.mutate(username, func(u *model.User) error {
		if in.Username != username && s.index(in.Username) >= 0 {
			return repository.ErrUserExists
		}
		u.Username = in.Username
		u.Password = hash
		u.Email = in.Email
		u.Birthday = in.Birthday
		return nil
	})
}

// AddFavorite appends movieID, keeping duplicates.
func (s *Users) AddFavorite(_ context.Context, username, movieID string) (*model.User, error) {
	return s.mutate(username, func(u *model.User) error {
		u.FavoriteMovies = append(u.FavoriteMovies, movieID)
		return nil
	})
}

// RemoveFavorite drops every occurrence of movieID.
func (s *Users) RemoveFavorite(_ context.Context, username, movieID string) (*model.User, error) {
	return s.mutate(username, func(u *model.User) error {
		u.FavoriteMovies = slices.DeleteFunc(u.FavoriteMovies, func(id string) bool { return id == movieID })
		return nil
	})
}

// Delete removes the user or returns ErrNotFound.
func (s *Users) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	i := s.index(username)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.users = slices.Delete(s.users, i, i+1)
	return nil
}

// mutate applies fn to a copy of the user and stores it only if fn succeeds.
func (s *Users) mutate(username string, fn func(*model.User) error) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	i := s.index(username)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	u := clone(s.users[i])
	if err := fn(&u); err != nil {
		return nil, err
	}
	s.users[i] = u
	out := clone(u)
	return &out, nil
}

// clone copies u so callers never alias the stored favorites slice.
func clone(u model.User) model.User {
	u.FavoriteMovies = slices.Clone(u.FavoriteMovies)
	if u.FavoriteMovies == nil {
		u.FavoriteMovies = []string{}
	}
	return u
}

// Movies is an in-memory catalog store.
type Movies struct {
	Items []model.Movie
	Err   error
}

// List returns the catalog.
func (s *Movies) List(_ context.Context) ([]model.Movie, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return slices.Clone(s.Items), nil
}

// GetByTitle returns the first movie with the exact title.
func (s *Movies) GetByTitle(_ context.Context, title string) (*model.Movie, error) {
	return s.find(func(m model.Movie) bool { return m.Title == title })
}

// GetGenre returns the genre of the first matching movie.
func (s *Movies) GetGenre(_ context.Context, name string) (*model.Genre, error) {
	m, err := s.find(func(m model.Movie) bool { return m.Genre.Name == name })
	if err != nil {
		return nil, err
	}
	return &m.Genre, nil
}

// GetDirector returns the director of the first matching movie.
func (s *Movies) GetDirector(_ context.Context, name string) (*model.Director, error) {
	m, err := s.find(func(m model.Movie) bool { return m.Director.Name == name })
	if err != nil {
		return nil, err
	}
	return &m.Director, nil
}

func (s *Movies) find(match func(model.Movie) bool) (*model.Movie, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	i := slices.IndexFunc(s.Items, match)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	m := s.Items[i]
	return &m, nil
}

// Revocations is an in-memory token denylist.
type Revocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// Revoke denylists jti until exp.
func (r *Revocations) Revoke(_ context.Context, jti string, exp time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = map[string]time.Time{}
	}
	r.revoked[jti] = exp
	return nil
}

// IsRevoked reports an unexpired revocation of jti.
func (r *Revocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exp, ok := r.revoked[jti]
	return ok && time.Now().Before(exp), nil
}

// Events records published user events.
type Events struct {
	mu     sync.Mutex
	events []queue.UserEvent
}

// Publish records ev.
func (e *Events) Publish(_ context.Context, ev queue.UserEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
	return nil
}

// Types returns the recorded event types in publish order.
func (e *Events) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

// Last returns the most recent event, or the zero value.
func (e *Events) Last() queue.UserEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.events) == 0 {
		return queue.UserEvent{}
	}
	return e.events[len(e.events)-1]
}

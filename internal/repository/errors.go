// Package repository holds the MongoDB and Redis backed stores. The sentinel
// errors below let handlers tell a missing document or a username collision
// apart from a store failure.
package repository

import "errors"

// ErrNotFound is returned when no document matches the lookup. Handlers
// translate it per route: null body, 400, or 401 in the auth middleware.
var ErrNotFound = errors.New("not found")

// ErrUserExists is returned when a username is already taken.
var ErrUserExists = errors.New("username already exists")

// ErrRevocationUnavailable is returned by a TokenRepo without a Redis client.
var ErrRevocationUnavailable = errors.New("token revocation unavailable")

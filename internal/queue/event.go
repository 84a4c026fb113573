// Package queue defines the user lifecycle events exchanged over RabbitMQ,
// the publisher used by the HTTP handlers, and the consumer that appends
// received events to a log file.
package queue

import "time"

// UserEventsQueue is the durable queue all user events are routed to.
const UserEventsQueue = "user.events"

// Event types.
const (
	EventUserRegistered  = "user.registered"
	EventUserUpdated     = "user.updated"
	EventUserDeleted     = "user.deleted"
	EventFavoriteAdded   = "user.favorite_added"
	EventFavoriteRemoved = "user.favorite_removed"
)

// UserEvent is published after a successful user mutation. It carries no
// credentials.
type UserEvent struct {
	Type             string `json:"type"`
	Username         string `json:"username"`
	PreviousUsername string `json:"previous_username,omitempty"`
	MovieID          string `json:"movie_id,omitempty"`
	OccurredAt       string `json:"occurred_at"`
}

// NewUserEvent stamps an event with the current UTC time.
func NewUserEvent(kind, username string) UserEvent {
	return UserEvent{
		Type:       kind,
		Username:   username,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}

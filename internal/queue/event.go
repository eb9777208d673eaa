// Package queue defines message payloads exchanged over the message broker
// plus the publisher and background consumer for them.
package queue

// UserRegisteredEvent is published after a successful registration. It
// contains enough information for downstream consumers (welcome mail,
// analytics) without querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	RegisteredAt string `json:"registered_at"`
}

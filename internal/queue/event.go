// Package queue defines message payloads exchanged over the message broker.
package queue

// WatchProgressEvent is published whenever a user records watch progress.
// It carries enough information for downstream consumers to log or feed
// analytics without querying the primary database.
type WatchProgressEvent struct {
	UserID     string  `json:"user_id"`
	MovieID    string  `json:"movie_id"`
	MovieTitle string  `json:"movie_title,omitempty"`
	Progress   float64 `json:"progress"`
	WatchedAt  string  `json:"watched_at"`
}

package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.  Catalog mutations are gated on RoleAdmin; registration
// always produces RoleUser.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// WatchHistoryEntry is one progress record inside User.WatchHistory.  The
// history holds at most one entry per movie id; recording progress for a
// movie that already has an entry updates it in place.
type WatchHistoryEntry struct {
	MovieID   primitive.ObjectID `bson:"movie_id" json:"movieId"`
	WatchedAt time.Time          `bson:"watched_at" json:"watchedAt"`
	Progress  float64            `bson:"progress" json:"progress"`
}

// User mirrors the 'users' collection.  Watchlist keeps insertion order and
// set semantics (no duplicate movie ids).  PasswordHash is excluded from
// JSON and from every read projection in the repository.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Name           string               `bson:"name" json:"name" validate:"required"`
	Email          string               `bson:"email" json:"email" validate:"required,email"`
	PasswordHash   string               `bson:"password,omitempty" json:"-"`
	Role           string               `bson:"role" json:"role"`
	ProfileImage   *string              `bson:"profile_image,omitempty" json:"profileImage,omitempty"`
	Watchlist      []primitive.ObjectID `bson:"watchlist" json:"watchlist"`
	WatchHistory   []WatchHistoryEntry  `bson:"watch_history" json:"watchHistory"`
	FavoriteGenres []string             `bson:"favorite_genres" json:"favoriteGenres"`
	CreatedAt      time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updatedAt"`
}

// WatchHistoryView is a history entry hydrated with its movie document for
// responses; the json shape matches the stored entry with the movie in
// place of the raw id.
type WatchHistoryView struct {
	Movie     *Movie    `json:"movieId"`
	WatchedAt time.Time `json:"watchedAt"`
	Progress  float64   `json:"progress"`
}

// Package service holds the watch-state engine: the rules that govern how
// a user's watchlist and watch-history may change.  The storage layer
// enforces the set/keyed invariants atomically; this layer adds the
// cross-collection preconditions and the error taxonomy the handlers map
// onto HTTP statuses.
package service

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/netprime/streaming-catalog/internal/model"
	"github.com/netprime/streaming-catalog/internal/queue"
	"github.com/netprime/streaming-catalog/internal/repository"
)

// ErrMovieNotFound rejects a watchlist add that references a movie absent
// from the catalog.
var ErrMovieNotFound = errors.New("movie not found")

// ErrUserNotFound is returned when the acting user's document is missing.
var ErrUserNotFound = errors.New("user not found")

// ErrAlreadyInWatchlist re-exports the storage sentinel so handlers only
// depend on this package for watch-state failures.
var ErrAlreadyInWatchlist = repository.ErrAlreadyInWatchlist

// UserStore is the slice of the account store the engine mutates.
type UserStore interface {
	AddToWatchlist(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveFromWatchlist(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error)
	RecordProgress(ctx context.Context, userID, movieID primitive.ObjectID, progress float64) ([]model.WatchHistoryEntry, error)
	SetFavoriteGenres(ctx context.Context, userID primitive.ObjectID, genres []string) (*model.User, error)
}

// MovieCatalog supplies the movie-existence precondition.
type MovieCatalog interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Movie, error)
}

// WatchState wires the engine's collaborators.  Publish may be nil, which
// disables progress events.
type WatchState struct {
	Users   UserStore
	Movies  MovieCatalog
	Publish func(ctx context.Context, ev queue.WatchProgressEvent) error
}

func NewWatchState(users UserStore, movies MovieCatalog,
	publish func(ctx context.Context, ev queue.WatchProgressEvent) error) *WatchState {
	return &WatchState{Users: users, Movies: movies, Publish: publish}
}

// AddToWatchlist appends a movie to the user's watchlist.  The movie must
// exist in the catalog and must not already be a member; either failure
// leaves the list untouched.
func (s *WatchState) AddToWatchlist(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	ok, err := s.Movies.Exists(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMovieNotFound
	}
	list, err := s.Users.AddToWatchlist(ctx, userID, movieID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return list, err
}

// RemoveFromWatchlist removes a movie from the watchlist.  Removing an
// absent movie is a success that returns the unchanged list, so the
// operation is idempotent.
func (s *WatchState) RemoveFromWatchlist(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	list, err := s.Users.RemoveFromWatchlist(ctx, userID, movieID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return list, err
}

// RecordProgress upserts the history entry for a movie: an existing entry
// is overwritten in place with a fresh timestamp, otherwise a new one is
// appended.  Progress is stored as supplied; no range is enforced.  A
// progress event is published best-effort and never fails the request.
func (s *WatchState) RecordProgress(ctx context.Context, userID, movieID primitive.ObjectID, progress float64) ([]model.WatchHistoryEntry, error) {
	history, err := s.Users.RecordProgress(ctx, userID, movieID, progress)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if s.Publish != nil {
		ev := queue.WatchProgressEvent{
			UserID:    userID.Hex(),
			MovieID:   movieID.Hex(),
			Progress:  progress,
			WatchedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if m, mErr := s.Movies.GetByID(ctx, movieID); mErr == nil {
			ev.MovieTitle = m.Title
		}
		_ = s.Publish(ctx, ev) // errors are logged by the publisher
	}
	return history, nil
}

// SetFavoriteGenres replaces the user's favorite-genre names wholesale.
// The names are not checked against the genres collection.
func (s *WatchState) SetFavoriteGenres(ctx context.Context, userID primitive.ObjectID, genres []string) (*model.User, error) {
	u, err := s.Users.SetFavoriteGenres(ctx, userID, genres)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

package service

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/netprime/streaming-catalog/internal/model"
	"github.com/netprime/streaming-catalog/internal/queue"
	"github.com/netprime/streaming-catalog/internal/repository"
)

// fakeUserStore mimics the guarded-update semantics of the Mongo user
// repository in memory.
type fakeUserStore struct {
	users map[primitive.ObjectID]*model.User
}

func newFakeUserStore(ids ...primitive.ObjectID) *fakeUserStore {
	s := &fakeUserStore{users: map[primitive.ObjectID]*model.User{}}
	for _, id := range ids {
		s.users[id] = &model.User{
			ID:           id,
			Watchlist:    []primitive.ObjectID{},
			WatchHistory: []model.WatchHistoryEntry{},
		}
	}
	return s
}

func (s *fakeUserStore) AddToWatchlist(_ context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, id := range u.Watchlist {
		if id == movieID {
			return nil, repository.ErrAlreadyInWatchlist
		}
	}
	u.Watchlist = append(u.Watchlist, movieID)
	return append([]primitive.ObjectID(nil), u.Watchlist...), nil
}

func (s *fakeUserStore) RemoveFromWatchlist(_ context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	kept := u.Watchlist[:0]
	for _, id := range u.Watchlist {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	u.Watchlist = kept
	return append([]primitive.ObjectID(nil), u.Watchlist...), nil
}

func (s *fakeUserStore) RecordProgress(_ context.Context, userID, movieID primitive.ObjectID, progress float64) ([]model.WatchHistoryEntry, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for i := range u.WatchHistory {
		if u.WatchHistory[i].MovieID == movieID {
			u.WatchHistory[i].Progress = progress
			u.WatchHistory[i].WatchedAt = u.WatchHistory[i].WatchedAt.Add(1)
			return append([]model.WatchHistoryEntry(nil), u.WatchHistory...), nil
		}
	}
	u.WatchHistory = append(u.WatchHistory, model.WatchHistoryEntry{MovieID: movieID, Progress: progress})
	return append([]model.WatchHistoryEntry(nil), u.WatchHistory...), nil
}

func (s *fakeUserStore) SetFavoriteGenres(_ context.Context, userID primitive.ObjectID, genres []string) (*model.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.FavoriteGenres = genres
	return u, nil
}

// fakeCatalog answers existence checks from a fixed movie set.
type fakeCatalog struct {
	movies map[primitive.ObjectID]*model.Movie
}

func newFakeCatalog(ids ...primitive.ObjectID) *fakeCatalog {
	c := &fakeCatalog{movies: map[primitive.ObjectID]*model.Movie{}}
	for _, id := range ids {
		c.movies[id] = &model.Movie{ID: id, Title: "Movie " + id.Hex()[:6]}
	}
	return c
}

func (c *fakeCatalog) Exists(_ context.Context, id primitive.ObjectID) (bool, error) {
	_, ok := c.movies[id]
	return ok, nil
}

func (c *fakeCatalog) GetByID(_ context.Context, id primitive.ObjectID) (*model.Movie, error) {
	m, ok := c.movies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func TestAddToWatchlistMovieMustExist(t *testing.T) {
	userID := primitive.NewObjectID()
	ws := NewWatchState(newFakeUserStore(userID), newFakeCatalog(), nil)

	_, err := ws.AddToWatchlist(context.Background(), userID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrMovieNotFound)
}

func TestAddToWatchlistUserMustExist(t *testing.T) {
	movieID := primitive.NewObjectID()
	ws := NewWatchState(newFakeUserStore(), newFakeCatalog(movieID), nil)

	_, err := ws.AddToWatchlist(context.Background(), primitive.NewObjectID(), movieID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDuplicateAddIsConflictAndLeavesListUnchanged(t *testing.T) {
	userID := primitive.NewObjectID()
	m1 := primitive.NewObjectID()
	m2 := primitive.NewObjectID()
	store := newFakeUserStore(userID)
	ws := NewWatchState(store, newFakeCatalog(m1, m2), nil)
	ctx := context.Background()

	_, err := ws.AddToWatchlist(ctx, userID, m1)
	require.NoError(t, err)
	list, err := ws.AddToWatchlist(ctx, userID, m2)
	require.NoError(t, err)
	require.Equal(t, []primitive.ObjectID{m1, m2}, list)

	_, err = ws.AddToWatchlist(ctx, userID, m1)
	assert.ErrorIs(t, err, ErrAlreadyInWatchlist)
	// length and order identical before/after the rejected call
	assert.Equal(t, []primitive.ObjectID{m1, m2}, store.users[userID].Watchlist)
}

func TestRemoveAbsentMovieIsIdempotentNoop(t *testing.T) {
	userID := primitive.NewObjectID()
	m1 := primitive.NewObjectID()
	store := newFakeUserStore(userID)
	ws := NewWatchState(store, newFakeCatalog(m1), nil)
	ctx := context.Background()

	_, err := ws.AddToWatchlist(ctx, userID, m1)
	require.NoError(t, err)

	list, err := ws.RemoveFromWatchlist(ctx, userID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{m1}, list)
}

func TestRecordProgressUpdatesInPlace(t *testing.T) {
	userID := primitive.NewObjectID()
	m1 := primitive.NewObjectID()
	m2 := primitive.NewObjectID()
	ws := NewWatchState(newFakeUserStore(userID), newFakeCatalog(m1, m2), nil)
	ctx := context.Background()

	hist, err := ws.RecordProgress(ctx, userID, m1, 0.25)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, 0.25, hist[0].Progress)

	hist, err = ws.RecordProgress(ctx, userID, m2, 0.10)
	require.NoError(t, err)
	require.Len(t, hist, 2)

	// second write for m1 updates the existing record in place
	hist, err = ws.RecordProgress(ctx, userID, m1, 0.80)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, m1, hist[0].MovieID)
	assert.Equal(t, 0.80, hist[0].Progress)
	assert.Equal(t, m2, hist[1].MovieID)
}

func TestRecordProgressPublishesEvent(t *testing.T) {
	userID := primitive.NewObjectID()
	movieID := primitive.NewObjectID()
	var got *queue.WatchProgressEvent
	ws := NewWatchState(newFakeUserStore(userID), newFakeCatalog(movieID),
		func(_ context.Context, ev queue.WatchProgressEvent) error {
			got = &ev
			return nil
		})

	_, err := ws.RecordProgress(context.Background(), userID, movieID, 0.5)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, userID.Hex(), got.UserID)
	assert.Equal(t, movieID.Hex(), got.MovieID)
	assert.Equal(t, 0.5, got.Progress)
	assert.NotEmpty(t, got.MovieTitle)
}

func TestWatchlistNeverContainsDuplicates(t *testing.T) {
	userID := primitive.NewObjectID()
	movies := make([]primitive.ObjectID, 5)
	for i := range movies {
		movies[i] = primitive.NewObjectID()
	}
	store := newFakeUserStore(userID)
	ws := NewWatchState(store, newFakeCatalog(movies...), nil)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		m := movies[rng.Intn(len(movies))]
		if rng.Intn(2) == 0 {
			_, err := ws.AddToWatchlist(ctx, userID, m)
			if err != nil {
				assert.ErrorIs(t, err, ErrAlreadyInWatchlist)
			}
		} else {
			_, err := ws.RemoveFromWatchlist(ctx, userID, m)
			require.NoError(t, err)
		}

		seen := map[primitive.ObjectID]bool{}
		for _, id := range store.users[userID].Watchlist {
			assert.False(t, seen[id], "duplicate %s after %d ops", id.Hex(), i+1)
			seen[id] = true
		}
	}
}

func TestWatchlistScenario(t *testing.T) {
	userID := primitive.NewObjectID()
	m1 := primitive.NewObjectID()
	ws := NewWatchState(newFakeUserStore(userID), newFakeCatalog(m1), nil)
	ctx := context.Background()

	list, err := ws.AddToWatchlist(ctx, userID, m1)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{m1}, list)

	_, err = ws.AddToWatchlist(ctx, userID, m1)
	assert.ErrorIs(t, err, ErrAlreadyInWatchlist)

	list, err = ws.RemoveFromWatchlist(ctx, userID, m1)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSetFavoriteGenresReplacesWholesale(t *testing.T) {
	userID := primitive.NewObjectID()
	store := newFakeUserStore(userID)
	ws := NewWatchState(store, newFakeCatalog(), nil)
	ctx := context.Background()

	u, err := ws.SetFavoriteGenres(ctx, userID, []string{"Action", "Drama"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "Drama"}, u.FavoriteGenres)

	// unknown names are accepted as-is
	u, err = ws.SetFavoriteGenres(ctx, userID, []string{"Nonexistent"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nonexistent"}, u.FavoriteGenres)
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/netprime/streaming-catalog/internal/model"
	"github.com/netprime/streaming-catalog/internal/repository"
	"github.com/netprime/streaming-catalog/internal/service"
)

// ProfileStore is the slice of the user repository the profile endpoints
// read through.
type ProfileStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, name, profileImage *string) (*model.User, error)
}

// MovieLister hydrates stored movie ids into full documents for responses.
type MovieLister interface {
	ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Movie, error)
}

// UserHandler bundles dependencies for the authenticated user endpoints.
// All operations act on the user resolved from the bearer token; there is
// no way to touch another user's watch state.
type UserHandler struct {
	Users  ProfileStore
	Movies MovieLister
	Watch  *service.WatchState
}

func NewUserHandler(users ProfileStore, movies MovieLister, watch *service.WatchState) *UserHandler {
	return &UserHandler{Users: users, Movies: movies, Watch: watch}
}

// profileView is the user document with the watchlist hydrated into movie
// documents, the shape the SPA expects from the profile endpoint.
type profileView struct {
	*model.User
	Watchlist []model.Movie `json:"watchlist"`
}

// GetProfile handles GET /api/users/profile.
func (h *UserHandler) GetProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not load profile")
	}

	movies, err := h.Movies.ByIDs(ctx, u.Watchlist)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load watchlist")
	}
	return respondData(c, http.StatusOK, profileView{User: u, Watchlist: movies})
}

type updateProfileReq struct {
	Name         *string `json:"name"`
	ProfileImage *string `json:"profileImage"`
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, req.Name, req.ProfileImage)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not update profile")
	}
	return respondMsg(c, http.StatusOK, "Profile updated successfully", u)
}

type watchlistReq struct {
	MovieID string `json:"movieId" validate:"required"`
}

// AddToWatchlist handles POST /api/users/watchlist.  The movie must exist
// and must not already be in the list; a duplicate add is rejected with a
// 400 and leaves the list unchanged.
func (h *UserHandler) AddToWatchlist(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req watchlistReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}
	movieID, err := parseObjectID(req.MovieID)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid movie id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Watch.AddToWatchlist(ctx, uid, movieID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMovieNotFound):
			return respondErr(c, http.StatusNotFound, "Movie not found")
		case errors.Is(err, service.ErrUserNotFound):
			return respondErr(c, http.StatusNotFound, "User not found")
		case errors.Is(err, service.ErrAlreadyInWatchlist):
			return respondErr(c, http.StatusBadRequest, "Movie already in watchlist")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not update watchlist")
	}
	return respondMsg(c, http.StatusOK, "Movie added to watchlist", list)
}

// RemoveFromWatchlist handles DELETE /api/users/watchlist/:movieId.
// Removing a movie that is not in the list succeeds and returns the
// unchanged list.
func (h *UserHandler) RemoveFromWatchlist(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized")
	}
	movieID, err := parseObjectID(c.Param("movieId"))
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid movie id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Watch.RemoveFromWatchlist(ctx, uid, movieID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return respondErr(c, http.StatusNotFound, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not update watchlist")
	}
	return respondMsg(c, http.StatusOK, "Movie removed from watchlist", list)
}

// GetWatchlist handles GET /api/users/watchlist, returning the hydrated
// movie documents in watchlist order.
func (h *UserHandler) GetWatchlist(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not load watchlist")
	}

	movies, err := h.Movies.ByIDs(ctx, u.Watchlist)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load watchlist")
	}
	return respondList(c, http.StatusOK, len(movies), movies)
}

type watchHistoryReq struct {
	MovieID  string  `json:"movieId" validate:"required"`
	Progress float64 `json:"progress"`
}

// AddToWatchHistory handles POST /api/users/watch-history.  A first write
// for a movie appends a record; later writes update it in place.  The
// progress value is stored as supplied.
func (h *UserHandler) AddToWatchHistory(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req watchHistoryReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}
	movieID, err := parseObjectID(req.MovieID)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid movie id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	history, err := h.Watch.RecordProgress(ctx, uid, movieID, req.Progress)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return respondErr(c, http.StatusNotFound, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not update watch history")
	}
	return respondMsg(c, http.StatusOK, "Watch history updated", history)
}

// GetWatchHistory handles GET /api/users/watch-history, hydrating each
// record's movie document.
func (h *UserHandler) GetWatchHistory(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not load watch history")
	}

	ids := make([]primitive.ObjectID, 0, len(u.WatchHistory))
	for _, e := range u.WatchHistory {
		ids = append(ids, e.MovieID)
	}
	movies, err := h.Movies.ByIDs(ctx, ids)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load watch history")
	}
	byID := make(map[primitive.ObjectID]model.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}

	views := make([]model.WatchHistoryView, 0, len(u.WatchHistory))
	for _, e := range u.WatchHistory {
		v := model.WatchHistoryView{WatchedAt: e.WatchedAt, Progress: e.Progress}
		if m, ok := byID[e.MovieID]; ok {
			mv := m
			v.Movie = &mv
		}
		views = append(views, v)
	}
	return respondList(c, http.StatusOK, len(views), views)
}

type favoriteGenresReq struct {
	Genres []string `json:"genres"`
}

// SetFavoriteGenres handles PUT /api/users/favorite-genres, replacing the
// list wholesale.  Names are not checked against the genres collection.
func (h *UserHandler) SetFavoriteGenres(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized")
	}
	var req favoriteGenresReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Watch.SetFavoriteGenres(ctx, uid, req.Genres)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return respondErr(c, http.StatusNotFound, "User not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not update favorite genres")
	}
	return respondMsg(c, http.StatusOK, "Favorite genres updated", u)
}

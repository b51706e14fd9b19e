package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/netprime/streaming-catalog/internal/model"
	"github.com/netprime/streaming-catalog/internal/repository"
)

// MovieStore is the slice of the movie repository the catalog endpoints use.
type MovieStore interface {
	Create(ctx context.Context, m *model.Movie) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Movie, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Movie, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Find(ctx context.Context, q repository.MovieQuery) ([]model.Movie, error)
	Featured(ctx context.Context) ([]model.Movie, error)
	Trending(ctx context.Context) ([]model.Movie, error)
	Popular(ctx context.Context) ([]model.Movie, error)
	ByGenre(ctx context.Context, genreID primitive.ObjectID) ([]model.Movie, error)
}

// GenreResolver resolves genre names for the list filter and genre ids
// for response hydration.
type GenreResolver interface {
	GetByName(ctx context.Context, name string) (*model.Genre, error)
	ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Genre, error)
}

// MovieHandler bundles dependencies for the movie endpoints.
type MovieHandler struct {
	Movies MovieStore
	Genres GenreResolver
}

func NewMovieHandler(movies MovieStore, genres GenreResolver) *MovieHandler {
	return &MovieHandler{Movies: movies, Genres: genres}
}

// movieView is a movie with its genre ids hydrated into genre documents,
// the shape the SPA reads genre names from on movie cards.
type movieView struct {
	model.Movie
	Genres []model.Genre `json:"genres"`
}

// hydrateGenres joins the movies' genre ids against the genres collection
// in one query.  Dangling ids are skipped, so a deleted genre simply
// disappears from the view.
func (h *MovieHandler) hydrateGenres(ctx context.Context, movies []model.Movie) ([]movieView, error) {
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, m := range movies {
		for _, id := range m.Genres {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	byID := map[primitive.ObjectID]model.Genre{}
	if len(ids) > 0 {
		genres, err := h.Genres.ByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, g := range genres {
			byID[g.ID] = g
		}
	}

	views := make([]movieView, 0, len(movies))
	for _, m := range movies {
		gs := make([]model.Genre, 0, len(m.Genres))
		for _, id := range m.Genres {
			if g, ok := byID[id]; ok {
				gs = append(gs, g)
			}
		}
		views = append(views, movieView{Movie: m, Genres: gs})
	}
	return views, nil
}

// List handles GET /api/movies with optional search/genre/flag filters and
// a sort order.  Filters are ANDed; an unknown genre name simply drops the
// genre constraint.
func (h *MovieHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q := repository.MovieQuery{
		Search:   strings.TrimSpace(c.QueryParam("search")),
		Trending: c.QueryParam("trending") == "true",
		Popular:  c.QueryParam("popular") == "true",
		Featured: c.QueryParam("featured") == "true",
		SortBy:   c.QueryParam("sortBy"),
	}
	if name := strings.TrimSpace(c.QueryParam("genre")); name != "" {
		g, err := h.Genres.GetByName(ctx, name)
		if err == nil {
			q.GenreID = &g.ID
		} else if !errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusInternalServerError, "Could not resolve genre")
		}
	}

	movies, err := h.Movies.Find(ctx, q)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not list movies")
	}
	views, err := h.hydrateGenres(ctx, movies)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not list movies")
	}
	return respondList(c, http.StatusOK, len(views), views)
}

// Featured handles GET /api/movies/featured.
func (h *MovieHandler) Featured(c echo.Context) error {
	return h.curated(c, h.Movies.Featured)
}

// Trending handles GET /api/movies/trending (at most 10, newest first).
func (h *MovieHandler) Trending(c echo.Context) error {
	return h.curated(c, h.Movies.Trending)
}

// Popular handles GET /api/movies/popular (at most 10, best rated first).
func (h *MovieHandler) Popular(c echo.Context) error {
	return h.curated(c, h.Movies.Popular)
}

func (h *MovieHandler) curated(c echo.Context, list func(context.Context) ([]model.Movie, error)) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	movies, err := list(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not list movies")
	}
	views, err := h.hydrateGenres(ctx, movies)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not list movies")
	}
	return respondList(c, http.StatusOK, len(views), views)
}

// Get handles GET /api/movies/:id.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid movie id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Movie not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not load movie")
	}
	views, err := h.hydrateGenres(ctx, []model.Movie{*m})
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load movie")
	}
	return respondData(c, http.StatusOK, views[0])
}

type createMovieReq struct {
	Title          string   `json:"title" validate:"required"`
	Description    string   `json:"description" validate:"required"`
	ImageURL       string   `json:"imageUrl" validate:"required"`
	BannerImageURL *string  `json:"bannerImageUrl"`
	Genres         []string `json:"genres" validate:"dive,len=24,hexadecimal"`
	Year           int      `json:"year" validate:"required"`
	Rating         float64  `json:"rating" validate:"gte=0,lte=10"`
	Duration       *int     `json:"duration"`
	Seasons        *int     `json:"seasons"`
	Episodes       *int     `json:"episodes"`
	Director       *string  `json:"director"`
	Cast           []string `json:"cast"`
	ContentRating  string   `json:"contentRating"`
	Featured       bool     `json:"featured"`
	Trending       bool     `json:"trending"`
	Popular        bool     `json:"popular"`
	VideoURL       *string  `json:"videoUrl"`
	Tags           []string `json:"tags"`
}

// Create handles POST /api/movies (admin only).
func (h *MovieHandler) Create(c echo.Context) error {
	var req createMovieReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Please provide required fields")
	}
	if req.ContentRating != "" && !model.ValidContentRating(req.ContentRating) {
		return respondErr(c, http.StatusBadRequest, "Invalid content rating")
	}

	genres, err := toObjectIDs(req.Genres)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid genre id")
	}

	m := &model.Movie{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		ImageURL:       req.ImageURL,
		BannerImageURL: req.BannerImageURL,
		Genres:         genres,
		Year:           req.Year,
		Rating:         req.Rating,
		Duration:       req.Duration,
		Seasons:        req.Seasons,
		Episodes:       req.Episodes,
		Director:       req.Director,
		Cast:           req.Cast,
		ContentRating:  req.ContentRating,
		Featured:       req.Featured,
		Trending:       req.Trending,
		Popular:        req.Popular,
		VideoURL:       req.VideoURL,
		Tags:           req.Tags,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Create(ctx, m); err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not create movie")
	}
	return respondMsg(c, http.StatusCreated, "Movie created successfully", m)
}

type updateMovieReq struct {
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	ImageURL       *string   `json:"imageUrl"`
	BannerImageURL *string   `json:"bannerImageUrl"`
	Genres         *[]string `json:"genres"`
	Year           *int      `json:"year"`
	Rating         *float64  `json:"rating"`
	Duration       *int      `json:"duration"`
	Seasons        *int      `json:"seasons"`
	Episodes       *int      `json:"episodes"`
	Director       *string   `json:"director"`
	Cast           *[]string `json:"cast"`
	ContentRating  *string   `json:"contentRating"`
	Featured       *bool     `json:"featured"`
	Trending       *bool     `json:"trending"`
	Popular        *bool     `json:"popular"`
	VideoURL       *string   `json:"videoUrl"`
	Tags           *[]string `json:"tags"`
}

// Update handles PUT /api/movies/:id (admin only).  Only the supplied
// fields are written.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid movie id")
	}
	var req updateMovieReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 10) {
		return respondErr(c, http.StatusBadRequest, "Rating must be between 0 and 10")
	}
	if req.ContentRating != nil && !model.ValidContentRating(*req.ContentRating) {
		return respondErr(c, http.StatusBadRequest, "Invalid content rating")
	}

	set := bson.M{}
	for key, v := range map[string]*string{
		"title":            req.Title,
		"description":      req.Description,
		"image_url":        req.ImageURL,
		"banner_image_url": req.BannerImageURL,
		"director":         req.Director,
		"content_rating":   req.ContentRating,
		"video_url":        req.VideoURL,
	} {
		if v != nil {
			set[key] = *v
		}
	}
	for key, v := range map[string]*int{
		"year":     req.Year,
		"duration": req.Duration,
		"seasons":  req.Seasons,
		"episodes": req.Episodes,
	} {
		if v != nil {
			set[key] = *v
		}
	}
	for key, v := range map[string]*bool{
		"featured": req.Featured,
		"trending": req.Trending,
		"popular":  req.Popular,
	} {
		if v != nil {
			set[key] = *v
		}
	}
	if req.Rating != nil {
		set["rating"] = *req.Rating
	}
	if req.Cast != nil {
		set["cast"] = *req.Cast
	}
	if req.Tags != nil {
		set["tags"] = *req.Tags
	}
	if req.Genres != nil {
		genres, gErr := toObjectIDs(*req.Genres)
		if gErr != nil {
			return respondErr(c, http.StatusBadRequest, "Invalid genre id")
		}
		set["genres"] = genres
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	m, err := h.Movies.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Movie not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not update movie")
	}
	return respondMsg(c, http.StatusOK, "Movie updated successfully", m)
}

// Delete handles DELETE /api/movies/:id (admin only).  References to the
// movie in watchlists, histories and genre caches are cleaned up with it.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid movie id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Movies.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Movie not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not delete movie")
	}
	return respondMsg(c, http.StatusOK, "Movie deleted successfully", nil)
}

func toObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

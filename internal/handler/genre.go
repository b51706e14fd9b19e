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

// GenreStore is the slice of the genre repository the genre endpoints use.
type GenreStore interface {
	Create(ctx context.Context, name string, description, imageURL *string) (*model.Genre, error)
	List(ctx context.Context) ([]model.Genre, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Genre, error)
	GetByName(ctx context.Context, name string) (*model.Genre, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Genre, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// GenreHandler bundles dependencies for the genre endpoints.  Movies is
// used to recompute genre membership from the authoritative side
// (movie.genres) instead of trusting the cached back-reference list.
type GenreHandler struct {
	Genres GenreStore
	Movies MovieStore
}

func NewGenreHandler(genres GenreStore, movies MovieStore) *GenreHandler {
	return &GenreHandler{Genres: genres, Movies: movies}
}

// List handles GET /api/genres.
func (h *GenreHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genres, err := h.Genres.List(ctx)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not list genres")
	}
	return respondList(c, http.StatusOK, len(genres), genres)
}

// Get handles GET /api/genres/:id, returning the genre together with its
// member movies computed from movie.genres.
func (h *GenreHandler) Get(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid genre id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Genres.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Genre not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not load genre")
	}

	movies, err := h.Movies.ByGenre(ctx, g.ID)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not load genre movies")
	}
	return respondData(c, http.StatusOK, echo.Map{"genre": g, "movies": movies})
}

type genreReq struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

// Create handles POST /api/genres (admin only).
func (h *GenreHandler) Create(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return respondErr(c, http.StatusBadRequest, "Please provide genre name")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Genres.Create(ctx, req.Name, req.Description, req.ImageURL)
	if err != nil {
		if errors.Is(err, repository.ErrGenreExists) {
			return respondErr(c, http.StatusBadRequest, "Genre already exists")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not create genre")
	}
	return respondMsg(c, http.StatusCreated, "Genre created successfully", g)
}

// Update handles PUT /api/genres/:id (admin only).
func (h *GenreHandler) Update(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid genre id")
	}
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid request body")
	}

	set := bson.M{}
	if name := strings.TrimSpace(req.Name); name != "" {
		set["name"] = name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.ImageURL != nil {
		set["image_url"] = *req.ImageURL
	}
	if len(set) == 0 {
		return respondErr(c, http.StatusBadRequest, "Nothing to update")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Genres.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Genre not found")
		}
		if errors.Is(err, repository.ErrGenreExists) {
			return respondErr(c, http.StatusBadRequest, "Genre already exists")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not update genre")
	}
	return respondMsg(c, http.StatusOK, "Genre updated successfully", g)
}

// Delete handles DELETE /api/genres/:id (admin only).
func (h *GenreHandler) Delete(c echo.Context) error {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Invalid genre id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Genres.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Genre not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not delete genre")
	}
	return respondMsg(c, http.StatusOK, "Genre deleted successfully", nil)
}

// MoviesByGenre handles GET /api/genres/search/:genreName, listing the
// movies whose genres array references the named genre.
func (h *GenreHandler) MoviesByGenre(c echo.Context) error {
	name := strings.TrimSpace(c.Param("genreName"))
	if name == "" {
		return respondErr(c, http.StatusBadRequest, "Please provide genre name")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Genres.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondErr(c, http.StatusNotFound, "Genre not found")
		}
		return respondErr(c, http.StatusInternalServerError, "Could not load genre")
	}

	movies, err := h.Movies.ByGenre(ctx, g.ID)
	if err != nil {
		return respondErr(c, http.StatusInternalServerError, "Could not list movies")
	}
	return respondList(c, http.StatusOK, len(movies), movies)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/netprime/streaming-catalog/internal/model"
	"github.com/netprime/streaming-catalog/internal/repository"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// fakeMovieStore is an in-memory MovieStore for the catalog handlers.
type fakeMovieStore struct {
	movies []model.Movie
}

func (f *fakeMovieStore) Create(_ context.Context, m *model.Movie) error {
	m.ID = primitive.NewObjectID()
	f.movies = append(f.movies, *m)
	return nil
}

func (f *fakeMovieStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Movie, error) {
	for i := range f.movies {
		if f.movies[i].ID == id {
			m := f.movies[i]
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMovieStore) Update(_ context.Context, id primitive.ObjectID, _ bson.M) (*model.Movie, error) {
	for i := range f.movies {
		if f.movies[i].ID == id {
			m := f.movies[i]
			return &m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMovieStore) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range f.movies {
		if f.movies[i].ID == id {
			f.movies = append(f.movies[:i], f.movies[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeMovieStore) Find(_ context.Context, q repository.MovieQuery) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, m := range f.movies {
		if q.GenreID != nil && !hasGenre(m, *q.GenreID) {
			continue
		}
		if q.Trending && !m.Trending || q.Popular && !m.Popular || q.Featured && !m.Featured {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMovieStore) Featured(_ context.Context) ([]model.Movie, error) {
	return f.flagged(func(m model.Movie) bool { return m.Featured })
}

func (f *fakeMovieStore) Trending(_ context.Context) ([]model.Movie, error) {
	return f.flagged(func(m model.Movie) bool { return m.Trending })
}

func (f *fakeMovieStore) Popular(_ context.Context) ([]model.Movie, error) {
	return f.flagged(func(m model.Movie) bool { return m.Popular })
}

func (f *fakeMovieStore) ByGenre(_ context.Context, genreID primitive.ObjectID) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, m := range f.movies {
		if hasGenre(m, genreID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMovieStore) flagged(keep func(model.Movie) bool) ([]model.Movie, error) {
	out := []model.Movie{}
	for _, m := range f.movies {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

func hasGenre(m model.Movie, genreID primitive.ObjectID) bool {
	for _, id := range m.Genres {
		if id == genreID {
			return true
		}
	}
	return false
}

// fakeGenreStore is an in-memory GenreStore/GenreResolver.
type fakeGenreStore struct {
	genres []model.Genre
}

func (f *fakeGenreStore) Create(_ context.Context, name string, description, imageURL *string) (*model.Genre, error) {
	for _, g := range f.genres {
		if g.Name == name {
			return nil, repository.ErrGenreExists
		}
	}
	g := model.Genre{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: description,
		ImageURL:    imageURL,
		Movies:      []primitive.ObjectID{},
	}
	f.genres = append(f.genres, g)
	return &g, nil
}

func (f *fakeGenreStore) List(_ context.Context) ([]model.Genre, error) {
	return append([]model.Genre(nil), f.genres...), nil
}

func (f *fakeGenreStore) GetByID(_ context.Context, id primitive.ObjectID) (*model.Genre, error) {
	for i := range f.genres {
		if f.genres[i].ID == id {
			g := f.genres[i]
			return &g, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGenreStore) GetByName(_ context.Context, name string) (*model.Genre, error) {
	for i := range f.genres {
		if f.genres[i].Name == name {
			g := f.genres[i]
			return &g, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGenreStore) ByIDs(_ context.Context, ids []primitive.ObjectID) ([]model.Genre, error) {
	out := []model.Genre{}
	for _, g := range f.genres {
		for _, id := range ids {
			if g.ID == id {
				out = append(out, g)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeGenreStore) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*model.Genre, error) {
	for i := range f.genres {
		if f.genres[i].ID == id {
			if name, ok := set["name"].(string); ok {
				f.genres[i].Name = name
			}
			g := f.genres[i]
			return &g, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGenreStore) Delete(_ context.Context, id primitive.ObjectID) error {
	for i := range f.genres {
		if f.genres[i].ID == id {
			f.genres = append(f.genres[:i], f.genres[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func seedGenre(f *fakeGenreStore, name string) model.Genre {
	g, _ := f.Create(context.Background(), name, nil, nil)
	return *g
}

func seedMovie(f *fakeMovieStore, title string, genres []primitive.ObjectID, mut func(*model.Movie)) model.Movie {
	m := &model.Movie{Title: title, Genres: genres}
	if mut != nil {
		mut(m)
	}
	_ = f.Create(context.Background(), m)
	return *m
}

// hydratedMovie is the response shape the tests decode movie views into.
type hydratedMovie struct {
	Title  string `json:"title"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

func TestMovieListHydratesGenres(t *testing.T) {
	genres := &fakeGenreStore{}
	action := seedGenre(genres, "Action")
	drama := seedGenre(genres, "Drama")

	movies := &fakeMovieStore{}
	seedMovie(movies, "Gladiator II", []primitive.ObjectID{action.ID, drama.ID}, nil)
	seedMovie(movies, "Nobody", []primitive.ObjectID{action.ID}, nil)

	h := NewMovieHandler(movies, genres)
	e := newTestEcho()

	rec, env := doJSON(t, e, http.MethodGet, "/api/movies", "", primitive.NewObjectID(), h.List)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)

	var views []hydratedMovie
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 2)
	require.Len(t, views[0].Genres, 2)
	assert.Equal(t, "Action", views[0].Genres[0].Name)
	assert.Equal(t, "Drama", views[0].Genres[1].Name)
	require.Len(t, views[1].Genres, 1)
	assert.Equal(t, "Action", views[1].Genres[0].Name)
}

func TestMovieGetHydratesGenresAndSkipsDangling(t *testing.T) {
	genres := &fakeGenreStore{}
	action := seedGenre(genres, "Action")

	movies := &fakeMovieStore{}
	m := seedMovie(movies, "Blade", []primitive.ObjectID{action.ID, primitive.NewObjectID()}, nil)

	h := NewMovieHandler(movies, genres)
	e := newTestEcho()

	rec, env := doJSON(t, e, http.MethodGet, "/api/movies/"+m.ID.Hex(), "",
		primitive.NewObjectID(), h.Get, "id", m.ID.Hex())
	assert.Equal(t, http.StatusOK, rec.Code)

	var view hydratedMovie
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "Blade", view.Title)
	// the deleted genre's id is dropped from the view, not returned raw
	require.Len(t, view.Genres, 1)
	assert.Equal(t, "Action", view.Genres[0].Name)
}

func TestTrendingHydratesGenres(t *testing.T) {
	genres := &fakeGenreStore{}
	scifi := seedGenre(genres, "Sci-Fi")

	movies := &fakeMovieStore{}
	seedMovie(movies, "Avatar", []primitive.ObjectID{scifi.ID}, func(m *model.Movie) { m.Trending = true })
	seedMovie(movies, "Babylon", nil, nil) // not trending

	h := NewMovieHandler(movies, genres)
	e := newTestEcho()

	rec, env := doJSON(t, e, http.MethodGet, "/api/movies/trending", "",
		primitive.NewObjectID(), h.Trending)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	var views []hydratedMovie
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 1)
	require.Len(t, views[0].Genres, 1)
	assert.Equal(t, "Sci-Fi", views[0].Genres[0].Name)
}

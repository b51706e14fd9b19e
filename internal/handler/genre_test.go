package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/netprime/streaming-catalog/internal/model"
)

func TestMoviesByGenreReturnsOnlyMembers(t *testing.T) {
	genres := &fakeGenreStore{}
	action := seedGenre(genres, "Action")
	drama := seedGenre(genres, "Drama")

	movies := &fakeMovieStore{}
	seedMovie(movies, "Gladiator II", []primitive.ObjectID{action.ID, drama.ID}, nil)
	seedMovie(movies, "Nobody", []primitive.ObjectID{action.ID}, nil)
	seedMovie(movies, "300", []primitive.ObjectID{action.ID}, nil)
	seedMovie(movies, "Babylon", []primitive.ObjectID{drama.ID}, nil) // unrelated

	h := NewGenreHandler(genres, movies)
	e := newTestEcho()

	rec, env := doJSON(t, e, http.MethodGet, "/api/genres/search/Action", "",
		primitive.NewObjectID(), h.MoviesByGenre, "genreName", "Action")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 3, *env.Count)

	var listed []model.Movie
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	titles := make([]string, 0, len(listed))
	for _, m := range listed {
		titles = append(titles, m.Title)
	}
	assert.ElementsMatch(t, []string{"Gladiator II", "Nobody", "300"}, titles)
}

func TestMoviesByGenreUnknownNameIs404(t *testing.T) {
	h := NewGenreHandler(&fakeGenreStore{}, &fakeMovieStore{})
	e := newTestEcho()

	rec, env := doJSON(t, e, http.MethodGet, "/api/genres/search/Nonexistent", "",
		primitive.NewObjectID(), h.MoviesByGenre, "genreName", "Nonexistent")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Genre not found", env.Message)
}

func TestGenreGetRecomputesMembershipFromMovies(t *testing.T) {
	genres := &fakeGenreStore{}
	action := seedGenre(genres, "Action")

	movies := &fakeMovieStore{}
	member := seedMovie(movies, "Blade", []primitive.ObjectID{action.ID}, nil)

	// Poison the cached back-reference list with a stale id; the response
	// must come from movie.genres, not the cache.
	genres.genres[0].Movies = []primitive.ObjectID{primitive.NewObjectID()}

	h := NewGenreHandler(genres, movies)
	e := newTestEcho()

	rec, env := doJSON(t, e, http.MethodGet, "/api/genres/"+action.ID.Hex(), "",
		primitive.NewObjectID(), h.Get, "id", action.ID.Hex())
	assert.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Genre  model.Genre   `json:"genre"`
		Movies []model.Movie `json:"movies"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, "Action", payload.Genre.Name)
	require.Len(t, payload.Movies, 1)
	assert.Equal(t, member.ID, payload.Movies[0].ID)
}

func TestGenreCreateDuplicateNameIs400(t *testing.T) {
	genres := &fakeGenreStore{}
	seedGenre(genres, "Action")

	h := NewGenreHandler(genres, &fakeMovieStore{})
	e := newTestEcho()

	rec, env := doJSON(t, e, http.MethodPost, "/api/genres",
		`{"name":"Action"}`, primitive.NewObjectID(), h.Create)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Genre already exists", env.Message)
}

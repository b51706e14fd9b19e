package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/netprime/streaming-catalog/internal/model"
)

// curatedLimit caps the trending and popular listings.
const curatedLimit = 10

// MovieRepo provides access to the 'movies' collection.  It also owns the
// cascade cleanup on delete, which touches the users and genres
// collections.
type MovieRepo struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewMovieRepo(db *mongo.Database) *MovieRepo {
	return &MovieRepo{db: db, col: db.Collection("movies")}
}

// MovieQuery describes the optional list filters and sort order.  Filters
// are ANDed together; zero values mean "no constraint".
type MovieQuery struct {
	Search   string              // case-insensitive title substring
	GenreID  *primitive.ObjectID // resolved from a genre name by the handler
	Trending bool
	Popular  bool
	Featured bool
	SortBy   string // "rating" | "latest" | "popular" | ""
}

// buildMovieFilter composes the bson filter document for a MovieQuery.
func buildMovieFilter(q MovieQuery) bson.M {
	filter := bson.M{}
	if q.Search != "" {
		filter["title"] = bson.M{"$regex": primitive.Regex{Pattern: q.Search, Options: "i"}}
	}
	if q.GenreID != nil {
		filter["genres"] = *q.GenreID
	}
	if q.Trending {
		filter["trending"] = true
	}
	if q.Popular {
		filter["popular"] = true
	}
	if q.Featured {
		filter["featured"] = true
	}
	return filter
}

// movieSort maps the sortBy parameter to a sort document.  Unknown values
// leave the natural order.
func movieSort(sortBy string) bson.D {
	switch sortBy {
	case "rating":
		return bson.D{{Key: "rating", Value: -1}}
	case "latest":
		return bson.D{{Key: "release_date", Value: -1}}
	case "popular":
		return bson.D{{Key: "popular", Value: -1}}
	}
	return nil
}

// Create inserts a movie, applying the schema defaults, and fills in the
// assigned id.  Genre back-reference caches are refreshed best-effort.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.ContentRating == "" {
		m.ContentRating = model.DefaultContentRating
	}
	if m.ReleaseDate.IsZero() {
		m.ReleaseDate = now
	}
	if m.MaturityRating == 0 {
		m.MaturityRating = 18
	}
	if m.Genres == nil {
		m.Genres = []primitive.ObjectID{}
	}
	if m.Cast == nil {
		m.Cast = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)

	if len(m.Genres) > 0 {
		// Keep the denormalized genre.movies cache warm.  Failures are
		// ignored; membership is recomputed from movie.genres on read.
		_, _ = r.db.Collection("genres").UpdateMany(ctx,
			bson.M{"_id": bson.M{"$in": m.Genres}},
			bson.M{"$addToSet": bson.M{"movies": m.ID}})
	}
	return nil
}

// GetByID fetches a single movie.
func (r *MovieRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Movie, error) {
	var m model.Movie
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Exists reports whether a movie document with the given id exists.
func (r *MovieRepo) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update applies the given $set fields and returns the updated movie.
func (r *MovieRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Movie, error) {
	set["updated_at"] = time.Now().UTC()
	var m model.Movie
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes a movie and cleans up references to it: users' watchlists
// and watch-histories and genres' back-reference lists.  Without the
// cleanup those ids would dangle forever.
func (r *MovieRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := r.db.Collection("users").UpdateMany(ctx, bson.M{}, bson.M{
		"$pull": bson.M{
			"watchlist":     id,
			"watch_history": bson.M{"movie_id": id},
		},
	}); err != nil {
		return err
	}
	_, err = r.db.Collection("genres").UpdateMany(ctx, bson.M{},
		bson.M{"$pull": bson.M{"movies": id}})
	return err
}

// Find lists movies matching the composed filters and sort order.
func (r *MovieRepo) Find(ctx context.Context, q MovieQuery) ([]model.Movie, error) {
	opts := options.Find()
	if sort := movieSort(q.SortBy); sort != nil {
		opts.SetSort(sort)
	}
	return r.list(ctx, buildMovieFilter(q), opts)
}

// Featured lists all movies flagged featured.
func (r *MovieRepo) Featured(ctx context.Context) ([]model.Movie, error) {
	return r.list(ctx, bson.M{"featured": true}, options.Find())
}

// curatedOptions caps a curated listing at curatedLimit entries, sorted
// by the given field descending.
func curatedOptions(sortField string) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}}).
		SetLimit(curatedLimit)
}

// Trending lists up to 10 trending movies, newest first.
func (r *MovieRepo) Trending(ctx context.Context) ([]model.Movie, error) {
	return r.list(ctx, bson.M{"trending": true}, curatedOptions("created_at"))
}

// Popular lists up to 10 popular movies, best rated first.
func (r *MovieRepo) Popular(ctx context.Context) ([]model.Movie, error) {
	return r.list(ctx, bson.M{"popular": true}, curatedOptions("rating"))
}

// ByGenre lists movies whose genres array contains the given id.  This is
// the authoritative side of the genre relation.
func (r *MovieRepo) ByGenre(ctx context.Context, genreID primitive.ObjectID) ([]model.Movie, error) {
	return r.list(ctx, bson.M{"genres": genreID}, options.Find())
}

// ByIDs fetches movies for the given ids, preserving the order of ids.
// Ids with no backing document are skipped, so dangling references in a
// watchlist do not break the listing.
func (r *MovieRepo) ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Movie, error) {
	if len(ids) == 0 {
		return []model.Movie{}, nil
	}
	found, err := r.list(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]model.Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	out := make([]model.Movie, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MovieRepo) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Movie, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	movies := []model.Movie{}
	if err := cur.All(ctx, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}

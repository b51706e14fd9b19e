package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/netprime/streaming-catalog/internal/model"
)

// GenreRepo provides access to the 'genres' collection.
type GenreRepo struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewGenreRepo(db *mongo.Database) *GenreRepo {
	return &GenreRepo{db: db, col: db.Collection("genres")}
}

// Create inserts a genre.  A duplicate name fails with ErrGenreExists.
func (r *GenreRepo) Create(ctx context.Context, name string, description, imageURL *string) (*model.Genre, error) {
	g := &model.Genre{
		Name:        strings.TrimSpace(name),
		Description: description,
		ImageURL:    imageURL,
		Movies:      []primitive.ObjectID{},
		CreatedAt:   time.Now().UTC(),
	}
	res, err := r.col.InsertOne(ctx, g)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrGenreExists
		}
		return nil, err
	}
	g.ID = res.InsertedID.(primitive.ObjectID)
	return g, nil
}

// List returns all genres with their cached movie id lists.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	genres := []model.Genre{}
	if err := cur.All(ctx, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// GetByID fetches a single genre.
func (r *GenreRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Genre, error) {
	var g model.Genre
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ByIDs fetches the genres for the given ids in one query.  Ids with no
// backing document are simply absent from the result.
func (r *GenreRepo) ByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Genre, error) {
	if len(ids) == 0 {
		return []model.Genre{}, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	genres := []model.Genre{}
	if err := cur.All(ctx, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// GetByName fetches a genre by exact name.
func (r *GenreRepo) GetByName(ctx context.Context, name string) (*model.Genre, error) {
	var g model.Genre
	err := r.col.FindOne(ctx, bson.M{"name": strings.TrimSpace(name)}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Update applies the given $set fields and returns the updated genre.
func (r *GenreRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Genre, error) {
	var g model.Genre
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrGenreExists
		}
		return nil, err
	}
	return &g, nil
}

// Delete removes a genre and pulls its id out of movie documents so the
// authoritative side of the relation does not dangle.
func (r *GenreRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	_, err = r.db.Collection("movies").UpdateMany(ctx, bson.M{},
		bson.M{"$pull": bson.M{"genres": id}})
	return err
}

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
	"github.com/netprime/streaming-catalog/internal/utils"
)

// UserRepo provides access to the 'users' collection.  The watchlist and
// watch-history mutations are written as guarded single-document updates
// instead of load-modify-save, so concurrent sessions cannot lose updates
// and the no-duplicates invariant holds server-side.
type UserRepo struct{ col *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo { return &UserRepo{col: db.Collection("users")} }

// noPassword excludes the password hash from every read projection.
var noPassword = bson.M{"password": 0}

// Create inserts a new user with a hashed password and returns it.
func (r *UserRepo) Create(ctx context.Context, name, email, password string, cost int) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &model.User{
		Name:           strings.TrimSpace(name),
		Email:          email,
		PasswordHash:   hash,
		Role:           model.RoleUser,
		Watchlist:      []primitive.ObjectID{},
		WatchHistory:   []model.WatchHistoryEntry{},
		FavoriteGenres: []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	u.PasswordHash = ""
	return u, nil
}

// GetByEmailWithPassword fetches a user by normalized email including the
// password hash.  Only the login path uses this; everything else reads
// through GetByID which strips the hash.
func (r *UserRepo) GetByEmailWithPassword(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a user by id without the password hash.
func (r *UserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"_id": id},
		options.FindOne().SetProjection(noPassword)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile sets the provided fields on the user document and returns
// the updated user.  Nil fields are left untouched.
func (r *UserRepo) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, profileImage *string) (*model.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if name != nil {
		set["name"] = strings.TrimSpace(*name)
	}
	if profileImage != nil {
		set["profile_image"] = *profileImage
	}
	return r.findAndSet(ctx, id, set)
}

// SetFavoriteGenres unconditionally replaces the favorite-genre list.  The
// names are not validated against the genres collection.
func (r *UserRepo) SetFavoriteGenres(ctx context.Context, id primitive.ObjectID, genres []string) (*model.User, error) {
	if genres == nil {
		genres = []string{}
	}
	return r.findAndSet(ctx, id, bson.M{"favorite_genres": genres, "updated_at": time.Now().UTC()})
}

func (r *UserRepo) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.User, error) {
	var u model.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(noPassword)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AddToWatchlist appends a movie id to the end of the user's watchlist and
// returns the updated list.  The $ne guard rejects duplicates atomically:
// a movie already present fails with ErrAlreadyInWatchlist and leaves the
// list unchanged.
func (r *UserRepo) AddToWatchlist(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var u model.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": userID, "watchlist": bson.M{"$ne": movieID}},
		bson.M{
			"$push": bson.M{"watchlist": movieID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"watchlist": 1})).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// The guard failed: either the user is missing or the movie is
		// already a member.
		n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": userID})
		if cerr != nil {
			return nil, cerr
		}
		if n == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyInWatchlist
	}
	if err != nil {
		return nil, err
	}
	return u.Watchlist, nil
}

// RemoveFromWatchlist pulls a movie id from the user's watchlist and
// returns the updated list.  Removing an absent id is a no-op that still
// succeeds, which makes the operation idempotent.
func (r *UserRepo) RemoveFromWatchlist(ctx context.Context, userID, movieID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var u model.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"watchlist": movieID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"watchlist": 1})).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u.Watchlist, nil
}

// RecordProgress upserts the watch-history entry for a movie.  An existing
// entry is updated in place (position unchanged, timestamp refreshed); a
// missing one is appended.  The $ne guard on the append keeps the
// one-entry-per-movie invariant under concurrent requests.
func (r *UserRepo) RecordProgress(ctx context.Context, userID, movieID primitive.ObjectID, progress float64) ([]model.WatchHistoryEntry, error) {
	now := time.Now().UTC()
	histOnly := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"watch_history": 1})

	setExisting := func() (*model.User, error) {
		var u model.User
		err := r.col.FindOneAndUpdate(ctx,
			bson.M{"_id": userID, "watch_history.movie_id": movieID},
			bson.M{"$set": bson.M{
				"watch_history.$.progress":   progress,
				"watch_history.$.watched_at": now,
				"updated_at":                 now,
			}},
			histOnly).Decode(&u)
		if err != nil {
			return nil, err
		}
		return &u, nil
	}

	u, err := setExisting()
	if err == nil {
		return u.WatchHistory, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	var pushed model.User
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": userID, "watch_history.movie_id": bson.M{"$ne": movieID}},
		bson.M{
			"$push": bson.M{"watch_history": model.WatchHistoryEntry{
				MovieID:   movieID,
				WatchedAt: now,
				Progress:  progress,
			}},
			"$set": bson.M{"updated_at": now},
		},
		histOnly).Decode(&pushed)
	if err == nil {
		return pushed.WatchHistory, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// Both guards failed: the user is gone, or a concurrent request
	// inserted the entry between the two updates.  In the latter case the
	// positional update now matches.
	n, cerr := r.col.CountDocuments(ctx, bson.M{"_id": userID})
	if cerr != nil {
		return nil, cerr
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	u, err = setExisting()
	if err != nil {
		return nil, err
	}
	return u.WatchHistory, nil
}

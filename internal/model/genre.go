package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Genre mirrors the 'genres' collection.  Movies is a denormalized cache of
// member ids; the authoritative side of the relation is Movie.Genres, and
// the detail endpoints recompute membership from there.
type Genre struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Name        string               `bson:"name" json:"name" validate:"required"`
	Description *string              `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL    *string              `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Movies      []primitive.ObjectID `bson:"movies" json:"movies"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
}

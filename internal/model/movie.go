package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentRatings lists the accepted values for Movie.ContentRating.
var ContentRatings = []string{"G", "PG", "PG-13", "R", "NC-17", "TV-Y", "TV-Y7", "TV-14", "TV-MA"}

// DefaultContentRating is applied when a movie is created without one.
const DefaultContentRating = "TV-MA"

// ValidContentRating reports whether s is a member of the content rating enum.
func ValidContentRating(s string) bool {
	for _, r := range ContentRatings {
		if r == s {
			return true
		}
	}
	return false
}

// Movie mirrors the 'movies' collection.  Duration is set for films,
// Seasons/Episodes for series; the unused fields stay nil.
type Movie struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id,omitempty"`
	Title          string               `bson:"title" json:"title" validate:"required"`
	Description    string               `bson:"description" json:"description" validate:"required"`
	ImageURL       string               `bson:"image_url" json:"imageUrl" validate:"required"`
	BannerImageURL *string              `bson:"banner_image_url,omitempty" json:"bannerImageUrl,omitempty"`
	Genres         []primitive.ObjectID `bson:"genres" json:"genres"`
	Year           int                  `bson:"year" json:"year" validate:"required"`
	Rating         float64              `bson:"rating" json:"rating" validate:"gte=0,lte=10"`
	Duration       *int                 `bson:"duration,omitempty" json:"duration,omitempty"`
	Seasons        *int                 `bson:"seasons,omitempty" json:"seasons,omitempty"`
	Episodes       *int                 `bson:"episodes,omitempty" json:"episodes,omitempty"`
	Director       *string              `bson:"director,omitempty" json:"director,omitempty"`
	Cast           []string             `bson:"cast" json:"cast"`
	ContentRating  string               `bson:"content_rating" json:"contentRating"`
	Featured       bool                 `bson:"featured" json:"featured"`
	Trending       bool                 `bson:"trending" json:"trending"`
	Popular        bool                 `bson:"popular" json:"popular"`
	ReleaseDate    time.Time            `bson:"release_date" json:"releaseDate"`
	VideoURL       *string              `bson:"video_url,omitempty" json:"videoUrl,omitempty"`
	MaturityRating int                  `bson:"maturity_rating" json:"maturityRating"`
	Tags           []string             `bson:"tags" json:"tags"`
	CreatedAt      time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updatedAt"`
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidContentRating(t *testing.T) {
	for _, r := range ContentRatings {
		assert.True(t, ValidContentRating(r), r)
	}
	assert.True(t, ValidContentRating(DefaultContentRating))

	for _, bad := range []string{"", "X", "tv-ma", "PG13", "TV MA"} {
		assert.False(t, ValidContentRating(bad), bad)
	}
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRating(t *testing.T) {
	for r := RatingMin; r <= RatingMax; r++ {
		assert.True(t, IsValidRating(r), "rating %d", r)
	}
	assert.False(t, IsValidRating(0))
	assert.False(t, IsValidRating(6))
	assert.False(t, IsValidRating(-1))
}

func TestIsValidReviewSort(t *testing.T) {
	assert.True(t, IsValidReviewSort(ReviewSortRecent))
	assert.True(t, IsValidReviewSort(ReviewSortHighest))
	assert.True(t, IsValidReviewSort(ReviewSortLowest))
	assert.False(t, IsValidReviewSort("oldest"))
	assert.False(t, IsValidReviewSort(""))
}

func TestProductHasStock(t *testing.T) {
	tracked := 3
	p := &Product{Stock: &tracked}
	assert.True(t, p.HasStock(3))
	assert.False(t, p.HasStock(4))

	untracked := &Product{}
	assert.True(t, untracked.HasStock(100))
}

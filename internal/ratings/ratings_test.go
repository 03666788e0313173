package ratings

import (
	"testing"

	"tourism/pkg/model"

	"github.com/stretchr/testify/assert"
)

func review(overall int, dims ...int) model.Review {
	r := model.Review{Rating: overall}
	if len(dims) == 6 {
		r.Ratings = model.ReviewRatings{
			Cleanliness:   dims[0],
			Accuracy:      dims[1],
			CheckIn:       dims[2],
			Communication: dims[3],
			Location:      dims[4],
			Value:         dims[5],
		}
	}
	return r
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)

	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.Average)
	assert.Equal(t, model.RatingBreakdown{}, s.Breakdown)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, s.Histogram)
}

func TestCompute(t *testing.T) {
	s := Compute([]model.Review{
		review(5, 5, 4, 5, 5, 4, 3),
		review(4, 4, 4, 3, 5, 4, 4),
		review(4, 3, 5, 4, 5, 5, 4),
	})

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 13.0/3, s.Average, 1e-9)
	assert.InDelta(t, 4.0, s.Breakdown.Cleanliness, 1e-9)
	assert.InDelta(t, 13.0/3, s.Breakdown.Accuracy, 1e-9)
	assert.InDelta(t, 4.0, s.Breakdown.CheckIn, 1e-9)
	assert.InDelta(t, 5.0, s.Breakdown.Communication, 1e-9)
	assert.InDelta(t, 13.0/3, s.Breakdown.Location, 1e-9)
	assert.InDelta(t, 11.0/3, s.Breakdown.Value, 1e-9)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 2, 5: 1}, s.Histogram)
}

func TestCompute_OutOfRangeRatingNotBucketed(t *testing.T) {
	s := Compute([]model.Review{review(5), review(0)})

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 2.5, s.Average)
	assert.Equal(t, 1, s.Histogram[5])
	assert.Len(t, s.Histogram, 5)
}

func TestRounded(t *testing.T) {
	s := Compute([]model.Review{
		review(5, 5, 4, 5, 5, 4, 3),
		review(4, 4, 4, 3, 5, 4, 4),
		review(4, 3, 5, 4, 5, 5, 4),
	})
	r := s.Rounded()

	assert.Equal(t, 4.3, r.Average)
	assert.Equal(t, 4.3, r.Breakdown.Accuracy)
	assert.Equal(t, 3.7, r.Breakdown.Value)
	assert.Equal(t, s.Histogram, r.Histogram)

	r.Histogram[5] = 99
	assert.Equal(t, 1, s.Histogram[5], "rounded copy must not share the histogram")
	assert.InDelta(t, 13.0/3, s.Average, 1e-9, "original stays unrounded")
}

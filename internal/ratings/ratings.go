// Package ratings aggregates review scores into the rating figures stored on
// a property. Compute is pure; the service package persists its result.
package ratings

import "tourism/pkg/model"

const (
	MinScore = 1
	MaxScore = 5
)

// Stats is the aggregate over a set of reviews. Averages are unrounded;
// call Rounded before display.
type Stats struct {
	Average   float64               `json:"average"`
	Count     int                   `json:"count"`
	Breakdown model.RatingBreakdown `json:"breakdown"`
	// Histogram counts overall ratings, keyed "1" to "5".
	Histogram map[int]int `json:"histogram"`
}

// Compute averages the overall rating and each of the six dimensions. An
// empty slice yields zero averages and an all-zero histogram.
func Compute(reviews []model.Review) Stats {
	s := Stats{Histogram: emptyHistogram()}
	if len(reviews) == 0 {
		return s
	}

	var overall float64
	var b model.RatingBreakdown
	for _, r := range reviews {
		overall += float64(r.Rating)
		b.Cleanliness += float64(r.Ratings.Cleanliness)
		b.Accuracy += float64(r.Ratings.Accuracy)
		b.CheckIn += float64(r.Ratings.CheckIn)
		b.Communication += float64(r.Ratings.Communication)
		b.Location += float64(r.Ratings.Location)
		b.Value += float64(r.Ratings.Value)
		if r.Rating >= MinScore && r.Rating <= MaxScore {
			s.Histogram[r.Rating]++
		}
	}

	n := float64(len(reviews))
	s.Count = len(reviews)
	s.Average = overall / n
	s.Breakdown = model.RatingBreakdown{
		Cleanliness:   b.Cleanliness / n,
		Accuracy:      b.Accuracy / n,
		CheckIn:       b.CheckIn / n,
		Communication: b.Communication / n,
		Location:      b.Location / n,
		Value:         b.Value / n,
	}
	return s
}

// Rounded returns a copy with every average rounded to one decimal.
func (s Stats) Rounded() Stats {
	out := s
	out.Average = model.RoundRating(s.Average)
	out.Breakdown = s.Breakdown.Rounded()
	out.Histogram = make(map[int]int, len(s.Histogram))
	for k, v := range s.Histogram {
		out.Histogram[k] = v
	}
	return out
}

func emptyHistogram() map[int]int {
	h := make(map[int]int, MaxScore)
	for score := MinScore; score <= MaxScore; score++ {
		h[score] = 0
	}
	return h
}

package search

import (
	"net/url"

	"tourism/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	ReviewSortNewest     = "newest"
	ReviewSortHelpful    = "helpful"
	ReviewSortRatingHigh = "rating_high"
	ReviewSortRatingLow  = "rating_low"
)

type ReviewFilter struct {
	Sort    string
	Page    Page
	Ignored []string
}

func ParseReviewParams(values url.Values) ReviewFilter {
	p := newParser(values)
	f := ReviewFilter{Page: p.page()}

	switch f.Sort = p.raw("sort"); f.Sort {
	case ReviewSortNewest, ReviewSortHelpful, ReviewSortRatingHigh, ReviewSortRatingLow:
	case "":
		f.Sort = ReviewSortNewest
	default:
		p.ignore("sort")
		f.Sort = ReviewSortNewest
	}

	f.Ignored = p.ignored
	return f
}

func ReviewSort(sort string) bson.D {
	var d bson.D
	switch sort {
	case ReviewSortHelpful:
		d = bson.D{{Key: "helpful_count", Value: -1}, {Key: "created_at", Value: -1}}
	case ReviewSortRatingHigh:
		d = bson.D{{Key: "rating", Value: -1}, {Key: "created_at", Value: -1}}
	case ReviewSortRatingLow:
		d = bson.D{{Key: "rating", Value: 1}, {Key: "created_at", Value: -1}}
	default:
		d = bson.D{{Key: "created_at", Value: -1}}
	}
	return append(d, bson.E{Key: "_id", Value: 1})
}

// HistoryFilter pages a user's bookings, optionally narrowed to one status.
type HistoryFilter struct {
	Status  model.BookingStatus
	Page    Page
	Ignored []string
}

func ParseHistoryParams(values url.Values) HistoryFilter {
	p := newParser(values)
	f := HistoryFilter{Page: p.page()}

	if s := model.BookingStatus(p.raw("status")); s != "" {
		if s.IsValid() {
			f.Status = s
		} else {
			p.ignore("status")
		}
	}

	f.Ignored = p.ignored
	return f
}

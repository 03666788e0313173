package search

import (
	"net/url"

	"tourism/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
)

const ServiceSortDuration = "duration"

type ServiceFilter struct {
	Query    string
	City     string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Day      *int
	Guests   *int
	Sort     string
	Page     Page
	Ignored  []string
}

func ParseServiceParams(values url.Values) ServiceFilter {
	p := newParser(values)
	f := ServiceFilter{
		Query:    sanitizer.TrimAndNormalize(values.Get("q")),
		City:     sanitizer.NormalizeCity(values.Get("city")),
		Category: sanitizer.NormalizeTag(values.Get("category")),
		MinPrice: p.float("minPrice"),
		MaxPrice: p.float("maxPrice"),
		Day:      p.int("day"),
		Guests:   p.int("guests"),
		Page:     p.page(),
	}

	if f.Day != nil && *f.Day > 6 {
		p.ignore("day")
		f.Day = nil
	}

	switch f.Sort = p.raw("sortBy"); f.Sort {
	case "", SortPriceAsc, SortPriceDesc, ServiceSortDuration:
	default:
		p.ignore("sortBy")
		f.Sort = ""
	}

	f.Ignored = p.ignored
	return f
}

func (f ServiceFilter) Applied() map[string]any {
	applied := map[string]any{}
	if f.Query != "" {
		applied["q"] = f.Query
	}
	if f.City != "" {
		applied["city"] = f.City
	}
	if f.Category != "" {
		applied["category"] = f.Category
	}
	setFloat(applied, "minPrice", f.MinPrice)
	setFloat(applied, "maxPrice", f.MaxPrice)
	setInt(applied, "day", f.Day)
	setInt(applied, "guests", f.Guests)
	if f.Sort != "" {
		applied["sortBy"] = f.Sort
	}
	return applied
}

func BuildServiceQuery(f ServiceFilter) Query {
	filter := bson.M{"is_active": true}

	if f.Query != "" {
		filter["name"] = containsPattern(f.Query)
	}
	if f.City != "" {
		filter["city"] = exactPattern(f.City)
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if r := rangeOf(f.MinPrice, f.MaxPrice); r != nil {
		filter["price"] = r
	}
	if f.Day != nil {
		filter["available_days"] = *f.Day
	}
	if f.Guests != nil {
		filter["capacity"] = bson.M{"$gte": *f.Guests}
	}

	var sort bson.D
	switch f.Sort {
	case SortPriceAsc:
		sort = bson.D{{Key: "price", Value: 1}}
	case SortPriceDesc:
		sort = bson.D{{Key: "price", Value: -1}}
	case ServiceSortDuration:
		sort = bson.D{{Key: "duration_minutes", Value: 1}}
	default:
		sort = bson.D{{Key: "created_at", Value: -1}}
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	return Query{Filter: filter, CountFilter: filter, Sort: sort}
}

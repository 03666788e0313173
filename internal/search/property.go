package search

import (
	"net/url"
	"strings"
	"time"

	"tourism/pkg/model"
	"tourism/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
)

const earthRadiusKm = 6378.1

const (
	SortPriceAsc   = "price_asc"
	SortPriceDesc  = "price_desc"
	SortRating     = "rating"
	SortPopularity = "popularity"
	SortNewest     = "newest"
	SortDistance   = "distance"
)

var propertySorts = map[string]bson.D{
	SortPriceAsc:   {{Key: "rooms.price_per_night", Value: 1}},
	SortPriceDesc:  {{Key: "rooms.price_per_night", Value: -1}},
	SortRating:     {{Key: "rating", Value: -1}, {Key: "review_count", Value: -1}},
	SortPopularity: {{Key: "review_count", Value: -1}, {Key: "rating", Value: -1}},
	SortNewest:     {{Key: "created_at", Value: -1}},
}

var defaultPropertySort = bson.D{{Key: "is_featured", Value: -1}, {Key: "rating", Value: -1}}

// featureFlags maps query parameters onto feature fields.
var featureFlags = []struct {
	param string
	field string
}{
	{"instantConfirmation", "features.instant_confirmation"},
	{"freeCancellation", "features.free_cancellation"},
	{"sustainable", "features.sustainable"},
	{"petFriendly", "features.pet_friendly"},
	{"wheelchairAccessible", "features.wheelchair_accessible"},
	{"familyFriendly", "features.family_friendly"},
}

type GeoFilter struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

type PropertyFilter struct {
	Destination   string
	CheckIn       *time.Time
	CheckOut      *time.Time
	MinPrice      *float64
	MaxPrice      *float64
	MinRating     *float64
	MaxRating     *float64
	Guests        *int
	Beds          *int
	Bathrooms     *int
	PropertyTypes []model.PropertyType
	MealPlans     []model.MealPlan
	Amenities     []string
	Features      []string // query parameter names of the requested flags
	Geo           *GeoFilter
	Sort          string
	Page          Page
	Ignored       []string
}

func ParsePropertyParams(values url.Values) PropertyFilter {
	p := newParser(values)
	f := PropertyFilter{
		Destination: sanitizer.TrimAndNormalize(values.Get("destination")),
		CheckIn:     p.date("checkIn"),
		CheckOut:    p.date("checkOut"),
		MinPrice:    p.float("minPrice"),
		MaxPrice:    p.float("maxPrice"),
		Guests:      p.firstInt("guests", "capacity"),
		Beds:        p.int("beds"),
		Bathrooms:   p.int("bathrooms"),
		Amenities:   sanitizer.SplitCSV(values.Get("amenities"), sanitizer.NormalizeTag),
		Page:        p.page(),
	}

	if p.raw("minRating") != "" {
		f.MinRating = p.rating("minRating")
	} else {
		f.MinRating = p.rating("rating")
	}
	f.MaxRating = p.rating("maxRating")

	if f.CheckIn != nil && f.CheckOut != nil && !f.CheckOut.After(*f.CheckIn) {
		p.ignore("checkOut")
		f.CheckOut = nil
	}

	for _, raw := range sanitizer.SplitCSV(values.Get("propertyType"), strings.ToLower) {
		if t := model.PropertyType(raw); t.IsValid() {
			f.PropertyTypes = append(f.PropertyTypes, t)
		} else {
			p.ignore("propertyType")
		}
	}

	mealParam := "mealPlan"
	if p.raw(mealParam) == "" {
		mealParam = "mealPlans"
	}
	for _, raw := range sanitizer.SplitCSV(values.Get(mealParam), strings.ToLower) {
		if m := model.MealPlan(raw); m.IsValid() {
			f.MealPlans = append(f.MealPlans, m)
		} else {
			p.ignore(mealParam)
		}
	}

	for _, flag := range featureFlags {
		if p.flag(flag.param) {
			f.Features = append(f.Features, flag.param)
		}
	}

	f.Geo = parseGeo(p)

	f.Sort = p.raw("sortBy")
	if f.Sort == "" {
		f.Sort = p.raw("sort")
	}
	if f.Sort != "" {
		_, known := propertySorts[f.Sort]
		if !known && f.Sort != SortDistance {
			p.ignore("sortBy")
			f.Sort = ""
		}
	}

	f.Ignored = p.ignored
	return f
}

// rating reads a score on the 0-5 scale.
func (p *parser) rating(key string) *float64 {
	v := p.float(key)
	if v != nil && *v > 5 {
		p.ignore(key)
		return nil
	}
	return v
}

// parseGeo requires lat, lng and radius together; a partial set is ignored.
func parseGeo(p *parser) *GeoFilter {
	lat := p.coordinate("lat", 90)
	lng := p.coordinate("lng", 180)
	radius := p.float("radius")
	if radius != nil && *radius == 0 {
		p.ignore("radius")
		radius = nil
	}

	if lat != nil && lng != nil && radius != nil {
		return &GeoFilter{Lat: *lat, Lng: *lng, RadiusKm: *radius}
	}
	for _, part := range []struct {
		key string
		v   *float64
	}{{"lat", lat}, {"lng", lng}, {"radius", radius}} {
		if part.v != nil {
			p.ignore(part.key)
		}
	}
	return nil
}

// Nights returns the stay length requested by the filter, or 0 when the
// search is not dated.
func (f PropertyFilter) Nights() int {
	if f.CheckIn == nil || f.CheckOut == nil {
		return 0
	}
	hours := f.CheckOut.Sub(*f.CheckIn).Hours()
	nights := int(hours / 24)
	if float64(nights*24) < hours {
		nights++
	}
	return nights
}

// Applied reports the filters that made it into the query, keyed by their
// query parameter names.
func (f PropertyFilter) Applied() map[string]any {
	applied := map[string]any{}
	if f.Destination != "" {
		applied["destination"] = f.Destination
	}
	if f.CheckIn != nil {
		applied["checkIn"] = f.CheckIn.Format(time.DateOnly)
	}
	if f.CheckOut != nil {
		applied["checkOut"] = f.CheckOut.Format(time.DateOnly)
	}
	setFloat(applied, "minPrice", f.MinPrice)
	setFloat(applied, "maxPrice", f.MaxPrice)
	setFloat(applied, "minRating", f.MinRating)
	setFloat(applied, "maxRating", f.MaxRating)
	setInt(applied, "guests", f.Guests)
	setInt(applied, "beds", f.Beds)
	setInt(applied, "bathrooms", f.Bathrooms)
	if len(f.PropertyTypes) > 0 {
		applied["propertyType"] = f.PropertyTypes
	}
	if len(f.MealPlans) > 0 {
		applied["mealPlan"] = f.MealPlans
	}
	if len(f.Amenities) > 0 {
		applied["amenities"] = f.Amenities
	}
	for _, flag := range f.Features {
		applied[flag] = true
	}
	if f.Geo != nil {
		applied["lat"] = f.Geo.Lat
		applied["lng"] = f.Geo.Lng
		applied["radius"] = f.Geo.RadiusKm
	}
	if f.Sort != "" {
		applied["sortBy"] = f.Sort
	}
	return applied
}

func setFloat(m map[string]any, key string, v *float64) {
	if v != nil {
		m[key] = *v
	}
}

func setInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}

// Query is a ready-to-run predicate. CountFilter is Filter with any
// $nearSphere replaced by $geoWithin, since countDocuments rejects the
// former. Sort is nil when results are ordered by distance.
type Query struct {
	Filter      bson.M
	CountFilter bson.M
	Sort        bson.D
}

func BuildPropertyQuery(f PropertyFilter) Query {
	filter := bson.M{"is_active": true}

	if f.Destination != "" {
		pattern := containsPattern(f.Destination)
		filter["$or"] = bson.A{
			bson.M{"address.city": pattern},
			bson.M{"address.state": pattern},
			bson.M{"name": pattern},
		}
	}

	room := bson.M{}
	if r := rangeOf(f.MinPrice, f.MaxPrice); r != nil {
		room["price_per_night"] = r
	}
	if f.Guests != nil {
		room["capacity"] = bson.M{"$gte": *f.Guests}
	}
	if f.Beds != nil {
		room["beds"] = bson.M{"$gte": *f.Beds}
	}
	if f.Bathrooms != nil {
		room["bathrooms"] = bson.M{"$gte": *f.Bathrooms}
	}
	if len(room) > 0 {
		filter["rooms"] = bson.M{"$elemMatch": room}
	}

	if r := rangeOf(f.MinRating, f.MaxRating); r != nil {
		filter["rating"] = r
	}
	if len(f.PropertyTypes) > 0 {
		filter["property_type"] = bson.M{"$in": f.PropertyTypes}
	}
	if len(f.MealPlans) > 0 {
		filter["meal_plans"] = bson.M{"$in": f.MealPlans}
	}
	if len(f.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": f.Amenities}
	}
	for _, param := range f.Features {
		for _, flag := range featureFlags {
			if flag.param == param {
				filter[flag.field] = true
			}
		}
	}

	q := Query{Filter: filter, CountFilter: copyFilter(filter)}

	if f.Geo != nil {
		q.CountFilter["address.location"] = geoWithin(*f.Geo)
		if f.Sort == "" || f.Sort == SortDistance {
			q.Filter["address.location"] = nearSphere(*f.Geo)
			return q
		}
		q.Filter["address.location"] = geoWithin(*f.Geo)
	}

	sort, ok := propertySorts[f.Sort]
	if !ok {
		sort = defaultPropertySort
	}
	q.Sort = append(append(bson.D{}, sort...), bson.E{Key: "_id", Value: 1})
	return q
}

func nearSphere(g GeoFilter) bson.M {
	return bson.M{"$nearSphere": bson.M{
		"$geometry":    bson.M{"type": model.GeoPointType, "coordinates": bson.A{g.Lng, g.Lat}},
		"$maxDistance": g.RadiusKm * 1000,
	}}
}

func geoWithin(g GeoFilter) bson.M {
	return bson.M{"$geoWithin": bson.M{
		"$centerSphere": bson.A{bson.A{g.Lng, g.Lat}, g.RadiusKm / earthRadiusKm},
	}}
}

func copyFilter(src bson.M) bson.M {
	dst := make(bson.M, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

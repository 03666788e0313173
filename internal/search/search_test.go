package search

import (
	"math"
	"net/url"
	"testing"
	"time"

	"tourism/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return v
}

func TestBuildPropertyQuery_FiltersAreConjunctive(t *testing.T) {
	f := ParsePropertyParams(mustQuery(t, "minPrice=100&propertyType=resort"))
	q := BuildPropertyQuery(f)

	assert.Equal(t, true, q.Filter["is_active"])
	assert.Equal(t, bson.M{"$in": []model.PropertyType{model.PropertyTypeResort}}, q.Filter["property_type"])
	assert.Equal(t, bson.M{"$elemMatch": bson.M{"price_per_night": bson.M{"$gte": 100.0}}}, q.Filter["rooms"])
	assert.Empty(t, f.Ignored)
}

func TestBuildPropertyQuery_AmenitiesAllTypesAny(t *testing.T) {
	f := ParsePropertyParams(mustQuery(t, "amenities=WiFi,pool&propertyType=hotel,villa"))
	q := BuildPropertyQuery(f)

	assert.Equal(t, bson.M{"$all": []string{"wifi", "pool"}}, q.Filter["amenities"])
	assert.Equal(t, bson.M{"$in": []model.PropertyType{model.PropertyTypeHotel, model.PropertyTypeVilla}}, q.Filter["property_type"])
}

func TestBuildPropertyQuery_RoomBoundsShareOneElemMatch(t *testing.T) {
	f := ParsePropertyParams(mustQuery(t, "minPrice=50&maxPrice=200&guests=3&beds=2&bathrooms=1"))
	q := BuildPropertyQuery(f)

	assert.Equal(t, bson.M{"$elemMatch": bson.M{
		"price_per_night": bson.M{"$gte": 50.0, "$lte": 200.0},
		"capacity":        bson.M{"$gte": 3},
		"beds":            bson.M{"$gte": 2},
		"bathrooms":       bson.M{"$gte": 1},
	}}, q.Filter["rooms"])
}

func TestParsePropertyParams_InvalidValuesIgnored(t *testing.T) {
	f := ParsePropertyParams(mustQuery(t, "minPrice=abc&maxPrice=-5&rating=9&propertyType=castle,hotel&beds=two&sortBy=cheapest"))
	q := BuildPropertyQuery(f)

	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	assert.Nil(t, f.MinRating)
	assert.Nil(t, f.Beds)
	assert.Equal(t, []model.PropertyType{model.PropertyTypeHotel}, f.PropertyTypes)
	assert.ElementsMatch(t, []string{"minPrice", "maxPrice", "rating", "propertyType", "beds", "sortBy"}, f.Ignored)

	_, hasRooms := q.Filter["rooms"]
	_, hasRating := q.Filter["rating"]
	assert.False(t, hasRooms)
	assert.False(t, hasRating)
	assert.Equal(t, bson.D{{Key: "is_featured", Value: -1}, {Key: "rating", Value: -1}, {Key: "_id", Value: 1}}, q.Sort)
}

func TestBuildPropertyQuery_DestinationIsEscaped(t *testing.T) {
	q := BuildPropertyQuery(ParsePropertyParams(mustQuery(t, "destination=St.+Ives")))

	pattern := bson.M{"$regex": `St\. Ives`, "$options": "i"}
	assert.Equal(t, bson.A{
		bson.M{"address.city": pattern},
		bson.M{"address.state": pattern},
		bson.M{"name": pattern},
	}, q.Filter["$or"])
}

func TestBuildPropertyQuery_FeatureFlags(t *testing.T) {
	q := BuildPropertyQuery(ParsePropertyParams(mustQuery(t, "petFriendly=true&sustainable=1&freeCancellation=no")))

	assert.Equal(t, true, q.Filter["features.pet_friendly"])
	assert.Equal(t, true, q.Filter["features.sustainable"])
	_, has := q.Filter["features.free_cancellation"]
	assert.False(t, has)
}

func TestBuildPropertyQuery_Geo(t *testing.T) {
	t.Run("implicit distance order", func(t *testing.T) {
		q := BuildPropertyQuery(ParsePropertyParams(mustQuery(t, "lat=32.08&lng=34.78&radius=10")))

		near := q.Filter["address.location"].(bson.M)["$nearSphere"].(bson.M)
		assert.Equal(t, 10000.0, near["$maxDistance"])
		assert.Equal(t, bson.A{34.78, 32.08}, near["$geometry"].(bson.M)["coordinates"])
		assert.Nil(t, q.Sort)

		_, ok := q.CountFilter["address.location"].(bson.M)["$geoWithin"]
		assert.True(t, ok)
	})

	t.Run("explicit sort overrides distance", func(t *testing.T) {
		q := BuildPropertyQuery(ParsePropertyParams(mustQuery(t, "lat=32.08&lng=34.78&radius=10&sortBy=price_asc")))

		_, ok := q.Filter["address.location"].(bson.M)["$geoWithin"]
		assert.True(t, ok)
		assert.Equal(t, bson.D{{Key: "rooms.price_per_night", Value: 1}, {Key: "_id", Value: 1}}, q.Sort)
	})

	t.Run("partial coordinates ignored", func(t *testing.T) {
		f := ParsePropertyParams(mustQuery(t, "lat=32.08&radius=10"))
		q := BuildPropertyQuery(f)

		assert.Nil(t, f.Geo)
		assert.Equal(t, []string{"lat", "radius"}, f.Ignored)
		_, ok := q.Filter["address.location"]
		assert.False(t, ok)
	})
}

func TestBuildPropertyQuery_Sorts(t *testing.T) {
	tests := []struct {
		sort string
		want bson.D
	}{
		{"price_desc", bson.D{{Key: "rooms.price_per_night", Value: -1}}},
		{"rating", bson.D{{Key: "rating", Value: -1}, {Key: "review_count", Value: -1}}},
		{"popularity", bson.D{{Key: "review_count", Value: -1}, {Key: "rating", Value: -1}}},
		{"newest", bson.D{{Key: "created_at", Value: -1}}},
		{"", defaultPropertySort},
		{"distance", defaultPropertySort},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			q := BuildPropertyQuery(ParsePropertyParams(url.Values{"sortBy": {tt.sort}}))
			assert.Equal(t, append(append(bson.D{}, tt.want...), bson.E{Key: "_id", Value: 1}), q.Sort)
		})
	}
}

func TestPropertyFilter_NightsAndApplied(t *testing.T) {
	f := ParsePropertyParams(mustQuery(t, "checkIn=2025-06-01&checkOut=2025-06-04&guests=2&amenities=pool"))

	assert.Equal(t, 3, f.Nights())
	applied := f.Applied()
	assert.Equal(t, "2025-06-01", applied["checkIn"])
	assert.Equal(t, 2, applied["guests"])
	assert.Equal(t, []string{"pool"}, applied["amenities"])

	reversed := ParsePropertyParams(mustQuery(t, "checkIn=2025-06-04&checkOut=2025-06-01"))
	assert.Equal(t, 0, reversed.Nights())
	assert.Contains(t, reversed.Ignored, "checkOut")
}

func TestPagination(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 20, 5},
	}
	for _, tt := range tests {
		got := NewPage(1, tt.limit).Pagination(tt.total)
		assert.Equal(t, tt.want, got.Pages, "total=%d limit=%d", tt.total, tt.limit)
	}

	p := ParsePropertyParams(mustQuery(t, "page=3&limit=15")).Page
	assert.Equal(t, Page{Page: 3, Limit: 15, Skip: 30}, p)

	p = ParsePropertyParams(mustQuery(t, "page=0&limit=1000")).Page
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.Limit)

	p = ParsePropertyParams(mustQuery(t, "page=9223372036854775807&limit=100")).Page
	assert.Equal(t, 9223372036854775807, p.Page)
	assert.Equal(t, int64(math.MaxInt64), p.Skip)
	assert.Equal(t, 1, p.Pagination(21).Pages)

	p = NewPage(math.MaxInt64/100+1, 100)
	assert.GreaterOrEqual(t, p.Skip, int64(0))
}

func TestBuildFlightQuery(t *testing.T) {
	f := ParseFlightParams(mustQuery(t, "from=tlv&to=Paris&date=2025-07-10&class=business&passengers=2&maxPrice=900&sortBy=price"))
	q := BuildFlightQuery(f)

	assert.Equal(t, bson.A{
		bson.M{"$or": bson.A{
			bson.M{"departure.airport": "TLV"},
			bson.M{"departure.city": bson.M{"$regex": "tlv", "$options": "i"}},
		}},
		bson.M{"arrival.city": bson.M{"$regex": "Paris", "$options": "i"}},
	}, q.Filter["$and"])

	day := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)}, q.Filter["departure.time"])
	assert.Equal(t, bson.M{"$gte": 2}, q.Filter["fares.business.seats_available"])
	assert.Equal(t, bson.M{"$lte": 900.0}, q.Filter["fares.business.price"])
	assert.Equal(t, bson.D{{Key: "fares.business.price", Value: 1}, {Key: "_id", Value: 1}}, q.Sort)
}

func TestParseFlightParams_Defaults(t *testing.T) {
	f := ParseFlightParams(mustQuery(t, "class=premium&status=scheduled,lost"))
	q := BuildFlightQuery(f)

	assert.Equal(t, model.FareEconomy, f.Class)
	assert.Equal(t, []model.FlightStatus{model.FlightScheduled}, f.Statuses)
	assert.ElementsMatch(t, []string{"class", "status"}, f.Ignored)
	assert.Equal(t, bson.D{{Key: "departure.time", Value: 1}, {Key: "_id", Value: 1}}, q.Sort)
}

func TestBuildServiceQuery(t *testing.T) {
	f := ParseServiceParams(mustQuery(t, "city=lisbon&category=Food+Tour&day=6&guests=4&maxPrice=80&sortBy=duration"))
	q := BuildServiceQuery(f)

	assert.Equal(t, bson.M{"$regex": "^lisbon$", "$options": "i"}, q.Filter["city"])
	assert.Equal(t, "food tour", q.Filter["category"])
	assert.Equal(t, 6, q.Filter["available_days"])
	assert.Equal(t, bson.M{"$gte": 4}, q.Filter["capacity"])
	assert.Equal(t, bson.M{"$lte": 80.0}, q.Filter["price"])
	assert.Equal(t, bson.D{{Key: "duration_minutes", Value: 1}, {Key: "_id", Value: 1}}, q.Sort)

	bad := ParseServiceParams(mustQuery(t, "day=9"))
	assert.Nil(t, bad.Day)
	assert.Equal(t, []string{"day"}, bad.Ignored)
}

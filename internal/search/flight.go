package search

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"tourism/pkg/model"
	"tourism/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
)

var airportCode = regexp.MustCompile(`^[A-Za-z]{3}$`)

const (
	FlightSortPrice     = "price"
	FlightSortDuration  = "duration"
	FlightSortDeparture = "departure"
)

type FlightFilter struct {
	From       string
	To         string
	Date       *time.Time
	Class      model.FareClass
	Passengers *int
	MaxPrice   *float64
	Airline    string
	Statuses   []model.FlightStatus
	Sort       string
	Page       Page
	Ignored    []string
}

func ParseFlightParams(values url.Values) FlightFilter {
	p := newParser(values)
	f := FlightFilter{
		From:       sanitizer.TrimAndNormalize(values.Get("from")),
		To:         sanitizer.TrimAndNormalize(values.Get("to")),
		Date:       p.date("date"),
		Class:      model.FareEconomy,
		Passengers: p.int("passengers"),
		MaxPrice:   p.float("maxPrice"),
		Airline:    sanitizer.TrimAndNormalize(values.Get("airline")),
		Page:       p.page(),
	}

	if raw := strings.ToLower(p.raw("class")); raw != "" {
		if c := model.FareClass(raw); c.IsValid() {
			f.Class = c
		} else {
			p.ignore("class")
		}
	}
	if f.Passengers != nil && *f.Passengers == 0 {
		p.ignore("passengers")
		f.Passengers = nil
	}

	for _, raw := range sanitizer.SplitCSV(values.Get("status"), strings.ToLower) {
		if s := model.FlightStatus(raw); s.IsValid() {
			f.Statuses = append(f.Statuses, s)
		} else {
			p.ignore("status")
		}
	}

	switch f.Sort = p.raw("sortBy"); f.Sort {
	case "", FlightSortPrice, FlightSortDuration, FlightSortDeparture:
	default:
		p.ignore("sortBy")
		f.Sort = ""
	}

	f.Ignored = p.ignored
	return f
}

func (f FlightFilter) Applied() map[string]any {
	applied := map[string]any{"class": f.Class}
	if f.From != "" {
		applied["from"] = f.From
	}
	if f.To != "" {
		applied["to"] = f.To
	}
	if f.Date != nil {
		applied["date"] = f.Date.Format(time.DateOnly)
	}
	setInt(applied, "passengers", f.Passengers)
	setFloat(applied, "maxPrice", f.MaxPrice)
	if f.Airline != "" {
		applied["airline"] = f.Airline
	}
	if len(f.Statuses) > 0 {
		applied["status"] = f.Statuses
	}
	if f.Sort != "" {
		applied["sortBy"] = f.Sort
	}
	return applied
}

// legMatch matches a leg by airport code or by city name.
func legMatch(leg, value string) bson.M {
	city := bson.M{leg + ".city": containsPattern(value)}
	if airportCode.MatchString(value) {
		return bson.M{"$or": bson.A{
			bson.M{leg + ".airport": strings.ToUpper(value)},
			city,
		}}
	}
	return city
}

func BuildFlightQuery(f FlightFilter) Query {
	filter := bson.M{}
	fare := "fares." + string(f.Class)

	var legs bson.A
	if f.From != "" {
		legs = append(legs, legMatch("departure", f.From))
	}
	if f.To != "" {
		legs = append(legs, legMatch("arrival", f.To))
	}
	if len(legs) > 0 {
		filter["$and"] = legs
	}

	if f.Date != nil {
		day := time.Date(f.Date.Year(), f.Date.Month(), f.Date.Day(), 0, 0, 0, 0, time.UTC)
		filter["departure.time"] = bson.M{"$gte": day, "$lt": day.Add(24 * time.Hour)}
	}

	if f.Passengers != nil {
		filter[fare+".seats_available"] = bson.M{"$gte": *f.Passengers}
	} else if f.Class != model.FareEconomy {
		filter[fare] = bson.M{"$exists": true}
	}
	if f.MaxPrice != nil {
		filter[fare+".price"] = bson.M{"$lte": *f.MaxPrice}
	}
	if f.Airline != "" {
		filter["airline"] = containsPattern(f.Airline)
	}
	if len(f.Statuses) > 0 {
		filter["status"] = bson.M{"$in": f.Statuses}
	}

	var sort bson.D
	switch f.Sort {
	case FlightSortPrice:
		sort = bson.D{{Key: fare + ".price", Value: 1}}
	case FlightSortDuration:
		sort = bson.D{{Key: "duration_minutes", Value: 1}}
	default:
		sort = bson.D{{Key: "departure.time", Value: 1}}
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	return Query{Filter: filter, CountFilter: filter, Sort: sort}
}

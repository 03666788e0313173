package model

import (
	"math"
	"time"
)

const GeoPointType = "Point"

// GeoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates" validate:"len=2"`
}

func NewGeoPoint(lng, lat float64) *GeoPoint {
	return &GeoPoint{Type: GeoPointType, Coordinates: []float64{lng, lat}}
}

type Address struct {
	Street     string    `json:"street" bson:"street" validate:"omitempty,max=200"`
	City       string    `json:"city" bson:"city" validate:"required,min=2,max=100"`
	State      string    `json:"state,omitempty" bson:"state,omitempty" validate:"omitempty,max=100"`
	Country    string    `json:"country" bson:"country" validate:"required,min=2,max=100"`
	PostalCode string    `json:"postalCode,omitempty" bson:"postal_code,omitempty" validate:"omitempty,max=20"`
	Location   *GeoPoint `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty"`
}

type Room struct {
	ID            string   `json:"id" bson:"id"`
	Type          string   `json:"type" bson:"type" validate:"required,min=2,max=60"`
	Description   string   `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	Capacity      int      `json:"capacity" bson:"capacity" validate:"required,min=1,max=50"`
	Beds          int      `json:"beds" bson:"beds" validate:"min=0,max=50"`
	Bathrooms     int      `json:"bathrooms" bson:"bathrooms" validate:"min=0,max=50"`
	PricePerNight float64  `json:"pricePerNight" bson:"price_per_night" validate:"gt=0"`
	Currency      string   `json:"currency" bson:"currency" validate:"required,iso4217"`
	Available     bool     `json:"available" bson:"available"`
	Units         int      `json:"units" bson:"units" validate:"min=0,max=10000"`
	Amenities     []string `json:"amenities,omitempty" bson:"amenities,omitempty" validate:"omitempty,max=50,dive,required"`
}

type Features struct {
	InstantConfirmation  bool `json:"instantConfirmation" bson:"instant_confirmation"`
	FreeCancellation     bool `json:"freeCancellation" bson:"free_cancellation"`
	Sustainable          bool `json:"sustainable" bson:"sustainable"`
	PetFriendly          bool `json:"petFriendly" bson:"pet_friendly"`
	WheelchairAccessible bool `json:"wheelchairAccessible" bson:"wheelchair_accessible"`
	FamilyFriendly       bool `json:"familyFriendly" bson:"family_friendly"`
}

type RatingBreakdown struct {
	Cleanliness   float64 `json:"cleanliness" bson:"cleanliness"`
	Accuracy      float64 `json:"accuracy" bson:"accuracy"`
	CheckIn       float64 `json:"checkIn" bson:"check_in"`
	Communication float64 `json:"communication" bson:"communication"`
	Location      float64 `json:"location" bson:"location"`
	Value         float64 `json:"value" bson:"value"`
}

// RoundRating rounds an average to one decimal for display.
func RoundRating(v float64) float64 {
	return math.Round(v*10) / 10
}

func (b RatingBreakdown) Rounded() RatingBreakdown {
	return RatingBreakdown{
		Cleanliness:   RoundRating(b.Cleanliness),
		Accuracy:      RoundRating(b.Accuracy),
		CheckIn:       RoundRating(b.CheckIn),
		Communication: RoundRating(b.Communication),
		Location:      RoundRating(b.Location),
		Value:         RoundRating(b.Value),
	}
}

type Property struct {
	ID                 string             `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID            string             `json:"ownerId" bson:"owner_id" validate:"required,mongodb"`
	Name               string             `json:"name" bson:"name" validate:"required,min=2,max=150"`
	Description        string             `json:"description" bson:"description" validate:"omitempty,max=5000"`
	PropertyType       PropertyType       `json:"propertyType" bson:"property_type" validate:"required,property_type"`
	Address            Address            `json:"address" bson:"address" validate:"required"`
	Rooms              []Room             `json:"rooms" bson:"rooms" validate:"max=200,dive"`
	Amenities          []string           `json:"amenities" bson:"amenities" validate:"max=100,dive,required"`
	MealPlans          []MealPlan         `json:"mealPlans,omitempty" bson:"meal_plans,omitempty" validate:"omitempty,dive,meal_plan"`
	Features           Features           `json:"features" bson:"features"`
	Images             []string           `json:"images,omitempty" bson:"images,omitempty" validate:"omitempty,max=50,dive,url"`
	Rating             float64            `json:"rating" bson:"rating" validate:"min=0,max=5"`
	ReviewCount        int                `json:"reviewCount" bson:"review_count" validate:"min=0"`
	RatingBreakdown    RatingBreakdown    `json:"ratingBreakdown" bson:"rating_breakdown"`
	CancellationPolicy CancellationPolicy `json:"cancellationPolicy" bson:"cancellation_policy" validate:"required,cancellation_policy"`
	IsActive           bool               `json:"isActive" bson:"is_active"`
	IsFeatured         bool               `json:"isFeatured" bson:"is_featured"`
	CreatedAt          time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updated_at"`
}

func (p *Property) Room(roomID string) *Room {
	for i := range p.Rooms {
		if p.Rooms[i].ID == roomID {
			return &p.Rooms[i]
		}
	}
	return nil
}

// ForDisplay returns a shallow copy with rating averages rounded. Stored
// averages stay unrounded so filters compare exact values.
func (p *Property) ForDisplay() *Property {
	out := *p
	out.Rating = RoundRating(p.Rating)
	out.RatingBreakdown = p.RatingBreakdown.Rounded()
	return &out
}

// PropertyUpdate carries the fields a host may change. Ratings and ownership
// are maintained by the system and cannot be set here.
type PropertyUpdate struct {
	Name               *string             `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Description        *string             `json:"description,omitempty" validate:"omitempty,max=5000"`
	PropertyType       *PropertyType       `json:"propertyType,omitempty" validate:"omitempty,property_type"`
	Address            *Address            `json:"address,omitempty"`
	Rooms              []Room              `json:"rooms,omitempty" validate:"omitempty,max=200,dive"`
	Amenities          []string            `json:"amenities,omitempty" validate:"omitempty,max=100,dive,required"`
	MealPlans          []MealPlan          `json:"mealPlans,omitempty" validate:"omitempty,dive,meal_plan"`
	Features           *Features           `json:"features,omitempty"`
	Images             []string            `json:"images,omitempty" validate:"omitempty,max=50,dive,url"`
	CancellationPolicy *CancellationPolicy `json:"cancellationPolicy,omitempty" validate:"omitempty,cancellation_policy"`
	IsFeatured         *bool               `json:"isFeatured,omitempty"`
}

// OwnerSummary is the public projection of a property's host.
type OwnerSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar,omitempty"`
}

type PropertyDetails struct {
	*Property
	Owner *OwnerSummary `json:"owner,omitempty"`
}

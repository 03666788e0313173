package model

import "time"

type FlightLeg struct {
	Airport string    `json:"airport" bson:"airport" validate:"required,len=3,alpha"`
	City    string    `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Country string    `json:"country" bson:"country" validate:"required,min=2,max=100"`
	Time    time.Time `json:"time" bson:"time" validate:"required"`
}

type Fare struct {
	Price          float64 `json:"price" bson:"price" validate:"gt=0"`
	Currency       string  `json:"currency" bson:"currency" validate:"required,iso4217"`
	SeatsAvailable int     `json:"seatsAvailable" bson:"seats_available" validate:"min=0"`
	BaggageKg      int     `json:"baggageKg" bson:"baggage_kg" validate:"min=0,max=100"`
}

type Fares struct {
	Economy  Fare  `json:"economy" bson:"economy" validate:"required"`
	Business *Fare `json:"business,omitempty" bson:"business,omitempty"`
	First    *Fare `json:"first,omitempty" bson:"first,omitempty"`
}

// ForClass returns the fare bucket of the given class, or nil when the flight
// does not sell it.
func (f *Fares) ForClass(class FareClass) *Fare {
	switch class {
	case FareEconomy:
		return &f.Economy
	case FareBusiness:
		return f.Business
	case FareFirst:
		return f.First
	}
	return nil
}

type Flight struct {
	ID              string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FlightNumber    string       `json:"flightNumber" bson:"flight_number" validate:"required,min=3,max=10,alphanum"`
	Airline         string       `json:"airline" bson:"airline" validate:"required,min=2,max=100"`
	Departure       FlightLeg    `json:"departure" bson:"departure" validate:"required"`
	Arrival         FlightLeg    `json:"arrival" bson:"arrival" validate:"required"`
	DurationMinutes int          `json:"durationMinutes" bson:"duration_minutes" validate:"gt=0"`
	Fares           Fares        `json:"fares" bson:"fares" validate:"required"`
	Status          FlightStatus `json:"status" bson:"status" validate:"omitempty,flight_status"`
	CreatedAt       time.Time    `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time    `json:"updatedAt" bson:"updated_at"`
}

type FlightStatusUpdate struct {
	Status FlightStatus `json:"status" validate:"required,flight_status"`
}

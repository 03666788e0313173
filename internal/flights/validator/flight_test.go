package validator

import (
	"testing"
	"time"

	"tourism/pkg/logger"
	"tourism/pkg/model"
	"tourism/pkg/validation"
)

func validFlight() *model.Flight {
	dep := time.Date(2025, 7, 10, 8, 0, 0, 0, time.UTC)
	return &model.Flight{
		FlightNumber:    "TP1234",
		Airline:         "TAP",
		Departure:       model.FlightLeg{Airport: "LIS", City: "Lisbon", Country: "Portugal", Time: dep},
		Arrival:         model.FlightLeg{Airport: "CDG", City: "Paris", Country: "France", Time: dep.Add(150 * time.Minute)},
		DurationMinutes: 150,
		Fares: model.Fares{
			Economy:  model.Fare{Price: 120, Currency: "EUR", SeatsAvailable: 150, BaggageKg: 23},
			Business: &model.Fare{Price: 480, Currency: "EUR", SeatsAvailable: 12, BaggageKg: 32},
		},
		Status: model.FlightScheduled,
	}
}

func TestFlightValidator_Validate(t *testing.T) {
	fv := NewFlightValidator(validation.New(logger.Discard()))

	tests := []struct {
		name    string
		mutate  func(f *model.Flight)
		wantErr bool
	}{
		{"valid", func(f *model.Flight) {}, false},
		{"same airports", func(f *model.Flight) { f.Arrival.Airport = "lis" }, true},
		{"arrival before departure", func(f *model.Flight) { f.Arrival.Time = f.Departure.Time.Add(-time.Hour) }, true},
		{"bad business fare", func(f *model.Flight) { f.Fares.Business.Price = 0 }, true},
		{"bad airport code", func(f *model.Flight) { f.Departure.Airport = "LISB" }, true},
		{"unknown status", func(f *model.Flight) { f.Status = "lost" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validFlight()
			tt.mutate(f)
			err := fv.Validate(f)
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

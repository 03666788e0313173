package validator

import (
	"errors"
	"testing"

	"tourism/pkg/logger"
	"tourism/pkg/model"
	"tourism/pkg/validation"
)

func validProperty() *model.Property {
	return &model.Property{
		OwnerID:      "65f1c0a2b3c4d5e6f7a8b9c0",
		Name:         "Harbour View",
		PropertyType: model.PropertyTypeHotel,
		Address: model.Address{
			City:     "Lisbon",
			Country:  "Portugal",
			Location: model.NewGeoPoint(-9.14, 38.72),
		},
		Rooms: []model.Room{
			{ID: "r1", Type: "double", Capacity: 2, Beds: 1, PricePerNight: 120, Currency: "EUR", Available: true, Units: 4},
			{ID: "r2", Type: "suite", Capacity: 4, Beds: 2, PricePerNight: 260, Currency: "EUR", Available: true, Units: 1},
		},
		Amenities:          []string{"wifi"},
		CancellationPolicy: model.CancellationModerate,
	}
}

func TestPropertyValidator_Validate(t *testing.T) {
	pv := NewPropertyValidator(validation.New(logger.Discard()))

	tests := []struct {
		name    string
		mutate  func(p *model.Property)
		wantErr bool
	}{
		{"valid", func(p *model.Property) {}, false},
		{"missing name", func(p *model.Property) { p.Name = "" }, true},
		{"unknown type", func(p *model.Property) { p.PropertyType = "castle" }, true},
		{"bad coordinates", func(p *model.Property) { p.Address.Location = model.NewGeoPoint(200, 10) }, true},
		{"duplicate room id", func(p *model.Property) { p.Rooms[1].ID = "r1" }, true},
		{"mixed currencies", func(p *model.Property) { p.Rooms[1].Currency = "USD" }, true},
		{"non-positive price", func(p *model.Property) { p.Rooms[0].PricePerNight = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProperty()
			tt.mutate(p)
			err := pv.Validate(p)
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				var verrs validation.ValidationErrors
				if !errors.As(err, &verrs) {
					t.Errorf("expected ValidationErrors, got %T", err)
				}
			}
		})
	}
}

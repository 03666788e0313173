package validator

import (
	"testing"
	"time"

	"tourism/pkg/logger"
	"tourism/pkg/model"
	"tourism/pkg/validation"
)

func newTestValidator(now time.Time) *BookingValidator {
	bv := NewBookingValidator(validation.New(logger.Discard()))
	bv.now = func() time.Time { return now }
	return bv
}

func TestBookingValidator_Validate(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	checkIn := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 3)
	sameDay := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     model.BookingRequest
		wantErr bool
	}{
		{
			name: "valid property stay",
			req: model.BookingRequest{
				ResourceType: model.ResourceProperty, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				RoomID: "r1", CheckIn: checkIn, CheckOut: &checkOut, Guests: 2,
			},
		},
		{
			name: "check in today",
			req: model.BookingRequest{
				ResourceType: model.ResourceProperty, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				RoomID: "r1", CheckIn: sameDay, CheckOut: &checkOut, Guests: 2,
			},
		},
		{
			name: "property without room",
			req: model.BookingRequest{
				ResourceType: model.ResourceProperty, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				CheckIn: checkIn, CheckOut: &checkOut, Guests: 2,
			},
			wantErr: true,
		},
		{
			name: "property without checkout",
			req: model.BookingRequest{
				ResourceType: model.ResourceProperty, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				RoomID: "r1", CheckIn: checkIn, Guests: 2,
			},
			wantErr: true,
		},
		{
			name: "checkout before checkin",
			req: model.BookingRequest{
				ResourceType: model.ResourceProperty, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				RoomID: "r1", CheckIn: checkOut, CheckOut: &checkIn, Guests: 2,
			},
			wantErr: true,
		},
		{
			name: "check in yesterday",
			req: model.BookingRequest{
				ResourceType: model.ResourceService, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				CheckIn: sameDay.Add(-time.Hour), Guests: 2,
			},
			wantErr: true,
		},
		{
			name: "flight with class",
			req: model.BookingRequest{
				ResourceType: model.ResourceFlight, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				FareClass: model.FareBusiness, CheckIn: checkIn, Guests: 1,
			},
		},
		{
			name: "flight with unknown class",
			req: model.BookingRequest{
				ResourceType: model.ResourceFlight, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				FareClass: "premium", CheckIn: checkIn, Guests: 1,
			},
			wantErr: true,
		},
		{
			name: "service with room",
			req: model.BookingRequest{
				ResourceType: model.ResourceService, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				RoomID: "r1", CheckIn: checkIn, Guests: 1,
			},
			wantErr: true,
		},
		{
			name: "unknown resource type",
			req: model.BookingRequest{
				ResourceType: "car", ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				CheckIn: checkIn, Guests: 1,
			},
			wantErr: true,
		},
		{
			name: "no guests",
			req: model.BookingRequest{
				ResourceType: model.ResourceFlight, ResourceID: "65f1c0a2b3c4d5e6f7a8b9d0",
				CheckIn: checkIn,
			},
			wantErr: true,
		},
	}

	bv := newTestValidator(now)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bv.Validate(&tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

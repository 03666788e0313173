package model

import (
	"testing"
	"time"
)

func TestBookingStatus_Classification(t *testing.T) {
	tests := []struct {
		status   BookingStatus
		terminal bool
		active   bool
	}{
		{BookingPending, false, true},
		{BookingConfirmed, false, true},
		{BookingCompleted, true, false},
		{BookingCancelled, true, false},
		{BookingNoShow, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if !tt.status.IsValid() {
				t.Errorf("%q should be valid", tt.status)
			}
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.status.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
		})
	}

	if BookingStatus("archived").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

func TestEnums_IsValid(t *testing.T) {
	if !PropertyTypeGuesthouse.IsValid() || PropertyType("castle").IsValid() {
		t.Error("PropertyType.IsValid mismatch")
	}
	if !MealPlanAllInclusive.IsValid() || MealPlan("brunch").IsValid() {
		t.Error("MealPlan.IsValid mismatch")
	}
	if !RoleHost.IsValid() || Role("root").IsValid() {
		t.Error("Role.IsValid mismatch")
	}
	if !FareFirst.IsValid() || FareClass("premium").IsValid() {
		t.Error("FareClass.IsValid mismatch")
	}
	if !DiscountFixed.IsValid() || DiscountType("bogo").IsValid() {
		t.Error("DiscountType.IsValid mismatch")
	}
	if !FlightDelayed.IsBookable() || FlightDeparted.IsBookable() {
		t.Error("FlightStatus.IsBookable mismatch")
	}
}

func TestFares_ForClass(t *testing.T) {
	business := &Fare{Price: 900, Currency: "USD", SeatsAvailable: 4}
	fares := Fares{
		Economy:  Fare{Price: 200, Currency: "USD", SeatsAvailable: 100},
		Business: business,
	}

	if got := fares.ForClass(FareEconomy); got == nil || got.Price != 200 {
		t.Errorf("economy fare = %v", got)
	}
	if got := fares.ForClass(FareBusiness); got != business {
		t.Errorf("business fare = %v", got)
	}
	if got := fares.ForClass(FareFirst); got != nil {
		t.Errorf("first fare should be nil, got %v", got)
	}
}

func TestService_OffersSlot(t *testing.T) {
	svc := &Service{
		AvailableDays: []int{1, 3, 5}, // Mon, Wed, Fri
		StartHour:     9,
		EndHour:       17,
	}

	// 2030-01-07 is a Monday.
	monday := time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"opening hour", monday.Add(9 * time.Hour), true},
		{"last slot", monday.Add(16 * time.Hour), true},
		{"closing hour excluded", monday.Add(17 * time.Hour), false},
		{"before opening", monday.Add(8 * time.Hour), false},
		{"off-hour minute", monday.Add(10*time.Hour + 30*time.Minute), false},
		{"closed day", monday.AddDate(0, 0, 1).Add(10 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.OffersSlot(tt.at); got != tt.want {
				t.Errorf("OffersSlot(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		points int
		want   LoyaltyTier
	}{
		{0, TierBronze},
		{999, TierBronze},
		{1000, TierSilver},
		{5000, TierGold},
		{12000, TierPlatinum},
	}

	for _, tt := range tests {
		if got := TierFor(tt.points); got != tt.want {
			t.Errorf("TierFor(%d) = %q, want %q", tt.points, got, tt.want)
		}
	}
}

func TestProperty_RoomAndReviewVotes(t *testing.T) {
	p := &Property{Rooms: []Room{{ID: "r1"}, {ID: "r2", Units: 3}}}
	if room := p.Room("r2"); room == nil || room.Units != 3 {
		t.Errorf("Room(r2) = %v", room)
	}
	if p.Room("missing") != nil {
		t.Error("Room(missing) should be nil")
	}

	r := &Review{HelpfulVotes: []string{"u1", "u2"}}
	if !r.HasHelpfulVote("u2") || r.HasHelpfulVote("u3") {
		t.Error("HasHelpfulVote mismatch")
	}

	var nilPrincipal *Principal
	if nilPrincipal.IsAdmin() {
		t.Error("nil principal is not admin")
	}
	if !(&Principal{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin principal should be admin")
	}
}

package model

type PropertyType string

const (
	PropertyTypeHotel      PropertyType = "hotel"
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeResort     PropertyType = "resort"
	PropertyTypeVilla      PropertyType = "villa"
	PropertyTypeHostel     PropertyType = "hostel"
	PropertyTypeGuesthouse PropertyType = "guesthouse"
)

var PropertyTypes = []PropertyType{
	PropertyTypeHotel,
	PropertyTypeApartment,
	PropertyTypeResort,
	PropertyTypeVilla,
	PropertyTypeHostel,
	PropertyTypeGuesthouse,
}

func (t PropertyType) IsValid() bool {
	for _, v := range PropertyTypes {
		if v == t {
			return true
		}
	}
	return false
}

type CancellationPolicy string

const (
	CancellationFlexible CancellationPolicy = "flexible"
	CancellationModerate CancellationPolicy = "moderate"
	CancellationStrict   CancellationPolicy = "strict"
)

func (p CancellationPolicy) IsValid() bool {
	switch p {
	case CancellationFlexible, CancellationModerate, CancellationStrict:
		return true
	}
	return false
}

type MealPlan string

const (
	MealPlanRoomOnly     MealPlan = "room-only"
	MealPlanBreakfast    MealPlan = "breakfast"
	MealPlanHalfBoard    MealPlan = "half-board"
	MealPlanFullBoard    MealPlan = "full-board"
	MealPlanAllInclusive MealPlan = "all-inclusive"
)

var MealPlans = []MealPlan{
	MealPlanRoomOnly,
	MealPlanBreakfast,
	MealPlanHalfBoard,
	MealPlanFullBoard,
	MealPlanAllInclusive,
}

func (m MealPlan) IsValid() bool {
	for _, v := range MealPlans {
		if v == m {
			return true
		}
	}
	return false
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleHost     Role = "host"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleHost, RoleAdmin:
		return true
	}
	return false
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingNoShow    BookingStatus = "no-show"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled, BookingNoShow:
		return true
	}
	return false
}

// IsTerminal reports whether no further status transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingNoShow
}

// IsActive reports whether the booking still holds inventory.
func (s BookingStatus) IsActive() bool {
	return s == BookingPending || s == BookingConfirmed
}

// ActiveBookingStatuses are the statuses that hold inventory and block
// account deletion.
var ActiveBookingStatuses = []BookingStatus{BookingPending, BookingConfirmed}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentFailed   PaymentStatus = "failed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid, PaymentRefunded, PaymentFailed:
		return true
	}
	return false
}

type FlightStatus string

const (
	FlightScheduled FlightStatus = "scheduled"
	FlightDelayed   FlightStatus = "delayed"
	FlightCancelled FlightStatus = "cancelled"
	FlightBoarding  FlightStatus = "boarding"
	FlightDeparted  FlightStatus = "departed"
	FlightArrived   FlightStatus = "arrived"
)

func (s FlightStatus) IsValid() bool {
	switch s {
	case FlightScheduled, FlightDelayed, FlightCancelled, FlightBoarding, FlightDeparted, FlightArrived:
		return true
	}
	return false
}

// IsBookable reports whether seats on the flight may still be sold.
func (s FlightStatus) IsBookable() bool {
	return s == FlightScheduled || s == FlightDelayed
}

type FareClass string

const (
	FareEconomy  FareClass = "economy"
	FareBusiness FareClass = "business"
	FareFirst    FareClass = "first"
)

func (c FareClass) IsValid() bool {
	switch c {
	case FareEconomy, FareBusiness, FareFirst:
		return true
	}
	return false
}

type ResourceType string

const (
	ResourceProperty ResourceType = "property"
	ResourceFlight   ResourceType = "flight"
	ResourceService  ResourceType = "service"
)

func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceProperty, ResourceFlight, ResourceService:
		return true
	}
	return false
}

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

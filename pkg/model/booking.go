package model

import "time"

type PricingBreakdown struct {
	UnitPrice    float64 `json:"unitPrice" bson:"unit_price"`
	Quantity     int     `json:"quantity" bson:"quantity"`
	Nights       int     `json:"nights" bson:"nights"`
	Subtotal     float64 `json:"subtotal" bson:"subtotal"`
	Discount     float64 `json:"discount" bson:"discount"`
	DiscountCode string  `json:"discountCode,omitempty" bson:"discount_code,omitempty"`
	TaxRate      float64 `json:"taxRate" bson:"tax_rate"`
	Tax          float64 `json:"tax" bson:"tax"`
	Total        float64 `json:"total" bson:"total"`
	Currency     string  `json:"currency" bson:"currency"`
}

type TransactionKind string

const (
	TransactionPayment TransactionKind = "payment"
	TransactionRefund  TransactionKind = "refund"
	TransactionFailure TransactionKind = "failure"
)

type PaymentTransaction struct {
	ID     string          `json:"id" bson:"id"`
	Kind   TransactionKind `json:"kind" bson:"kind"`
	Amount float64         `json:"amount" bson:"amount"`
	Method string          `json:"method,omitempty" bson:"method,omitempty"`
	Note   string          `json:"note,omitempty" bson:"note,omitempty"`
	At     time.Time       `json:"at" bson:"at"`
	By     string          `json:"by" bson:"by"`
}

type Payment struct {
	Status          PaymentStatus        `json:"status" bson:"status"`
	Method          string               `json:"method,omitempty" bson:"method,omitempty"`
	PaidAmount      float64              `json:"paidAmount" bson:"paid_amount"`
	RemainingAmount float64              `json:"remainingAmount" bson:"remaining_amount"`
	Transactions    []PaymentTransaction `json:"transactions" bson:"transactions"`
}

type StayRecord struct {
	At time.Time `json:"at" bson:"at"`
	By string    `json:"by" bson:"by"`
}

type StatusChange struct {
	From   BookingStatus `json:"from" bson:"from"`
	To     BookingStatus `json:"to" bson:"to"`
	At     time.Time     `json:"at" bson:"at"`
	By     string        `json:"by" bson:"by"`
	Reason string        `json:"reason,omitempty" bson:"reason,omitempty"`
}

type Cancellation struct {
	At     time.Time `json:"at" bson:"at"`
	By     string    `json:"by" bson:"by"`
	Reason string    `json:"reason,omitempty" bson:"reason,omitempty"`
}

// Booking links a user to one inventory unit: a property room, a flight fare
// class or a service slot. For service bookings CheckIn is the slot start.
type Booking struct {
	ID              string           `json:"id,omitempty" bson:"_id,omitempty"`
	Reference       string           `json:"reference" bson:"reference"`
	UserID          string           `json:"userId" bson:"user_id"`
	ResourceType    ResourceType     `json:"resourceType" bson:"resource_type"`
	ResourceID      string           `json:"resourceId" bson:"resource_id"`
	ResourceOwnerID string           `json:"resourceOwnerId,omitempty" bson:"resource_owner_id,omitempty"`
	ResourceName    string           `json:"resourceName" bson:"resource_name"`
	RoomID          string           `json:"roomId,omitempty" bson:"room_id,omitempty"`
	FareClass       FareClass        `json:"fareClass,omitempty" bson:"fare_class,omitempty"`
	CheckIn         time.Time        `json:"checkIn" bson:"check_in"`
	CheckOut        time.Time        `json:"checkOut" bson:"check_out"`
	Guests          int              `json:"guests" bson:"guests"`
	SpecialRequests string           `json:"specialRequests,omitempty" bson:"special_requests,omitempty"`
	Pricing         PricingBreakdown `json:"pricing" bson:"pricing"`
	Payment         Payment          `json:"payment" bson:"payment"`
	CheckInRecord   *StayRecord      `json:"checkInRecord,omitempty" bson:"check_in_record,omitempty"`
	CheckOutRecord  *StayRecord      `json:"checkOutRecord,omitempty" bson:"check_out_record,omitempty"`
	Status          BookingStatus    `json:"status" bson:"status"`
	StatusHistory   []StatusChange   `json:"statusHistory" bson:"status_history"`
	ReviewID        string           `json:"reviewId,omitempty" bson:"review_id,omitempty"`
	Cancellation    *Cancellation    `json:"cancellation,omitempty" bson:"cancellation,omitempty"`
	CreatedAt       time.Time        `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time        `json:"updatedAt" bson:"updated_at"`
}

// BookingRequest is the client payload for quoting or creating a booking.
type BookingRequest struct {
	ResourceType    ResourceType `json:"resourceType" validate:"required,resource_type"`
	ResourceID      string       `json:"resourceId" validate:"required,mongodb"`
	RoomID          string       `json:"roomId,omitempty" validate:"required_if=ResourceType property"`
	FareClass       FareClass    `json:"fareClass,omitempty" validate:"omitempty,fare_class"`
	CheckIn         time.Time    `json:"checkIn" validate:"required"`
	CheckOut        *time.Time   `json:"checkOut,omitempty"`
	Guests          int          `json:"guests" validate:"min=1,max=100"`
	Quantity        int          `json:"quantity" validate:"omitempty,min=1,max=50"`
	DiscountCode    string       `json:"discountCode,omitempty" validate:"omitempty,min=3,max=32,alphanum"`
	PaymentMethod   string       `json:"paymentMethod,omitempty" validate:"omitempty,max=60"`
	SpecialRequests string       `json:"specialRequests,omitempty" validate:"omitempty,max=1000"`
}

type CancelRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type PaymentRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Method string  `json:"method" validate:"required,max=60"`
}

type PaymentFailureRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// Quote is the read-only result of pricing a booking request.
type Quote struct {
	ResourceType ResourceType     `json:"resourceType"`
	ResourceID   string           `json:"resourceId"`
	ResourceName string           `json:"resourceName"`
	CheckIn      time.Time        `json:"checkIn"`
	CheckOut     time.Time        `json:"checkOut"`
	Pricing      PricingBreakdown `json:"pricing"`
	Available    bool             `json:"available"`
	Remaining    int              `json:"remaining"`
}

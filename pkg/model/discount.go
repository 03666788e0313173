package model

import "time"

type DiscountCode struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty"`
	Code        string       `json:"code" bson:"code" validate:"required,min=3,max=32,alphanum"`
	Type        DiscountType `json:"type" bson:"type" validate:"required,discount_type"`
	Value       float64      `json:"value" bson:"value" validate:"gt=0"`
	Currency    string       `json:"currency,omitempty" bson:"currency,omitempty" validate:"omitempty,iso4217"`
	MinSubtotal float64      `json:"minSubtotal" bson:"min_subtotal" validate:"min=0"`
	ValidFrom   *time.Time   `json:"validFrom,omitempty" bson:"valid_from,omitempty"`
	ValidUntil  *time.Time   `json:"validUntil,omitempty" bson:"valid_until,omitempty"`
	Active      bool         `json:"active" bson:"active"`
	CreatedBy   string       `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" bson:"created_at"`
}

package validator

import (
	"time"

	"tourism/pkg/model"
	"tourism/pkg/validation"
)

type BookingValidator struct {
	v   *validation.Validator
	now func() time.Time
}

func NewBookingValidator(v *validation.Validator) *BookingValidator {
	return &BookingValidator{v: v, now: time.Now}
}

// Validate checks the request shape and the date rules that depend on the
// resource type. CheckIn may fall on the current UTC day.
func (bv *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := bv.v.Struct(req); err != nil {
		return err
	}

	var errs validation.ValidationErrors
	today := bv.now().UTC().Truncate(24 * time.Hour)
	if req.CheckIn.Before(today) {
		errs = append(errs, validation.ValidationError{Field: "checkIn", Message: "must not be in the past"})
	}

	switch req.ResourceType {
	case model.ResourceProperty:
		if req.CheckOut == nil {
			errs = append(errs, validation.ValidationError{Field: "checkOut", Message: "is required"})
		} else if !req.CheckOut.After(req.CheckIn) {
			errs = append(errs, validation.ValidationError{Field: "checkOut", Message: "must be after checkIn"})
		}
	case model.ResourceFlight:
		if req.RoomID != "" {
			errs = append(errs, validation.ValidationError{Field: "roomId", Message: "is only valid for properties"})
		}
	case model.ResourceService:
		if req.RoomID != "" {
			errs = append(errs, validation.ValidationError{Field: "roomId", Message: "is only valid for properties"})
		}
		if req.FareClass != "" {
			errs = append(errs, validation.ValidationError{Field: "fareClass", Message: "is only valid for flights"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (bv *BookingValidator) ValidateCancel(req *model.CancelRequest) error {
	return bv.v.Struct(req)
}

func (bv *BookingValidator) ValidatePayment(req *model.PaymentRequest) error {
	return bv.v.Struct(req)
}

func (bv *BookingValidator) ValidatePaymentFailure(req *model.PaymentFailureRequest) error {
	return bv.v.Struct(req)
}

package validator

import (
	"strings"

	"tourism/pkg/model"
	"tourism/pkg/validation"
)

type FlightValidator struct {
	v *validation.Validator
}

func NewFlightValidator(v *validation.Validator) *FlightValidator {
	return &FlightValidator{v: v}
}

func (fv *FlightValidator) Validate(f *model.Flight) error {
	if err := fv.v.Struct(f); err != nil {
		return err
	}

	var errs validation.ValidationErrors
	if strings.EqualFold(f.Departure.Airport, f.Arrival.Airport) {
		errs = append(errs, validation.ValidationError{Field: "arrival.airport", Message: "arrival airport must differ from departure airport"})
	}
	if !f.Arrival.Time.After(f.Departure.Time) {
		errs = append(errs, validation.ValidationError{Field: "arrival.time", Message: "arrival must be after departure"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (fv *FlightValidator) ValidateStatus(u *model.FlightStatusUpdate) error {
	return fv.v.Struct(u)
}

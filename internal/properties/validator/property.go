package validator

import (
	"strings"

	"tourism/pkg/model"
	"tourism/pkg/validation"
)

type PropertyValidator struct {
	v *validation.Validator
}

func NewPropertyValidator(v *validation.Validator) *PropertyValidator {
	return &PropertyValidator{v: v}
}

func (pv *PropertyValidator) Validate(p *model.Property) error {
	if err := pv.v.Struct(p); err != nil {
		return err
	}
	return validateBusinessRules(p)
}

// validateBusinessRules checks what struct tags cannot: room ids are unique
// and all rooms of a property are priced in one currency.
func validateBusinessRules(p *model.Property) error {
	var errs validation.ValidationErrors

	seen := make(map[string]bool, len(p.Rooms))
	currency := ""
	for _, room := range p.Rooms {
		if seen[room.ID] {
			errs = append(errs, validation.ValidationError{Field: "rooms", Message: "duplicate room id " + room.ID})
		}
		seen[room.ID] = true

		if currency == "" {
			currency = room.Currency
		} else if !strings.EqualFold(currency, room.Currency) {
			errs = append(errs, validation.ValidationError{Field: "rooms", Message: "all rooms must share one currency"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

package pricing

import (
	"fmt"
	"strings"
	"time"

	apperrors "tourism/pkg/errors"
	"tourism/pkg/model"
)

// ResolveDiscount reports whether d may be applied to a subtotal in currency
// at time now. Fixed amounts must be in the booking currency.
func ResolveDiscount(d *model.DiscountCode, subtotal float64, currency string, now time.Time) error {
	invalid := func(reason string) error {
		return apperrors.Validation("Discount code cannot be applied", map[string]any{
			"code":   d.Code,
			"reason": reason,
		})
	}

	if !d.Active {
		return invalid("code is not active")
	}
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return invalid("code is not valid yet")
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return invalid("code has expired")
	}
	if subtotal < d.MinSubtotal {
		return invalid(fmt.Sprintf("minimum subtotal is %.2f", d.MinSubtotal))
	}
	if d.Type == model.DiscountFixed && d.Currency != "" && !strings.EqualFold(d.Currency, currency) {
		return invalid(fmt.Sprintf("code applies to %s amounts only", strings.ToUpper(d.Currency)))
	}
	return nil
}

// Package pricing computes booking price breakdowns. It has no I/O: callers
// resolve the unit price and any discount code before quoting.
package pricing

import (
	"math"
	"strings"
	"time"

	apperrors "tourism/pkg/errors"
	"tourism/pkg/model"
)

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Nights returns the number of started days between checkIn and checkOut.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

type QuoteInput struct {
	UnitPrice float64
	Currency  string
	Quantity  int
	CheckIn   time.Time
	CheckOut  time.Time
	// PerNight multiplies by the stay length; otherwise the unit is sold once.
	PerNight bool
	Discount *model.DiscountCode
}

type Calculator struct {
	TaxRate float64
	Now     func() time.Time
}

func NewCalculator(taxRate float64) *Calculator {
	return &Calculator{TaxRate: taxRate, Now: time.Now}
}

func (c *Calculator) Quote(in QuoteInput) (model.PricingBreakdown, error) {
	if in.UnitPrice <= 0 {
		return model.PricingBreakdown{}, apperrors.Validation("Unit price must be positive", nil)
	}

	if in.Quantity <= 0 {
		return model.PricingBreakdown{}, apperrors.Validation("Quantity must be at least 1", map[string]any{"quantity": in.Quantity})
	}

	quantity := in.Quantity
	nights := 1
	if in.PerNight {
		if !in.CheckOut.After(in.CheckIn) {
			return model.PricingBreakdown{}, apperrors.Validation("Check-out must be after check-in", map[string]any{
				"checkIn":  in.CheckIn,
				"checkOut": in.CheckOut,
			})
		}
		nights = Nights(in.CheckIn, in.CheckOut)
	}

	currency := strings.ToUpper(in.Currency)
	subtotal := Round2(in.UnitPrice * float64(quantity) * float64(nights))

	b := model.PricingBreakdown{
		UnitPrice: Round2(in.UnitPrice),
		Quantity:  quantity,
		Nights:    nights,
		Subtotal:  subtotal,
		TaxRate:   c.TaxRate,
		Currency:  currency,
	}

	if in.Discount != nil {
		if err := ResolveDiscount(in.Discount, subtotal, currency, c.now()); err != nil {
			return model.PricingBreakdown{}, err
		}
		b.Discount = discountAmount(in.Discount, subtotal)
		b.DiscountCode = in.Discount.Code
	}

	taxable := subtotal - b.Discount
	b.Tax = Round2(taxable * c.TaxRate)
	b.Total = Round2(taxable + b.Tax)
	return b, nil
}

func (c *Calculator) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func discountAmount(d *model.DiscountCode, subtotal float64) float64 {
	var amount float64
	switch d.Type {
	case model.DiscountPercentage:
		amount = subtotal * min(d.Value, 100) / 100
	case model.DiscountFixed:
		amount = d.Value
	}
	return Round2(min(amount, subtotal))
}

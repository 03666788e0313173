package pricing

import (
	"testing"
	"time"

	apperrors "tourism/pkg/errors"
	"tourism/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	checkIn = time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	fixedAt = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
)

func newTestCalculator(rate float64) *Calculator {
	return &Calculator{TaxRate: rate, Now: func() time.Time { return fixedAt }}
}

func TestQuote_RoomStay(t *testing.T) {
	c := newTestCalculator(0.15)

	b, err := c.Quote(QuoteInput{
		UnitPrice: 100,
		Currency:  "usd",
		Quantity:  2,
		CheckIn:   checkIn,
		CheckOut:  checkIn.AddDate(0, 0, 3),
		PerNight:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, b.Nights)
	assert.Equal(t, 2, b.Quantity)
	assert.Equal(t, 600.0, b.Subtotal)
	assert.Equal(t, 0.0, b.Discount)
	assert.Equal(t, 90.0, b.Tax)
	assert.Equal(t, 690.0, b.Total)
	assert.Equal(t, "USD", b.Currency)
}

func TestQuote_PartialDayRoundsUp(t *testing.T) {
	b, err := newTestCalculator(0).Quote(QuoteInput{
		UnitPrice: 80,
		Currency:  "EUR",
		Quantity:  1,
		CheckIn:   checkIn,
		CheckOut:  checkIn.Add(49 * time.Hour),
		PerNight:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, b.Nights)
	assert.Equal(t, 1, b.Quantity)
	assert.Equal(t, 240.0, b.Total)
}

func TestQuote_InvalidRange(t *testing.T) {
	_, err := newTestCalculator(0.1).Quote(QuoteInput{
		UnitPrice: 100,
		Currency:  "USD",
		CheckIn:   checkIn,
		CheckOut:  checkIn,
		PerNight:  true,
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestQuote_RejectsNonPositiveQuantity(t *testing.T) {
	for _, quantity := range []int{0, -2} {
		_, err := newTestCalculator(0.1).Quote(QuoteInput{
			UnitPrice: 100,
			Currency:  "USD",
			Quantity:  quantity,
			CheckIn:   checkIn,
			CheckOut:  checkIn.Add(48 * time.Hour),
			PerNight:  true,
		})
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "quantity=%d: %v", quantity, err)
	}
}

func TestQuote_OncePerUnitIgnoresDates(t *testing.T) {
	b, err := newTestCalculator(0.1).Quote(QuoteInput{
		UnitPrice: 45.5,
		Currency:  "USD",
		Quantity:  3,
		CheckIn:   checkIn,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Nights)
	assert.Equal(t, 136.5, b.Subtotal)
	assert.Equal(t, 13.65, b.Tax)
	assert.Equal(t, 150.15, b.Total)
}

func TestQuote_Discounts(t *testing.T) {
	tests := []struct {
		name         string
		discount     model.DiscountCode
		wantDiscount float64
		wantTotal    float64
	}{
		{
			name:         "percentage",
			discount:     model.DiscountCode{Code: "SUMMER10", Type: model.DiscountPercentage, Value: 10, Active: true},
			wantDiscount: 60,
			wantTotal:    621,
		},
		{
			name:         "fixed",
			discount:     model.DiscountCode{Code: "FIFTY", Type: model.DiscountFixed, Value: 50, Currency: "USD", Active: true},
			wantDiscount: 50,
			wantTotal:    632.5,
		},
		{
			name:         "fixed capped at subtotal",
			discount:     model.DiscountCode{Code: "HUGE", Type: model.DiscountFixed, Value: 5000, Currency: "USD", Active: true},
			wantDiscount: 600,
			wantTotal:    0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.discount
			b, err := newTestCalculator(0.15).Quote(QuoteInput{
				UnitPrice: 100,
				Currency:  "USD",
				Quantity:  2,
				CheckIn:   checkIn,
				CheckOut:  checkIn.AddDate(0, 0, 3),
				PerNight:  true,
				Discount:  &d,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantDiscount, b.Discount)
			assert.Equal(t, tt.wantTotal, b.Total)
			assert.Equal(t, d.Code, b.DiscountCode)
		})
	}
}

func TestResolveDiscount(t *testing.T) {
	past := fixedAt.AddDate(0, -1, 0)
	future := fixedAt.AddDate(0, 1, 0)

	tests := []struct {
		name     string
		code     model.DiscountCode
		subtotal float64
		currency string
		wantErr  bool
	}{
		{"valid", model.DiscountCode{Type: model.DiscountPercentage, Value: 5, Active: true}, 100, "USD", false},
		{"inactive", model.DiscountCode{Type: model.DiscountPercentage, Value: 5}, 100, "USD", true},
		{"not started", model.DiscountCode{Type: model.DiscountPercentage, Value: 5, Active: true, ValidFrom: &future}, 100, "USD", true},
		{"expired", model.DiscountCode{Type: model.DiscountPercentage, Value: 5, Active: true, ValidUntil: &past}, 100, "USD", true},
		{"within window", model.DiscountCode{Type: model.DiscountPercentage, Value: 5, Active: true, ValidFrom: &past, ValidUntil: &future}, 100, "USD", false},
		{"below minimum", model.DiscountCode{Type: model.DiscountPercentage, Value: 5, Active: true, MinSubtotal: 200}, 100, "USD", true},
		{"fixed currency mismatch", model.DiscountCode{Type: model.DiscountFixed, Value: 5, Currency: "EUR", Active: true}, 100, "USD", true},
		{"fixed currency case-insensitive", model.DiscountCode{Type: model.DiscountFixed, Value: 5, Currency: "usd", Active: true}, 100, "USD", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ResolveDiscount(&tt.code, tt.subtotal, tt.currency, fixedAt)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.13, Round2(10.125))
	assert.Equal(t, 0.1, Round2(0.1+0.0000001))
	assert.Equal(t, 690.0, Round2(600*1.15))
}

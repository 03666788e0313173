package service

import (
	"context"

	"tourism/internal/events"
	"tourism/internal/pricing"
	apperrors "tourism/pkg/errors"
	"tourism/pkg/model"
	"tourism/pkg/validation"

	"github.com/google/uuid"
)

// RecordPayment applies a payment against the remaining amount. A failed
// payment status does not block a later successful one.
func (s *bookingService) RecordPayment(ctx context.Context, p *model.Principal, id string, req *model.PaymentRequest) (*model.Booking, error) {
	if err := s.validator.ValidatePayment(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipant(p, b); err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, apperrors.Conflict("Payments cannot be recorded on a closed booking")
	}
	switch b.Payment.Status {
	case model.PaymentPaid:
		return nil, apperrors.Conflict("Booking is already fully paid")
	case model.PaymentRefunded:
		return nil, apperrors.Conflict("Booking has been refunded")
	}

	amount := pricing.Round2(req.Amount)
	if amount > b.Payment.RemainingAmount {
		return nil, apperrors.Validation("Payment exceeds the remaining amount", map[string]any{
			"amount":    amount,
			"remaining": b.Payment.RemainingAmount,
		})
	}

	next := b.Payment
	next.Method = req.Method
	next.PaidAmount = pricing.Round2(b.Payment.PaidAmount + amount)
	next.RemainingAmount = pricing.Round2(b.Pricing.Total - next.PaidAmount)
	if next.RemainingAmount <= 0 {
		next.RemainingAmount = 0
		next.Status = model.PaymentPaid
	} else {
		next.Status = model.PaymentPartial
	}

	return s.updatePayment(ctx, p, b, next, model.PaymentTransaction{
		Kind:   model.TransactionPayment,
		Amount: amount,
		Method: req.Method,
	})
}

// Refund returns a full payment. Hosts may refund cancelled bookings; admins
// may refund any paid booking.
func (s *bookingService) Refund(ctx context.Context, p *model.Principal, id string) (*model.Booking, error) {
	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeHost(p, b); err != nil {
		return nil, err
	}
	if b.Payment.Status != model.PaymentPaid {
		return nil, apperrors.Conflict("Only paid bookings can be refunded")
	}
	if b.Status != model.BookingCancelled && !p.IsAdmin() {
		return nil, apperrors.Conflict("Only cancelled bookings can be refunded")
	}

	next := b.Payment
	next.Status = model.PaymentRefunded
	next.PaidAmount = 0
	next.RemainingAmount = 0

	return s.updatePayment(ctx, p, b, next, model.PaymentTransaction{
		Kind:   model.TransactionRefund,
		Amount: b.Payment.PaidAmount,
		Method: b.Payment.Method,
	})
}

func (s *bookingService) MarkPaymentFailed(ctx context.Context, p *model.Principal, id string, req *model.PaymentFailureRequest) (*model.Booking, error) {
	if req == nil {
		req = &model.PaymentFailureRequest{}
	}
	if err := s.validator.ValidatePaymentFailure(req); err != nil {
		return nil, validation.ToAppError(err)
	}

	b, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeParticipant(p, b); err != nil {
		return nil, err
	}
	if b.Status.IsTerminal() {
		return nil, apperrors.Conflict("Payments cannot be updated on a closed booking")
	}

	next := b.Payment
	next.Status = model.PaymentFailed

	return s.updatePayment(ctx, p, b, next, model.PaymentTransaction{
		Kind: model.TransactionFailure,
		Note: req.Reason,
	})
}

func (s *bookingService) updatePayment(ctx context.Context, p *model.Principal, b *model.Booking, next model.Payment, tx model.PaymentTransaction) (*model.Booking, error) {
	tx.ID = uuid.NewString()
	tx.At = s.now().UTC()
	tx.By = principalID(p)

	if err := s.repo.UpdatePayment(ctx, b.ID, b.Payment, next, tx); err != nil {
		return nil, s.writeError(b.ID, "UpdatePayment", err)
	}

	previous := b.Payment.Status
	next.Transactions = append(append([]model.PaymentTransaction{}, b.Payment.Transactions...), tx)
	b.Payment = next
	b.UpdatedAt = tx.At

	s.metrics.PaymentUpdates.WithLabelValues(string(next.Status)).Inc()
	s.publish(ctx, events.BookingPaymentUpdated, b, "", principalID(p))
	s.cfg.Log.Info("Booking payment updated",
		"id", b.ID,
		"from", previous,
		"to", next.Status,
		"amount", tx.Amount,
		"remaining", next.RemainingAmount,
	)
	return b, nil
}

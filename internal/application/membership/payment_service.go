package membership

import (
	"context"

	"github.com/clubhouse/backend/internal/domain/membership"
	"go.uber.org/zap"
)

// PaymentService records membership fees
type PaymentService struct {
	members  membership.MemberRepository
	prices   membership.PriceRepository
	payments membership.PaymentRepository
	scope    TransactionScope
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	members membership.MemberRepository,
	prices membership.PriceRepository,
	payments membership.PaymentRepository,
	scope TransactionScope,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		members:  members,
		prices:   prices,
		payments: payments,
		scope:    scope,
		logger:   logger,
	}
}

// List returns a member's payments, newest period first
func (s *PaymentService) List(ctx context.Context, memberID int64) ([]PaymentResponse, error) {
	var rows []membership.Payment
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		if _, err := s.members.FindByID(ctx, memberID); err != nil {
			return err
		}
		var err error
		rows, err = s.payments.ListByMember(ctx, memberID)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]PaymentResponse, len(rows))
	for i := range rows {
		out[i] = toPaymentResponse(&rows[i])
	}
	return out, nil
}

// Record stores a payment for one period. When a price is given its amount
// is copied onto the payment. A second payment for the same period returns
// ErrPaymentExists.
func (s *PaymentService) Record(ctx context.Context, in RecordPaymentInput) (*PaymentResponse, error) {
	var p *membership.Payment
	err := s.scope.Execute(ctx, func(ctx context.Context) error {
		if _, err := s.members.FindByID(ctx, in.MemberID); err != nil {
			return err
		}
		var price *membership.PaymentPrice
		if in.PriceID != nil {
			var err error
			price, err = s.prices.FindByID(ctx, *in.PriceID)
			if err != nil {
				return err
			}
		}
		var err error
		p, err = membership.NewPayment(in.MemberID, in.Period, price, in.Amount)
		if err != nil {
			return err
		}
		return s.payments.Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.Int64("member_id", p.MemberID),
		zap.String("period", p.Period),
		zap.String("amount", p.Amount.StringFixed(2)))
	resp := toPaymentResponse(p)
	return &resp, nil
}

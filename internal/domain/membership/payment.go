package membership

import (
	"time"

	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PeriodLayout is the billing period format, one payment per member per month
const PeriodLayout = "2006-01"

// Payment errors
var (
	ErrInvalidPeriod  = shared.NewDomainError("INVALID_PERIOD", "Period must be formatted as YYYY-MM")
	ErrPaymentExists  = shared.NewDomainError("PAYMENT_EXISTS", "Payment already recorded for that period")
	ErrPriceNotFound  = shared.NewDomainError("NOT_FOUND", "Price not found")
	ErrAmountRequired = shared.NewDomainError("AMOUNT_REQUIRED", "Either price_id or amount is required")
)

// Payment records a member's fee for one period
type Payment struct {
	ID       int64
	MemberID int64
	PriceID  *int64
	Period   string
	Amount   decimal.Decimal
	PaidAt   time.Time
}

// NewPayment builds a payment for memberID. When price is given its amount is used.
func NewPayment(memberID int64, period string, price *PaymentPrice, amount *decimal.Decimal) (*Payment, error) {
	if _, err := time.Parse(PeriodLayout, period); err != nil {
		return nil, ErrInvalidPeriod
	}

	p := &Payment{
		MemberID: memberID,
		Period:   period,
		PaidAt:   time.Now().UTC(),
	}
	switch {
	case price != nil:
		id := price.ID
		p.PriceID = &id
		p.Amount = price.Amount
	case amount != nil:
		if amount.IsNegative() {
			return nil, ErrPriceAmountInvalid
		}
		p.Amount = amount.Round(2)
	default:
		return nil, ErrAmountRequired
	}
	return p, nil
}

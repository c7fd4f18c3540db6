package membership

import (
	"context"

	"github.com/clubhouse/backend/internal/domain/shared"
)

// Repositories operate on the tenant resolved for ctx.

// MemberRepository persists members
type MemberRepository interface {
	List(ctx context.Context, filter MemberFilter, page shared.PageRequest) ([]Member, error)
	Count(ctx context.Context, filter MemberFilter) (int64, error)
	FindByID(ctx context.Context, id int64) (*Member, error)
	Create(ctx context.Context, m *Member) error
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, id int64) error
}

// LevelRepository persists levels
type LevelRepository interface {
	// ListByRank returns all levels ordered by rank ascending
	ListByRank(ctx context.Context) ([]Level, error)
	FindByID(ctx context.Context, id int64) (*Level, error)
	// Create and Update return ErrLevelExists on a duplicate name
	Create(ctx context.Context, l *Level) error
	Update(ctx context.Context, l *Level) error
	// DeleteUnused returns ErrLevelInUse when any member references the level
	DeleteUnused(ctx context.Context, id int64) error
}

// LocationRepository persists locations
type LocationRepository interface {
	// ListByName returns all locations ordered by name ascending
	ListByName(ctx context.Context) ([]Location, error)
	FindByID(ctx context.Context, id int64) (*Location, error)
	Create(ctx context.Context, l *Location) error
	Update(ctx context.Context, l *Location) error
	DeleteUnused(ctx context.Context, id int64) error
}

// PriceRepository persists the price list
type PriceRepository interface {
	// ListByAmount returns all prices ordered by amount ascending
	ListByAmount(ctx context.Context) ([]PaymentPrice, error)
	FindByID(ctx context.Context, id int64) (*PaymentPrice, error)
	Create(ctx context.Context, p *PaymentPrice) error
	Update(ctx context.Context, p *PaymentPrice) error
	DeleteUnused(ctx context.Context, id int64) error
}

// PaymentRepository persists payments
type PaymentRepository interface {
	// ListByMember returns a member's payments, newest period first
	ListByMember(ctx context.Context, memberID int64) ([]Payment, error)
	// Create returns ErrPaymentExists when the member already paid for the period
	Create(ctx context.Context, p *Payment) error
}

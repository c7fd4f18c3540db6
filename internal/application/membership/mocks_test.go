package membership

import (
	"context"

	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockMemberRepository is a mock implementation of membership.MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) List(ctx context.Context, filter membership.MemberFilter, page shared.PageRequest) ([]membership.Member, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.Member), args.Error(1)
}

func (m *MockMemberRepository) Count(ctx context.Context, filter membership.MemberFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id int64) (*membership.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *MockMemberRepository) Create(ctx context.Context, member *membership.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *membership.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLevelRepository is a mock implementation of membership.LevelRepository
type MockLevelRepository struct {
	mock.Mock
}

func (m *MockLevelRepository) ListByRank(ctx context.Context) ([]membership.Level, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.Level), args.Error(1)
}

func (m *MockLevelRepository) FindByID(ctx context.Context, id int64) (*membership.Level, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Level), args.Error(1)
}

func (m *MockLevelRepository) Create(ctx context.Context, l *membership.Level) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLevelRepository) Update(ctx context.Context, l *membership.Level) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLevelRepository) DeleteUnused(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLocationRepository is a mock implementation of membership.LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) ListByName(ctx context.Context) ([]membership.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.Location), args.Error(1)
}

func (m *MockLocationRepository) FindByID(ctx context.Context, id int64) (*membership.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Location), args.Error(1)
}

func (m *MockLocationRepository) Create(ctx context.Context, l *membership.Location) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLocationRepository) Update(ctx context.Context, l *membership.Location) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLocationRepository) DeleteUnused(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPriceRepository is a mock implementation of membership.PriceRepository
type MockPriceRepository struct {
	mock.Mock
}

func (m *MockPriceRepository) ListByAmount(ctx context.Context) ([]membership.PaymentPrice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.PaymentPrice), args.Error(1)
}

func (m *MockPriceRepository) FindByID(ctx context.Context, id int64) (*membership.PaymentPrice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.PaymentPrice), args.Error(1)
}

func (m *MockPriceRepository) Create(ctx context.Context, p *membership.PaymentPrice) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPriceRepository) Update(ctx context.Context, p *membership.PaymentPrice) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPriceRepository) DeleteUnused(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepository is a mock implementation of membership.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) ListByMember(ctx context.Context, memberID int64) ([]membership.Payment, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *membership.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// countingScope records how many times Execute was entered
type countingScope struct {
	calls int
}

func (s *countingScope) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	s.calls++
	return fn(ctx)
}

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}

package handler

import (
	"context"

	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/migration"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByTenantAndUsername(ctx context.Context, t tenant.ID, username string) (*identity.User, error) {
	args := m.Called(ctx, t, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByTenantAndUsername(ctx context.Context, t tenant.ID, username string) (bool, error) {
	args := m.Called(ctx, t, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByTenantAndEmail(ctx context.Context, t tenant.ID, email string, excludeID int64) (bool, error) {
	args := m.Called(ctx, t, email, excludeID)
	return args.Bool(0), args.Error(1)
}

// MockMigrator is a mock implementation of identity.SchemaMigrator
type MockMigrator struct {
	mock.Mock
}

func (m *MockMigrator) Upgrade(ctx context.Context, schema, target string) (migration.Result, error) {
	args := m.Called(ctx, schema, target)
	return args.Get(0).(migration.Result), args.Error(1)
}

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

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// recordingObserver collects login outcomes
type recordingObserver struct {
	outcomes []string
}

func (o *recordingObserver) ObserveLogin(outcome string) {
	o.outcomes = append(o.outcomes, outcome)
}

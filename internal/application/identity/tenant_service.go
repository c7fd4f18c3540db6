package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
)

// SchemaMigrator brings a schema to a target revision. *migration.Runner
// satisfies it.
type SchemaMigrator interface {
	Upgrade(ctx context.Context, schema, target string) (migration.Result, error)
}

// ProvisionObserver is notified of every provisioning attempt
type ProvisionObserver interface {
	ObserveProvision(err error)
}

// TenantService provisions tenant schemas and their first administrator
type TenantService struct {
	users    identity.UserRepository
	migrator SchemaMigrator
	observer ProvisionObserver
	logger   *zap.Logger

	// provisioning is serialized so two requests for a new tenant never race
	// on the version table
	mu sync.Mutex
}

// NewTenantService creates a new tenant service. observer may be nil.
func NewTenantService(
	users identity.UserRepository,
	migrator SchemaMigrator,
	observer ProvisionObserver,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		users:    users,
		migrator: migrator,
		observer: observer,
		logger:   logger,
	}
}

// Provision creates the schema if needed and upgrades it to the head
// revision, which also creates the shared credential table on first use.
// It returns the revision the schema ends at.
func (s *TenantService) Provision(ctx context.Context, schema string) (string, error) {
	t, err := tenant.Parse(schema)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	res, err := s.migrator.Upgrade(ctx, t.String(), migration.TargetHead)
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.ObserveProvision(err)
	}
	if err != nil {
		s.logger.Error("Failed to provision tenant", zap.String("schema", t.String()), zap.Error(err))
		return "", &tenant.SchemaProvisioningError{Schema: t.String(), Err: err}
	}
	if len(res.Steps) > 0 {
		s.logger.Info("Tenant provisioned",
			zap.String("schema", t.String()),
			zap.String("from", res.From),
			zap.String("to", res.To),
			zap.Int("steps", len(res.Steps)))
	}
	return res.To, nil
}

// CreateTenant provisions a tenant and registers its administrator
func (s *TenantService) CreateTenant(ctx context.Context, input CreateTenantInput) (*TenantResult, error) {
	t, err := tenant.Parse(input.TenantSchema)
	if err != nil {
		return nil, err
	}
	admin, err := identity.NewUser(t, input.AdminUsername, input.AdminPassword, input.AdminEmail)
	if err != nil {
		return nil, err
	}
	isAdmin := true
	admin.IsAdmin = &isAdmin

	revision, err := s.Provision(ctx, t.String())
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByTenantAndUsername(ctx, t, admin.Username)
	if err != nil {
		return nil, fmt.Errorf("check admin username: %w", err)
	}
	if exists {
		return nil, identity.ErrUserExists
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created",
		zap.String("schema", t.String()),
		zap.String("admin", admin.Username))

	return &TenantResult{
		TenantSchema:  t.String(),
		AdminUsername: admin.Username,
		Revision:      revision,
	}, nil
}

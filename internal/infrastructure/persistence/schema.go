package persistence

import (
	"context"
	"sync"

	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SchemaManager creates tenant schemas on demand. Schemas known to exist are
// cached for the life of the process, so steady-state requests issue no DDL.
type SchemaManager struct {
	db    *gorm.DB
	known sync.Map // tenant.ID -> struct{}
}

// NewSchemaManager creates a new SchemaManager
func NewSchemaManager(db *gorm.DB) *SchemaManager {
	return &SchemaManager{db: db}
}

// Ensure runs CREATE SCHEMA IF NOT EXISTS for id. Concurrent creators racing
// on the catalog surface as a unique violation, which counts as success.
func (m *SchemaManager) Ensure(ctx context.Context, id tenant.ID) error {
	if _, ok := m.known.Load(id); ok {
		return nil
	}
	if _, err := tenant.Parse(id.String()); err != nil {
		return err
	}

	err := m.db.WithContext(ctx).Exec("CREATE SCHEMA IF NOT EXISTS " + pq.QuoteIdentifier(id.String())).Error
	if err != nil && !isUniqueViolation(err) {
		logger.L(ctx).Error("Failed to create tenant schema", zap.String("schema", id.String()), zap.Error(err))
		return &tenant.SchemaProvisioningError{Schema: id.String(), Err: err}
	}
	m.known.Store(id, struct{}{})
	return nil
}

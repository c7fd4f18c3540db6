package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type txKey struct{}

// SessionFactory opens transactions whose unqualified table names resolve to
// one tenant schema. The search path is set with SET LOCAL, so it is discarded
// at commit or rollback and never leaks to the next borrower of the pooled
// connection.
type SessionFactory struct {
	db      *gorm.DB
	schemas *SchemaManager
}

// NewSessionFactory creates a new SessionFactory
func NewSessionFactory(db *gorm.DB, schemas *SchemaManager) *SessionFactory {
	return &SessionFactory{db: db, schemas: schemas}
}

// Open runs fn in a transaction scoped to t. A nil tenant keeps the
// server's default search path. The schema is ensured before the transaction
// starts; on failure fn is not invoked and a *tenant.SchemaProvisioningError
// is returned. The transaction commits when fn returns nil and rolls back on
// error or panic.
func (f *SessionFactory) Open(ctx context.Context, t *tenant.ID, fn func(tx *gorm.DB) error) error {
	if t != nil {
		if err := f.schemas.Ensure(ctx, *t); err != nil {
			return err
		}
	}
	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if t != nil {
			if err := tx.Exec(setSearchPathSQL(t.SearchPath())).Error; err != nil {
				return fmt.Errorf("set search_path for %s: %w", *t, err)
			}
		}
		return fn(tx)
	})
}

// Session runs fn in the session for the tenant carried by ctx. When ctx
// already belongs to a session opened by Execute, fn joins that transaction.
func (f *SessionFactory) Session(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(tx.WithContext(ctx))
	}
	t, err := TenantFromContext(ctx)
	if err != nil {
		return err
	}
	return f.Open(ctx, t, fn)
}

// Execute opens one session and hands fn a context bound to it, so several
// repository calls commit or roll back together.
func (f *SessionFactory) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	t, err := TenantFromContext(ctx)
	if err != nil {
		return err
	}
	return f.Open(ctx, t, func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// TenantFromContext returns the tenant resolved for the request, or nil
func TenantFromContext(ctx context.Context) (*tenant.ID, error) {
	name := logger.GetTenant(ctx)
	if name == "" {
		return nil, nil
	}
	id, err := tenant.Parse(name)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func setSearchPathSQL(path []string) string {
	quoted := make([]string, len(path))
	for i, p := range path {
		if p == tenant.DefaultSchema {
			quoted[i] = p
			continue
		}
		quoted[i] = pq.QuoteIdentifier(p)
	}
	return "SET LOCAL search_path TO " + strings.Join(quoted, ", ")
}

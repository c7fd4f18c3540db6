package telemetry

import (
	"errors"

	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// AttrTenant is the span attribute carrying the tenant schema.
const AttrTenant = "clubhouse.tenant"

// RegisterDBTracing installs the otelgorm plugin and a callback that tags
// every statement span with the tenant schema from the request context.
// Query variables are left out of spans unless withVariables is set.
func RegisterDBTracing(db *gorm.DB, withVariables bool) error {
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !withVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	cb := db.Callback()
	for _, reg := range []func(string, func(*gorm.DB)) error{
		cb.Create().After("gorm:create").Register,
		cb.Query().After("gorm:query").Register,
		cb.Update().After("gorm:update").Register,
		cb.Delete().After("gorm:delete").Register,
		cb.Row().After("gorm:row").Register,
		cb.Raw().After("gorm:raw").Register,
	} {
		if err := reg("clubhouse:span_tenant", annotateSpan); err != nil {
			return err
		}
	}
	return nil
}

func annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	if t := logger.GetTenant(ctx); t != "" {
		span.SetAttributes(attribute.String(AttrTenant, t))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
	}
}

package migration

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/telemetry"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// VersionTable is the per-schema marker table
const VersionTable = "alembic_version"

var systemSchemas = []string{"information_schema", "pg_catalog", "pg_toast", tenant.DefaultSchema, tenant.SharedSchema}

//go:embed shared/users.sql
var sharedDDL string

// Result reports what a migration command did to one schema
type Result struct {
	Schema  string
	Applied bool
	From    string
	To      string
	Steps   []string
	Err     error
}

// Runner moves single schemas along the plan. It works on a plain *sql.DB so
// the CLI (lib/pq) and the server (gorm's pgx pool) can share it.
type Runner struct {
	db     *sql.DB
	plan   *Plan
	logger *zap.Logger
	out    io.Writer
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithOutput makes the runner print progress lines to w
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.out = w
	}
}

// NewRunner creates a new Runner
func NewRunner(db *sql.DB, plan *Plan, logger *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{db: db, plan: plan, logger: logger, out: io.Discard}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan returns the plan the runner applies
func (r *Runner) Plan() *Plan {
	return r.plan
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

// ListSchemas returns the tenant schemas in the database, ordered by name.
// System schemas, temporary schemas and every name a tenant may not own,
// shared included, are excluded.
func (r *Runner) ListSchemas(ctx context.Context) ([]string, error) {
	excluded := make([]string, len(systemSchemas))
	for i, s := range systemSchemas {
		excluded[i] = pq.QuoteLiteral(s)
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN (`+strings.Join(excluded, ", ")+`)
		  AND schema_name NOT LIKE 'pg\_temp\_%'
		  AND schema_name NOT LIKE 'pg\_toast\_temp\_%'
		ORDER BY schema_name`)
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list schemas: %w", err)
		}
		if tenant.IsReserved(name) {
			continue
		}
		schemas = append(schemas, name)
	}
	return schemas, rows.Err()
}

// EnsureShared creates the shared schema and its credential table at the
// head revision's shape. It is safe to call on every start and does not
// touch any tenant's version marker.
func (r *Runner) EnsureShared(ctx context.Context) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "migration.ensure_shared")
	defer func() { telemetry.EndSpan(span, err) }()

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, sharedDDL)
		return err
	})
	if err != nil && !isDuplicateObject(err) {
		return fmt.Errorf("ensure %s schema: %w", tenant.SharedSchema, err)
	}
	r.logger.Debug("Shared schema ready", zap.String("schema", tenant.SharedSchema))
	return nil
}

// EnsureVersionTable creates the marker table in schema when it is missing
// and reports whether it did.
func (r *Runner) EnsureVersionTable(ctx context.Context, schema string) (bool, error) {
	id, err := tenant.Parse(schema)
	if err != nil {
		return false, err
	}
	exists, err := r.versionTableExists(ctx, id)
	if err != nil || exists {
		return false, err
	}

	r.printf("  Creating %s table in schema '%s'...", VersionTable, id)
	_, err = r.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
		version_num VARCHAR(32) NOT NULL,
		CONSTRAINT alembic_version_pkc PRIMARY KEY (version_num)
	)`, pq.QuoteIdentifier(id.String()), VersionTable))
	if err != nil {
		return false, fmt.Errorf("create %s in %s: %w", VersionTable, id, err)
	}
	return true, nil
}

func (r *Runner) versionTableExists(ctx context.Context, id tenant.ID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)`, id.String(), VersionTable).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check %s in %s: %w", VersionTable, id, err)
	}
	return exists, nil
}

// Current returns the revision recorded in schema, "" when none is recorded
// or the marker table does not exist yet.
func (r *Runner) Current(ctx context.Context, schema string) (string, error) {
	id, err := tenant.Parse(schema)
	if err != nil {
		return "", err
	}
	exists, err := r.versionTableExists(ctx, id)
	if err != nil || !exists {
		return "", err
	}

	var version string
	err = r.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT version_num FROM %s.%s ORDER BY version_num DESC LIMIT 1",
		pq.QuoteIdentifier(id.String()), VersionTable,
	)).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s in %s: %w", VersionTable, id, err)
	}
	return version, nil
}

// Upgrade applies every revision between the schema's marker and target.
// The schema is created when missing. Each revision runs in its own
// transaction together with its marker update.
func (r *Runner) Upgrade(ctx context.Context, schema, target string) (Result, error) {
	return r.move(ctx, "upgrade", schema, target, true)
}

// Downgrade reverts revisions until the marker reaches target
func (r *Runner) Downgrade(ctx context.Context, schema, target string) (Result, error) {
	return r.move(ctx, "downgrade", schema, target, false)
}

func (r *Runner) move(ctx context.Context, op, schema, target string, up bool) (res Result, err error) {
	res.Schema = schema
	ctx, span := telemetry.StartSpan(ctx, "migration."+op,
		attribute.String("schema", schema),
		attribute.String("target", target),
	)
	defer func() {
		res.Err = err
		res.Applied = err == nil
		telemetry.EndSpan(span, err)
	}()

	id, err := tenant.Parse(schema)
	if err != nil {
		return res, err
	}
	if up {
		if err = r.ensureSchema(ctx, id); err != nil {
			return res, err
		}
	}
	if _, err = r.EnsureVersionTable(ctx, schema); err != nil {
		return res, err
	}

	if res.From, err = r.Current(ctx, schema); err != nil {
		return res, err
	}
	r.printf("  Current revision: %s", orEmpty(res.From))

	to, err := r.plan.Resolve(res.From, target)
	if err != nil {
		return res, err
	}
	var steps []Revision
	if up {
		steps, err = r.plan.UpgradePath(res.From, to)
	} else {
		steps, err = r.plan.DowngradePath(res.From, to)
	}
	if err != nil {
		return res, err
	}

	for _, rev := range steps {
		script, marker := rev.Up, rev.ID
		if !up {
			script, marker = rev.Down, rev.Parent
		}
		r.logger.Info("Running migration step",
			zap.String("schema", schema),
			zap.String("operation", op),
			zap.String("revision", rev.ID),
			zap.String("message", rev.Message),
		)
		if err = r.runStep(ctx, id, script, marker); err != nil {
			res.To, _ = r.Current(ctx, schema)
			r.printf("  New revision: %s", orEmpty(res.To))
			return res, fmt.Errorf("%s %s: %w", op, rev.ID, err)
		}
		res.Steps = append(res.Steps, rev.ID)
	}

	if res.To, err = r.Current(ctx, schema); err != nil {
		return res, err
	}
	r.printf("  New revision: %s", orEmpty(res.To))
	return res, nil
}

// Stamp writes target to the schema's marker without running any revision
func (r *Runner) Stamp(ctx context.Context, schema, target string) (res Result, err error) {
	res.Schema = schema
	ctx, span := telemetry.StartSpan(ctx, "migration.stamp",
		attribute.String("schema", schema),
		attribute.String("target", target),
	)
	defer func() {
		res.Err = err
		res.Applied = err == nil
		telemetry.EndSpan(span, err)
	}()

	id, err := tenant.Parse(schema)
	if err != nil {
		return res, err
	}
	if err = r.ensureSchema(ctx, id); err != nil {
		return res, err
	}
	if _, err = r.EnsureVersionTable(ctx, schema); err != nil {
		return res, err
	}
	if res.From, err = r.Current(ctx, schema); err != nil {
		return res, err
	}
	to, err := r.plan.Resolve(res.From, target)
	if err != nil {
		return res, err
	}

	r.printf("  Stamping schema with revision: %s", target)
	if err = r.inTx(ctx, func(tx *sql.Tx) error {
		return writeMarker(ctx, tx, id, to)
	}); err != nil {
		return res, fmt.Errorf("stamp %s: %w", displayRevision(to), err)
	}

	if res.To, err = r.Current(ctx, schema); err != nil {
		return res, err
	}
	r.printf("  Schema now at revision: %s", orNone(res.To))
	r.logger.Info("Schema stamped",
		zap.String("schema", schema),
		zap.String("from", res.From),
		zap.String("to", res.To),
	)
	return res, nil
}

func (r *Runner) ensureSchema(ctx context.Context, id tenant.ID) error {
	_, err := r.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(id.String()))
	if err != nil && !isDuplicateObject(err) {
		return &tenant.SchemaProvisioningError{Schema: id.String(), Err: err}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, id tenant.ID, script, marker string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "SET LOCAL search_path TO "+pq.QuoteIdentifier(id.String())+", public"); err != nil {
			return fmt.Errorf("set search_path: %w", err)
		}
		if !isBlank(script) {
			if _, err := tx.ExecContext(ctx, script); err != nil {
				return err
			}
		}
		return writeMarker(ctx, tx, id, marker)
	})
}

func (r *Runner) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeMarker(ctx context.Context, tx *sql.Tx, id tenant.ID, version string) error {
	table := pq.QuoteIdentifier(id.String()) + "." + VersionTable
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", VersionTable, err)
	}
	if version == "" {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO "+table+" (version_num) VALUES ($1)", version); err != nil {
		return fmt.Errorf("write %s: %w", VersionTable, err)
	}
	return nil
}

// isBlank reports whether script holds nothing but whitespace and comments
func isBlank(script string) bool {
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}

// isDuplicateObject matches the errors concurrent CREATE SCHEMA IF NOT EXISTS
// calls raise when they race on the catalog.
func isDuplicateObject(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" || pqErr.Code == "42P06"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" || pgErr.Code == "42P06"
	}
	return false
}

func orEmpty(rev string) string {
	if rev == "" {
		return "empty"
	}
	return rev
}

func orNone(rev string) string {
	if rev == "" {
		return "None"
	}
	return rev
}

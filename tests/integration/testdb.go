// Package integration runs the persistence, migration and HTTP layers against
// a real PostgreSQL started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/migration"
	"github.com/clubhouse/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB represents a test database connection
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	Schemas   *persistence.SchemaManager
	Sessions  *persistence.SessionFactory
	t         *testing.T
}

// NewTestDB starts a fresh PostgreSQL container for the test and closes it on cleanup.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("clubhouse_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, sqlDB := connectToDatabase(t, dsn)
	schemas := persistence.NewSchemaManager(db)

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		Schemas:   schemas,
		Sessions:  persistence.NewSessionFactory(db, schemas),
		t:         t,
	}
	t.Cleanup(testDB.Close)
	return testDB
}

// Close closes the database connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// Runner returns a migration runner over the embedded plan
func (tdb *TestDB) Runner() *migration.Runner {
	tdb.t.Helper()
	plan, err := migration.Embedded()
	require.NoError(tdb.t, err)
	return migration.NewRunner(tdb.SqlDB, plan, zap.NewNop())
}

// MigrateTenant creates schema and upgrades it to head
func (tdb *TestDB) MigrateTenant(schema string) tenant.ID {
	tdb.t.Helper()
	res, err := tdb.Runner().Upgrade(context.Background(), schema, "head")
	require.NoError(tdb.t, err, "Failed to migrate schema %s", schema)
	require.True(tdb.t, res.Applied)
	return tenant.MustParse(schema)
}

// SchemaExists reports whether schema is present in the catalog
func (tdb *TestDB) SchemaExists(schema string) bool {
	tdb.t.Helper()
	var n int64
	err := tdb.DB.Raw("SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = ?", schema).Scan(&n).Error
	require.NoError(tdb.t, err)
	return n > 0
}

// TableExists reports whether schema.table exists
func (tdb *TestDB) TableExists(schema, table string) bool {
	tdb.t.Helper()
	var n int64
	err := tdb.DB.Raw(
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
		schema, table,
	).Scan(&n).Error
	require.NoError(tdb.t, err)
	return n > 0
}

// connectToDatabase establishes a GORM connection to the database
func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

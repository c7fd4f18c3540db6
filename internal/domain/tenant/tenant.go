// Package tenant models a tenant as the name of its PostgreSQL schema.
//
// A tenant is not a database row: it exists as a schema in the catalog and is
// created the first time it is referenced. Every schema name that reaches SQL
// must pass through Parse first.
package tenant

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// SharedSchema holds cross-tenant credential records
const SharedSchema = "shared"

// DefaultSchema is the database's fallback schema, always last in the search order
const DefaultSchema = "public"

var schemaNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// reservedSchemas are on every tenant's search path or owned by PostgreSQL
var reservedSchemas = map[string]struct{}{
	SharedSchema:         {},
	DefaultSchema:        {},
	"information_schema": {},
	"pg_catalog":         {},
	"pg_toast":           {},
}

// ErrInvalidTenantIdentifier is returned when a tenant or schema name fails the allow-list
var ErrInvalidTenantIdentifier = errors.New("invalid tenant identifier")

// ID is a validated tenant schema name
type ID string

// Parse validates name and returns it as an ID. Reserved schemas and the
// pg_ prefix are rejected in any letter case.
func Parse(name string) (ID, error) {
	if !schemaNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTenantIdentifier, name)
	}
	if IsReserved(name) {
		return "", fmt.Errorf("%w: %q is reserved", ErrInvalidTenantIdentifier, name)
	}
	return ID(name), nil
}

// IsReserved reports whether name is a schema no tenant may own
func IsReserved(name string) bool {
	lower := strings.ToLower(name)
	if _, ok := reservedSchemas[lower]; ok {
		return true
	}
	return strings.HasPrefix(lower, "pg_")
}

// MustParse is like Parse but panics on invalid input. Intended for constants and tests.
func MustParse(name string) ID {
	id, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the schema name
func (id ID) String() string {
	return string(id)
}

// SearchPath returns the ordered schema list a tenant session resolves names against
func (id ID) SearchPath() []string {
	return []string{string(id), SharedSchema, DefaultSchema}
}

// SchemaProvisioningError reports that a tenant schema could not be created
type SchemaProvisioningError struct {
	Schema string
	Err    error
}

func (e *SchemaProvisioningError) Error() string {
	return fmt.Sprintf("provision schema %q: %v", e.Schema, e.Err)
}

func (e *SchemaProvisioningError) Unwrap() error {
	return e.Err
}

// Sources carries the candidate tenant hints of one request, highest priority first
type Sources struct {
	Claim   string // tenant_schema claim of a verified token
	Header  string // X-Tenant header
	Query   string // tenant query parameter
	Default string // configured default tenant
}

// Resolve picks the first non-empty hint in priority order and validates it.
// It returns nil when no hint is present. A present but malformed hint is an
// error and never falls through to a lower-priority source.
func Resolve(s Sources) (*ID, error) {
	for _, candidate := range []string{s.Claim, s.Header, s.Query, s.Default} {
		if candidate == "" {
			continue
		}
		id, err := Parse(candidate)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}
	return nil, nil
}

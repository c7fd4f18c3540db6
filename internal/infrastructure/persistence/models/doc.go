// Package models contains GORM persistence models. Domain types stay free of
// ORM tags; each model carries ToDomain and a FromDomain mapper.
//
// identity.go maps the shared credential table and is always schema-qualified.
// catalog.go and membership.go map per-tenant tables, left unqualified so the
// session search_path selects the tenant schema.
package models

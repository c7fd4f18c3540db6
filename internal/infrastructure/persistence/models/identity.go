package models

import (
	"time"

	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/tenant"
)

// UserModel maps shared.users. Email is nullable so tenants may hold many
// credentials without one.
type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"not null;index"`
	Email        *string   `gorm:"index"`
	PasswordHash string    `gorm:"not null"`
	TenantSchema string    `gorm:"not null;index"`
	IsActive     bool      `gorm:"not null"`
	IsAdmin      *bool     `gorm:"column:is_admin"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName qualifies the table so it resolves regardless of search_path
func (UserModel) TableName() string {
	return tenant.SharedSchema + ".users"
}

// ToDomain converts the row to a domain User
func (m *UserModel) ToDomain() *identity.User {
	u := &identity.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		TenantSchema: tenant.ID(m.TenantSchema),
		IsActive:     m.IsActive,
		IsAdmin:      m.IsAdmin,
		CreatedAt:    m.CreatedAt,
	}
	if m.Email != nil {
		u.Email = *m.Email
	}
	return u
}

// UserModelFromDomain converts a domain User to its row
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		TenantSchema: u.TenantSchema.String(),
		IsActive:     u.IsActive,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
	}
	if u.Email != "" {
		email := u.Email
		m.Email = &email
	}
	return m
}

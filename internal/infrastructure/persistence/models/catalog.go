package models

import (
	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/shopspring/decimal"
)

// Tenant tables are left unqualified; the session search_path picks the schema.

// LevelModel maps levels
type LevelModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null;uniqueIndex"`
	Rank int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (LevelModel) TableName() string { return "levels" }

// ToDomain converts the row to a domain Level
func (m *LevelModel) ToDomain() membership.Level {
	return membership.Level{ID: m.ID, Name: m.Name, Rank: m.Rank}
}

// LevelModelFromDomain converts a domain Level to its row
func LevelModelFromDomain(l *membership.Level) *LevelModel {
	return &LevelModel{ID: l.ID, Name: l.Name, Rank: l.Rank}
}

// LocationModel maps locations
type LocationModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string { return "locations" }

// ToDomain converts the row to a domain Location
func (m *LocationModel) ToDomain() membership.Location {
	return membership.Location{ID: m.ID, Name: m.Name}
}

// LocationModelFromDomain converts a domain Location to its row
func LocationModelFromDomain(l *membership.Location) *LocationModel {
	return &LocationModel{ID: l.ID, Name: l.Name}
}

// PaymentPriceModel maps payment_prices
type PaymentPriceModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	Amount      decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Description string          `gorm:"not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (PaymentPriceModel) TableName() string { return "payment_prices" }

// ToDomain converts the row to a domain PaymentPrice
func (m *PaymentPriceModel) ToDomain() membership.PaymentPrice {
	return membership.PaymentPrice{ID: m.ID, Amount: m.Amount, Description: m.Description}
}

// PaymentPriceModelFromDomain converts a domain PaymentPrice to its row
func PaymentPriceModelFromDomain(p *membership.PaymentPrice) *PaymentPriceModel {
	return &PaymentPriceModel{ID: p.ID, Amount: p.Amount, Description: p.Description}
}

package models

import (
	"time"

	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/shopspring/decimal"
)

// MemberModel maps members
type MemberModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	Name        string `gorm:"not null"`
	Surname     string `gorm:"not null"`
	DateOfBirth *time.Time
	Sex         *string
	Status      string `gorm:"not null;default:'active'"`
	LevelID     *int64
	LocationID  *int64
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string { return "members" }

// ToDomain converts the row to a domain Member
func (m *MemberModel) ToDomain() membership.Member {
	out := membership.Member{
		ID:          m.ID,
		Name:        m.Name,
		Surname:     m.Surname,
		DateOfBirth: m.DateOfBirth,
		Status:      membership.MemberStatus(m.Status),
		LevelID:     m.LevelID,
		LocationID:  m.LocationID,
	}
	if m.Sex != nil {
		out.Sex = membership.Sex(*m.Sex)
	}
	return out
}

// MemberModelFromDomain converts a domain Member to its row
func MemberModelFromDomain(m *membership.Member) *MemberModel {
	out := &MemberModel{
		ID:          m.ID,
		Name:        m.Name,
		Surname:     m.Surname,
		DateOfBirth: m.DateOfBirth,
		Status:      string(m.Status),
		LevelID:     m.LevelID,
		LocationID:  m.LocationID,
	}
	if m.Sex != "" {
		sex := string(m.Sex)
		out.Sex = &sex
	}
	return out
}

// PaymentModel maps payments. (member_id, period) is unique.
type PaymentModel struct {
	ID       int64           `gorm:"primaryKey;autoIncrement"`
	MemberID int64           `gorm:"not null"`
	PriceID  *int64
	Period   string          `gorm:"type:char(7);not null"`
	Amount   decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	PaidAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string { return "payments" }

// ToDomain converts the row to a domain Payment
func (m *PaymentModel) ToDomain() membership.Payment {
	return membership.Payment{
		ID:       m.ID,
		MemberID: m.MemberID,
		PriceID:  m.PriceID,
		Period:   m.Period,
		Amount:   m.Amount,
		PaidAt:   m.PaidAt,
	}
}

// PaymentModelFromDomain converts a domain Payment to its row
func PaymentModelFromDomain(p *membership.Payment) *PaymentModel {
	return &PaymentModel{
		ID:       p.ID,
		MemberID: p.MemberID,
		PriceID:  p.PriceID,
		Period:   p.Period,
		Amount:   p.Amount,
		PaidAt:   p.PaidAt,
	}
}

package persistence

import (
	"context"

	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPaymentRepository stores payments in the tenant schema
type GormPaymentRepository struct {
	sessions *SessionFactory
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(sessions *SessionFactory) *GormPaymentRepository {
	return &GormPaymentRepository{sessions: sessions}
}

// ListByMember returns the member's payments, newest period first
func (r *GormPaymentRepository) ListByMember(ctx context.Context, memberID int64) ([]membership.Payment, error) {
	var rows []models.PaymentModel
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.Where("member_id = ?", memberID).Order("period DESC").Find(&rows).Error
	}); err != nil {
		return nil, err
	}
	out := make([]membership.Payment, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts p. A second payment for the same member and period violates
// the (member_id, period) unique constraint and returns ErrPaymentExists.
func (r *GormPaymentRepository) Create(ctx context.Context, p *membership.Payment) error {
	row := models.PaymentModelFromDomain(p)
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.Create(row).Error
	}); err != nil {
		if isUniqueViolation(err) {
			return membership.ErrPaymentExists
		}
		return err
	}
	p.ID = row.ID
	return nil
}

var _ membership.PaymentRepository = (*GormPaymentRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/domain/shared"
	"github.com/clubhouse/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormMemberRepository stores members in the tenant schema of each session
type GormMemberRepository struct {
	sessions *SessionFactory
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(sessions *SessionFactory) *GormMemberRepository {
	return &GormMemberRepository{sessions: sessions}
}

func applyMemberFilter(q *gorm.DB, f membership.MemberFilter) *gorm.DB {
	if f.Query != "" {
		term := "%" + f.Query + "%"
		q = q.Where("name ILIKE ? OR surname ILIKE ?", term, term)
	}
	if f.LevelID != nil {
		q = q.Where("level_id = ?", *f.LevelID)
	}
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.Sex != nil {
		q = q.Where("sex = ?", string(*f.Sex))
	}
	return q
}

// List returns one page of members matching filter. Ties and unknown sort
// columns fall back to id order.
func (r *GormMemberRepository) List(ctx context.Context, filter membership.MemberFilter, page shared.PageRequest) ([]membership.Member, error) {
	var rows []models.MemberModel
	err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		q := applyMemberFilter(tx.Model(&models.MemberModel{}), filter).Order(memberOrder(page))
		if page.PerPage > 0 {
			q = q.Offset(page.Offset()).Limit(page.PerPage)
		}
		return q.Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	out := make([]membership.Member, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// Count returns the number of members matching filter
func (r *GormMemberRepository) Count(ctx context.Context, filter membership.MemberFilter) (int64, error) {
	var n int64
	err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return applyMemberFilter(tx.Model(&models.MemberModel{}), filter).Count(&n).Error
	})
	return n, err
}

// FindByID returns the member or ErrMemberNotFound
func (r *GormMemberRepository) FindByID(ctx context.Context, id int64) (*membership.Member, error) {
	var row models.MemberModel
	err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.First(&row, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, membership.ErrMemberNotFound
		}
		return nil, err
	}
	m := row.ToDomain()
	return &m, nil
}

// Create inserts m and fills in its ID
func (r *GormMemberRepository) Create(ctx context.Context, m *membership.Member) error {
	row := models.MemberModelFromDomain(m)
	err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.Create(row).Error
	})
	if err != nil {
		return err
	}
	m.ID = row.ID
	return nil
}

// Update overwrites every column of m, including cleared optional fields
func (r *GormMemberRepository) Update(ctx context.Context, m *membership.Member) error {
	row := models.MemberModelFromDomain(m)
	return r.sessions.Session(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&models.MemberModel{}).Where("id = ?", m.ID).Select("*").Omit("id").Updates(row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return membership.ErrMemberNotFound
		}
		return nil
	})
}

// Delete removes a member together with its payment history
func (r *GormMemberRepository) Delete(ctx context.Context, id int64) error {
	return r.sessions.Session(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("member_id = ?", id).Delete(&models.PaymentModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.MemberModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return membership.ErrMemberNotFound
		}
		return nil
	})
}

var _ membership.MemberRepository = (*GormMemberRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/clubhouse/backend/internal/domain/membership"
	"github.com/clubhouse/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// catalogWriteErrors names the domain errors a catalog table reports
type catalogWriteErrors struct {
	notFound error
	exists   error
	inUse    error
}

// saveCatalogRow inserts row when id is zero, otherwise updates it
func saveCatalogRow(tx *gorm.DB, id int64, row any, errs catalogWriteErrors) error {
	var result *gorm.DB
	if id == 0 {
		result = tx.Create(row)
	} else {
		result = tx.Model(row).Where("id = ?", id).Select("*").Omit("id").Updates(row)
	}
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return errs.exists
		}
		return result.Error
	}
	if id != 0 && result.RowsAffected == 0 {
		return errs.notFound
	}
	return nil
}

// deleteUnused deletes row id after checking no referencing rows exist.
// The foreign key still guards against a reference inserted concurrently.
func deleteUnused(tx *gorm.DB, id int64, row any, referrer any, column string, errs catalogWriteErrors) error {
	var refs int64
	if err := tx.Model(referrer).Where(column+" = ?", id).Count(&refs).Error; err != nil {
		return err
	}
	if refs > 0 {
		return errs.inUse
	}
	result := tx.Delete(row, "id = ?", id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return errs.inUse
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.notFound
	}
	return nil
}

func notFoundAs(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// GormLevelRepository stores levels in the tenant schema
type GormLevelRepository struct {
	sessions *SessionFactory
}

// NewGormLevelRepository creates a new GormLevelRepository
func NewGormLevelRepository(sessions *SessionFactory) *GormLevelRepository {
	return &GormLevelRepository{sessions: sessions}
}

var levelErrors = catalogWriteErrors{
	notFound: membership.ErrLevelNotFound,
	exists:   membership.ErrLevelExists,
	inUse:    membership.ErrLevelInUse,
}

// ListByRank returns all levels, lowest rank first
func (r *GormLevelRepository) ListByRank(ctx context.Context) ([]membership.Level, error) {
	var rows []models.LevelModel
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.Order("rank ASC").Order("id ASC").Find(&rows).Error
	}); err != nil {
		return nil, err
	}
	out := make([]membership.Level, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByID returns the level or ErrLevelNotFound
func (r *GormLevelRepository) FindByID(ctx context.Context, id int64) (*membership.Level, error) {
	var row models.LevelModel
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.First(&row, "id = ?", id).Error
	}); err != nil {
		return nil, notFoundAs(err, membership.ErrLevelNotFound)
	}
	l := row.ToDomain()
	return &l, nil
}

// Create inserts l and fills in its ID
func (r *GormLevelRepository) Create(ctx context.Context, l *membership.Level) error {
	row := models.LevelModelFromDomain(l)
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return saveCatalogRow(tx, 0, row, levelErrors)
	}); err != nil {
		return err
	}
	l.ID = row.ID
	return nil
}

// Update saves name and rank
func (r *GormLevelRepository) Update(ctx context.Context, l *membership.Level) error {
	return r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return saveCatalogRow(tx, l.ID, models.LevelModelFromDomain(l), levelErrors)
	})
}

// DeleteUnused deletes a level no member is assigned to
func (r *GormLevelRepository) DeleteUnused(ctx context.Context, id int64) error {
	return r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return deleteUnused(tx, id, &models.LevelModel{}, &models.MemberModel{}, "level_id", levelErrors)
	})
}

// GormLocationRepository stores locations in the tenant schema
type GormLocationRepository struct {
	sessions *SessionFactory
}

// NewGormLocationRepository creates a new GormLocationRepository
func NewGormLocationRepository(sessions *SessionFactory) *GormLocationRepository {
	return &GormLocationRepository{sessions: sessions}
}

var locationErrors = catalogWriteErrors{
	notFound: membership.ErrLocationNotFound,
	exists:   membership.ErrLocationExists,
	inUse:    membership.ErrLocationInUse,
}

// ListByName returns all locations ordered by name
func (r *GormLocationRepository) ListByName(ctx context.Context) ([]membership.Location, error) {
	var rows []models.LocationModel
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.Order("name ASC").Find(&rows).Error
	}); err != nil {
		return nil, err
	}
	out := make([]membership.Location, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByID returns the location or ErrLocationNotFound
func (r *GormLocationRepository) FindByID(ctx context.Context, id int64) (*membership.Location, error) {
	var row models.LocationModel
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.First(&row, "id = ?", id).Error
	}); err != nil {
		return nil, notFoundAs(err, membership.ErrLocationNotFound)
	}
	l := row.ToDomain()
	return &l, nil
}

// Create inserts l and fills in its ID
func (r *GormLocationRepository) Create(ctx context.Context, l *membership.Location) error {
	row := models.LocationModelFromDomain(l)
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return saveCatalogRow(tx, 0, row, locationErrors)
	}); err != nil {
		return err
	}
	l.ID = row.ID
	return nil
}

// Update saves the name
func (r *GormLocationRepository) Update(ctx context.Context, l *membership.Location) error {
	return r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return saveCatalogRow(tx, l.ID, models.LocationModelFromDomain(l), locationErrors)
	})
}

// DeleteUnused deletes a location no member is assigned to
func (r *GormLocationRepository) DeleteUnused(ctx context.Context, id int64) error {
	return r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return deleteUnused(tx, id, &models.LocationModel{}, &models.MemberModel{}, "location_id", locationErrors)
	})
}

// GormPriceRepository stores the price list in the tenant schema
type GormPriceRepository struct {
	sessions *SessionFactory
}

// NewGormPriceRepository creates a new GormPriceRepository
func NewGormPriceRepository(sessions *SessionFactory) *GormPriceRepository {
	return &GormPriceRepository{sessions: sessions}
}

var priceErrors = catalogWriteErrors{
	notFound: membership.ErrPriceNotFound,
	exists:   membership.ErrPriceExists,
	inUse:    membership.ErrPriceInUse,
}

// ListByAmount returns all prices, cheapest first
func (r *GormPriceRepository) ListByAmount(ctx context.Context) ([]membership.PaymentPrice, error) {
	var rows []models.PaymentPriceModel
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.Order("amount ASC").Order("id ASC").Find(&rows).Error
	}); err != nil {
		return nil, err
	}
	out := make([]membership.PaymentPrice, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindByID returns the price or ErrPriceNotFound
func (r *GormPriceRepository) FindByID(ctx context.Context, id int64) (*membership.PaymentPrice, error) {
	var row models.PaymentPriceModel
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return tx.First(&row, "id = ?", id).Error
	}); err != nil {
		return nil, notFoundAs(err, membership.ErrPriceNotFound)
	}
	p := row.ToDomain()
	return &p, nil
}

// Create inserts p and fills in its ID
func (r *GormPriceRepository) Create(ctx context.Context, p *membership.PaymentPrice) error {
	row := models.PaymentPriceModelFromDomain(p)
	if err := r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return saveCatalogRow(tx, 0, row, priceErrors)
	}); err != nil {
		return err
	}
	p.ID = row.ID
	return nil
}

// Update saves amount and description
func (r *GormPriceRepository) Update(ctx context.Context, p *membership.PaymentPrice) error {
	return r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return saveCatalogRow(tx, p.ID, models.PaymentPriceModelFromDomain(p), priceErrors)
	})
}

// DeleteUnused deletes a price no payment references
func (r *GormPriceRepository) DeleteUnused(ctx context.Context, id int64) error {
	return r.sessions.Session(ctx, func(tx *gorm.DB) error {
		return deleteUnused(tx, id, &models.PaymentPriceModel{}, &models.PaymentModel{}, "price_id", priceErrors)
	})
}

var (
	_ membership.LevelRepository    = (*GormLevelRepository)(nil)
	_ membership.LocationRepository = (*GormLocationRepository)(nil)
	_ membership.PriceRepository    = (*GormPriceRepository)(nil)
)

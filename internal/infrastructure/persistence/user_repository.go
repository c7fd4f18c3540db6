package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/clubhouse/backend/internal/domain/identity"
	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// constraintUserTenantEmail is created by the initial shared schema migration
const constraintUserTenantEmail = "uq_shared_users_tenant_email"

// GormUserRepository stores credentials in shared.users. The table name is
// schema-qualified, so it works on any session regardless of search_path.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts user and fills in its ID
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	model := models.UserModelFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return mapUserWriteError(err)
	}
	user.ID = model.ID
	return nil
}

// Update saves the mutable credential fields
func (r *GormUserRepository) Update(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	result := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"email":         model.Email,
			"password_hash": model.PasswordHash,
			"is_active":     model.IsActive,
			"is_admin":      model.IsAdmin,
		})
	if result.Error != nil {
		return mapUserWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// FindByUsername returns the oldest credential with username across tenants
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("id ASC").
		First(&model).Error
	return toUser(&model, err)
}

// FindByTenantAndUsername returns the credential for username within t
func (r *GormUserRepository) FindByTenantAndUsername(ctx context.Context, t tenant.ID, username string) (*identity.User, error) {
	var model models.UserModel
	err := r.db.WithContext(ctx).
		Where("tenant_schema = ? AND username = ?", t.String(), username).
		First(&model).Error
	return toUser(&model, err)
}

// ExistsByTenantAndUsername checks username uniqueness within t
func (r *GormUserRepository) ExistsByTenantAndUsername(ctx context.Context, t tenant.ID, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("tenant_schema = ? AND username = ?", t.String(), username).
		Count(&count).Error
	return count > 0, err
}

// ExistsByTenantAndEmail checks email uniqueness within t, ignoring excludeID
func (r *GormUserRepository) ExistsByTenantAndEmail(ctx context.Context, t tenant.ID, email string, excludeID int64) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("tenant_schema = ? AND email = ? AND id <> ?", t.String(), email, excludeID).
		Count(&count).Error
	return count > 0, err
}

func toUser(model *models.UserModel, err error) (*identity.User, error) {
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// mapUserWriteError turns constraint violations into domain errors so the raw
// constraint text never reaches a client.
func mapUserWriteError(err error) error {
	if !isUniqueViolation(err) {
		return err
	}
	if violatedConstraint(err) == constraintUserTenantEmail {
		return identity.ErrEmailInUse
	}
	return identity.ErrUserExists
}

var _ identity.UserRepository = (*GormUserRepository)(nil)

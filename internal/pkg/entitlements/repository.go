package entitlements

import (
	"errors"

	"github.com/nordwerk/teamdesk/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the entitlement reader.
type Repository interface {
	GetTenant(tenantID uint) (*models.Tenant, error)
	GetLatestSubscription(tenantID uint) (*models.Subscription, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an entitlements repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetTenant(tenantID uint) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.First(&t, tenantID).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) GetLatestSubscription(tenantID uint) (*models.Subscription, error) {
	var s models.Subscription
	err := r.db.Where("tenant_id = ?", tenantID).Order("updated_at DESC").First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// IsNotFound reports whether err is the repository's missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

package trial

import (
	"github.com/nordwerk/teamdesk/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the trial lifecycle service.
type Repository interface {
	GetTenant(tenantID uint) (*models.Tenant, error)
	HasActiveSubscription(tenantID uint) (bool, error)
	SetLifecycleState(tenantID uint, state string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a trial repository backed by GORM.
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

func (r *gormRepository) HasActiveSubscription(tenantID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.Subscription{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.SubscriptionStatusActive).
		Count(&n).Error
	return n > 0, err
}

func (r *gormRepository) SetLifecycleState(tenantID uint, state string) error {
	return r.db.Model(&models.Tenant{}).
		Where("id = ?", tenantID).
		Update("lifecycle_state", state).Error
}

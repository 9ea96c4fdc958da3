package permissions

import (
	"errors"

	"github.com/nordwerk/teamdesk/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the permission resolver.
type Repository interface {
	GetUserRoleName(userID uint) (string, error)
	ListTenantDefaults(tenantID uint) ([]models.TenantPermission, error)
	ListTeamIDs(userID uint) ([]uint, error)
	ListTeamGrants(teamIDs []uint) ([]models.TeamPermission, error)
	ListUserOverrides(userID uint) ([]models.UserPermission, error)
	CountTenantDefaultsForApp(tenantID uint, appKey string) (int64, error)
	UpsertTenantDefault(p *models.TenantPermission) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a permissions repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUserRoleName(userID uint) (string, error) {
	var user models.User
	if err := r.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if user.RoleID == nil {
		return "", nil
	}
	var role models.Role
	if err := r.db.First(&role, *user.RoleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return role.Name, nil
}

func (r *gormRepository) ListTenantDefaults(tenantID uint) ([]models.TenantPermission, error) {
	var defaults []models.TenantPermission
	err := r.db.Where("tenant_id = ?", tenantID).Find(&defaults).Error
	return defaults, err
}

func (r *gormRepository) ListTeamIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.TeamMember{}).Where("user_id = ?", userID).Pluck("team_id", &ids).Error
	return ids, err
}

func (r *gormRepository) ListTeamGrants(teamIDs []uint) ([]models.TeamPermission, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	var grants []models.TeamPermission
	err := r.db.Where("team_id IN ?", teamIDs).Find(&grants).Error
	return grants, err
}

func (r *gormRepository) ListUserOverrides(userID uint) ([]models.UserPermission, error) {
	var overrides []models.UserPermission
	err := r.db.Where("user_id = ?", userID).Find(&overrides).Error
	return overrides, err
}

func (r *gormRepository) CountTenantDefaultsForApp(tenantID uint, appKey string) (int64, error) {
	var n int64
	err := r.db.Model(&models.TenantPermission{}).
		Where("tenant_id = ? AND app_key = ?", tenantID, appKey).
		Count(&n).Error
	return n, err
}

func (r *gormRepository) UpsertTenantDefault(p *models.TenantPermission) error {
	// Create-if-absent; concurrent seeders racing on the same triple both
	// succeed without duplicating rows.
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "tenant_id"},
			{Name: "app_key"},
			{Name: "scope_key"},
		},
		DoNothing: true,
	}).Create(p).Error
}

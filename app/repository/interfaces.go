package repository

import (
	"github.com/nordwerk/teamdesk/app/models"
)

// TenantRepository defines the interface for tenant-related database operations
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id uint) (*models.Tenant, error)
	GetBySlug(slug string) (*models.Tenant, error)
	Update(tenant *models.Tenant) error
	Count() (int64, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ListByTenant(tenantID uint) ([]models.User, error)
	CountByTenant(tenantID uint) (int64, error)
	Update(user *models.User) error
	Delete(id uint) error
}

// TeamRepository defines the interface for team-related database operations
type TeamRepository interface {
	Create(team *models.Team) error
	GetByID(id uint) (*models.Team, error)
	ListByTenant(tenantID uint) ([]models.Team, error)
	AddMember(teamID, userID uint) error
	RemoveMember(teamID, userID uint) error
	Delete(id uint) error
}

// Repositories bundles all repository implementations
type Repositories struct {
	Tenant TenantRepository
	User   UserRepository
	Team   TeamRepository
}

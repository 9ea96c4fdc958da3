package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Role is a display-only label attached to a user. Authorization comes from
// the permission layers, never from the role itself.
type Role struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TenantID    uint           `gorm:"not null;index" json:"tenant_id"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Description string         `gorm:"type:text" json:"description" validate:"max=1000"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Role) Validate() error {
	v := validator.New()

	return v.Struct(r)
}

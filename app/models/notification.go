package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	NOTIFICATION_TRIAL_ENDED      = "trial_ended"
	NOTIFICATION_DELETION_WARNING = "deletion_warning"
	NOTIFICATION_SYSTEM           = "system"
)

type Notification struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TenantID  uint           `gorm:"not null;index" json:"tenant_id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	User      User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type      string         `gorm:"type:varchar(50)" json:"type" validate:"oneof=trial_ended deletion_warning system"`
	Title     string         `gorm:"type:varchar(200)" json:"title"`
	Message   string         `gorm:"type:text" json:"message"`
	DataJSON  string         `gorm:"type:text" json:"data_json"`
	IsRead    bool           `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// MarkAsRead marks a notification as read
func (n *Notification) MarkAsRead(db *gorm.DB) error {
	n.IsRead = true
	return db.Model(n).Update("is_read", true).Error
}

// CreateNotification stores a new notification row
func CreateNotification(db *gorm.DB, tenantID uint, userID uint, notificationType string, title string, message string, dataJSON string) error {
	notification := Notification{
		TenantID: tenantID,
		UserID:   userID,
		Type:     notificationType,
		Title:    title,
		Message:  message,
		DataJSON: dataJSON,
		IsRead:   false,
	}

	return db.Create(&notification).Error
}

package models

import "time"

const (
	AUDIT_TRIAL_EXPIRED      = "trial_expired"
	AUDIT_DELETION_WARNING   = "deletion_warning"
	AUDIT_PENDING_DELETION   = "pending_deletion"
	AUDIT_PERMISSIONS_SEEDED = "permissions_seeded"
	AUDIT_PERMISSION_CHANGED = "permission_changed"
	AUDIT_SUBSCRIPTION_SYNC  = "subscription_sync"
)

// AuditLog records a human-readable trace of permission and lifecycle
// changes. Rows are append-only.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TenantID   uint      `gorm:"not null;index" json:"tenant_id"`
	ActorID    uint      `gorm:"index" json:"actor_id"`
	Action     string    `gorm:"type:varchar(100);not null;index" json:"action"`
	TargetType string    `gorm:"type:varchar(100)" json:"target_type"`
	TargetID   string    `gorm:"type:varchar(100)" json:"target_id"`
	DiffJSON   string    `gorm:"type:text" json:"diff_json"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

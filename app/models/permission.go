package models

import "time"

// App and scope keys form a closed set. The mutation API rejects keys outside
// these sets before any row is written.
const (
	APP_CRM           = "crm"
	APP_KANBAN        = "kanban"
	APP_EMAIL         = "email"
	APP_MONEY         = "money"
	APP_TODOS         = "todos"
	APP_ADMIN         = "admin"
	APP_FILES         = "files"
	APP_NOTIFICATIONS = "notifications"

	SCOPE_READ   = "read"
	SCOPE_WRITE  = "write"
	SCOPE_MANAGE = "manage"
)

// AllAppKeys lists every known app in a stable order.
var AllAppKeys = []string{
	APP_CRM, APP_KANBAN, APP_EMAIL, APP_MONEY,
	APP_TODOS, APP_ADMIN, APP_FILES, APP_NOTIFICATIONS,
}

// AllScopeKeys lists every known scope in a stable order.
var AllScopeKeys = []string{SCOPE_READ, SCOPE_WRITE, SCOPE_MANAGE}

// IsKnownApp reports whether appKey belongs to the closed app set.
func IsKnownApp(appKey string) bool {
	for _, a := range AllAppKeys {
		if a == appKey {
			return true
		}
	}
	return false
}

// IsKnownScope reports whether scopeKey belongs to the closed scope set.
func IsKnownScope(scopeKey string) bool {
	switch scopeKey {
	case SCOPE_READ, SCOPE_WRITE, SCOPE_MANAGE:
		return true
	default:
		return false
	}
}

// PermissionKey renders the canonical "app:scope" form used in effective sets.
func PermissionKey(appKey, scopeKey string) string {
	return appKey + ":" + scopeKey
}

// TenantPermission is a tenant-wide default grant. Presence of a row means the
// pair is granted by default; there is no enabled flag on this layer.
type TenantPermission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  uint      `gorm:"not null;uniqueIndex:ux_tenant_permissions_key,priority:1" json:"tenant_id"`
	AppKey    string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_tenant_permissions_key,priority:2" json:"app_key"`
	ScopeKey  string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_tenant_permissions_key,priority:3" json:"scope_key"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TeamPermission is a team-level grant. A disabled row still counts as "the
// team has grants" for restrictive-mode purposes.
type TeamPermission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TeamID    uint      `gorm:"not null;uniqueIndex:ux_team_permissions_key,priority:1" json:"team_id"`
	AppKey    string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_team_permissions_key,priority:2" json:"app_key"`
	ScopeKey  string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_team_permissions_key,priority:3" json:"scope_key"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UserPermission is a per-user override. Enabled rows add, disabled rows
// revoke, and both win over every other layer.
type UserPermission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_user_permissions_key,priority:1" json:"user_id"`
	AppKey    string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_user_permissions_key,priority:2" json:"app_key"`
	ScopeKey  string    `gorm:"type:varchar(32);not null;uniqueIndex:ux_user_permissions_key,priority:3" json:"scope_key"`
	Enabled   bool      `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

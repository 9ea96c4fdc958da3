package models

import "time"

const (
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// Default entitlements applied when a tenant has no subscription row yet.
const (
	DefaultSeatsEntitled     = 1
	DefaultStorageEntitledGB = 5
)

// Subscription mirrors provider subscription state for one tenant. Multiple
// historical rows may exist; the most-recently-updated row wins.
type Subscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	TenantID               uint       `gorm:"not null;index" json:"tenant_id"`
	Provider               string     `gorm:"type:varchar(20);not null;index:ux_subscriptions_provider_subid,unique,priority:1" json:"provider"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_subscriptions_provider_subid,unique,priority:2" json:"provider_subscription_id"`
	ProviderCustomerID     string     `gorm:"type:varchar(191);index" json:"provider_customer_id"`
	Plan                   string     `gorm:"type:varchar(50);not null;default:'individual';index" json:"plan"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'trialing';index" json:"status"`
	SeatsEntitled          int        `gorm:"not null;default:1" json:"seats_entitled"`
	StorageEntitledGB      int        `gorm:"not null;default:5" json:"storage_entitled_gb"`
	CurrentPeriodEnd       *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	RawPayloadJSON         string     `gorm:"type:longtext" json:"raw_payload_json"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the subscription currently pays for the tenant.
func (s *Subscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

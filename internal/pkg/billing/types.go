package billing

import "time"

// NormalizedSubscription is the provider-agnostic shape used by the billing
// service when syncing external subscription state into local tables.
type NormalizedSubscription struct {
	TenantID               uint
	Provider               string
	ProviderSubscriptionID string
	ProviderCustomerID     string
	Plan                   string
	Status                 string
	SeatsEntitled          int
	StorageEntitledGB      int
	CurrentPeriodEnd       *time.Time
	RawPayloadJSON         string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

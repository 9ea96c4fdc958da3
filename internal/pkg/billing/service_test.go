package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nordwerk/teamdesk/app/models"
)

type fakeBillingRepo struct {
	subs      []models.Subscription
	planSets  []string
	stateSets []string
	events    map[string]*models.WebhookEvent
	processed []uint
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{events: make(map[string]*models.WebhookEvent)}
}

func (f *fakeBillingRepo) UpsertSubscription(sub *models.Subscription) error {
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *fakeBillingRepo) GetTenant(tenantID uint) (*models.Tenant, error) {
	return &models.Tenant{ID: tenantID}, nil
}

func (f *fakeBillingRepo) SetTenantPlanAndState(tenantID uint, plan, state string) error {
	f.planSets = append(f.planSets, plan)
	f.stateSets = append(f.stateSets, state)
	return nil
}

func (f *fakeBillingRepo) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	key := event.Provider + "/" + event.ProviderEventID
	if existing, ok := f.events[key]; ok {
		return false, existing, nil
	}
	event.ID = uint(len(f.events) + 1)
	f.events[key] = event
	return true, event, nil
}

func (f *fakeBillingRepo) MarkWebhookProcessed(id uint, processingError string) error {
	f.processed = append(f.processed, id)
	return nil
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"active", models.SubscriptionStatusActive},
		{" ACTIVE ", models.SubscriptionStatusActive},
		{"past_due", models.SubscriptionStatusPastDue},
		{"canceled", models.SubscriptionStatusCanceled},
		{"trialing", models.SubscriptionStatusTrialing},
		{"", models.SubscriptionStatusTrialing},
		{"whatever", models.SubscriptionStatusTrialing},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeStatus(tt.in), tt.in)
	}
}

func TestIsEntitlingStatus(t *testing.T) {
	assert.True(t, isEntitlingStatus("active"))
	assert.False(t, isEntitlingStatus("trialing"))
	assert.False(t, isEntitlingStatus("past_due"))
	assert.False(t, isEntitlingStatus("canceled"))
}

func TestSyncSubscription(t *testing.T) {
	t.Run("active status promotes the tenant lifecycle", func(t *testing.T) {
		repo := newFakeBillingRepo()
		svc := NewService(repo, nil)

		sub, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
			TenantID:               1,
			Provider:               "Stripe",
			ProviderSubscriptionID: "sub_123",
			Plan:                   "Enterprise",
			Status:                 "active",
			SeatsEntitled:          10,
			StorageEntitledGB:      100,
		})
		require.NoError(t, err)

		assert.Equal(t, "stripe", sub.Provider)
		assert.Equal(t, "enterprise", sub.Plan)
		assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
		assert.Equal(t, []string{"enterprise"}, repo.planSets)
		assert.Equal(t, []string{models.LIFECYCLE_ACTIVE}, repo.stateSets)
	})

	t.Run("non-entitling status syncs without touching lifecycle", func(t *testing.T) {
		repo := newFakeBillingRepo()
		svc := NewService(repo, nil)

		_, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
			TenantID:               1,
			Provider:               "stripe",
			ProviderSubscriptionID: "sub_123",
			Plan:                   "enterprise",
			Status:                 "canceled",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{""}, repo.stateSets, "empty state means keep current")
	})

	t.Run("missing quotas fall back to defaults", func(t *testing.T) {
		repo := newFakeBillingRepo()
		svc := NewService(repo, nil)

		sub, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{
			TenantID:               1,
			Provider:               "stripe",
			ProviderSubscriptionID: "sub_123",
		})
		require.NoError(t, err)
		assert.Equal(t, models.DefaultSeatsEntitled, sub.SeatsEntitled)
		assert.Equal(t, models.DefaultStorageEntitledGB, sub.StorageEntitledGB)
		assert.Equal(t, models.SubscriptionStatusTrialing, sub.Status)
	})

	t.Run("rejects incomplete input", func(t *testing.T) {
		svc := NewService(newFakeBillingRepo(), nil)
		_, err := svc.SyncSubscription(context.Background(), NormalizedSubscription{Provider: "stripe"})
		assert.Error(t, err)
	})
}

func TestRecordWebhookEvent(t *testing.T) {
	repo := newFakeBillingRepo()
	svc := NewService(repo, nil)

	created, event, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:        "Stripe",
		ProviderEventID: "evt_1",
		EventType:       "subscription.updated",
		PayloadJSON:     `{"id":"evt_1"}`,
		SignatureValid:  true,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "stripe", event.Provider)

	// Same event again is a recorded duplicate.
	created, dup, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:        "stripe",
		ProviderEventID: "evt_1",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, event.ID, dup.ID)
}

func TestRecordWebhookEvent_HashFallbackEventID(t *testing.T) {
	repo := newFakeBillingRepo()
	svc := NewService(repo, nil)

	created, event, err := svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    "stripe",
		PayloadJSON: `{"some":"payload"}`,
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, event.ProviderEventID, "hash:")

	// Replaying the same payload maps to the same synthetic ID.
	created, _, err = svc.RecordWebhookEvent(context.Background(), WebhookEventInput{
		Provider:    "stripe",
		PayloadJSON: `{"some":"payload"}`,
	})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"event_id":"evt_1"}`)
	secret := "whsec_test"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	validSig := hex.EncodeToString(mac.Sum(nil))

	tests := []struct {
		name     string
		sig      string
		secret   string
		expected bool
	}{
		{"valid signature", validSig, secret, true},
		{"surrounding whitespace is trimmed", "  " + validSig + " ", secret, true},
		{"wrong signature", hex.EncodeToString(make([]byte, 32)), secret, false},
		{"not hex", "zz" + validSig[2:], secret, false},
		{"empty signature", "", secret, false},
		{"empty secret", validSig, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, VerifyWebhookSignature(payload, tt.sig, tt.secret))
		})
	}
}

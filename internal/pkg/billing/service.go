package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/audit"
)

// Service provides provider-neutral billing synchronization. It is the only
// writer that moves a tenant's lifecycle state to active.
type Service struct {
	repo    Repository
	auditor *audit.Recorder
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, auditor: auditor}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), audit.NewRecorder(db))
}

// SyncSubscription upserts provider subscription data and reconciles the
// tenant's plan and lifecycle state. On an entitling status the tenant moves
// to active; the trial scheduler's pending jobs then skip the tenant.
func (s *Service) SyncSubscription(ctx context.Context, in NormalizedSubscription) (*models.Subscription, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if in.TenantID == 0 || provider == "" || strings.TrimSpace(in.ProviderSubscriptionID) == "" {
		return nil, errors.New("tenant_id, provider and provider_subscription_id are required")
	}

	plan := normalizePlan(in.Plan)
	status := normalizeStatus(in.Status)

	seats := in.SeatsEntitled
	if seats <= 0 {
		seats = models.DefaultSeatsEntitled
	}
	storage := in.StorageEntitledGB
	if storage <= 0 {
		storage = models.DefaultStorageEntitledGB
	}

	sub := &models.Subscription{
		TenantID:               in.TenantID,
		Provider:               provider,
		ProviderSubscriptionID: strings.TrimSpace(in.ProviderSubscriptionID),
		ProviderCustomerID:     strings.TrimSpace(in.ProviderCustomerID),
		Plan:                   plan,
		Status:                 status,
		SeatsEntitled:          seats,
		StorageEntitledGB:      storage,
		CurrentPeriodEnd:       in.CurrentPeriodEnd,
		RawPayloadJSON:         in.RawPayloadJSON,
	}
	if err := s.repo.UpsertSubscription(sub); err != nil {
		return nil, err
	}

	state := ""
	if isEntitlingStatus(status) {
		state = models.LIFECYCLE_ACTIVE
	}
	if err := s.repo.SetTenantPlanAndState(in.TenantID, plan, state); err != nil {
		return sub, err
	}

	s.auditor.Record(ctx, in.TenantID, 0, models.AUDIT_SUBSCRIPTION_SYNC, "subscription", sub.ProviderSubscriptionID, map[string]interface{}{
		"plan":   plan,
		"status": status,
	})
	return sub, nil
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.WebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.WebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

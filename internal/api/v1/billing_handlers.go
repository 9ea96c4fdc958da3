package apiv1

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/nordwerk/teamdesk/internal/pkg/billing"
	"github.com/nordwerk/teamdesk/internal/pkg/env"
	"github.com/nordwerk/teamdesk/internal/pkg/usercontext"
)

type webhookPayload struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Data      struct {
		TenantID               uint   `json:"tenant_id"`
		ProviderSubscriptionID string `json:"subscription_id"`
		ProviderCustomerID     string `json:"customer_id"`
		Plan                   string `json:"plan"`
		Status                 string `json:"status"`
		SeatsEntitled          int    `json:"seats_entitled"`
		StorageEntitledGB      int    `json:"storage_entitled_gb"`
		CurrentPeriodEnd       string `json:"current_period_end"`
	} `json:"data"`
}

// PostBillingWebhook ingests provider webhooks. Events are stored before
// processing, so replays and provider retries short-circuit on the stored row.
func (s *APIServer) PostBillingWebhook(c *fiber.Ctx) error {
	provider := c.Params("provider")
	body := c.Body()

	secret := env.GetEnv("BILLING_WEBHOOK_SECRET", "")
	signatureValid := billing.VerifyWebhookSignature(body, c.Get("X-Webhook-Signature"), secret)

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return badRequest(c, "invalid webhook payload")
	}

	created, event, err := s.billing.RecordWebhookEvent(c.UserContext(), billing.WebhookEventInput{
		Provider:        provider,
		ProviderEventID: payload.EventID,
		EventType:       payload.EventType,
		PayloadJSON:     string(body),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return internalError(c, err)
	}
	if !created {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	if !signatureValid {
		log.Warnf("[Billing] Rejected webhook %s from %s: bad signature", payload.EventID, provider)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid signature",
		})
	}

	sub := billing.NormalizedSubscription{
		TenantID:               payload.Data.TenantID,
		Provider:               provider,
		ProviderSubscriptionID: payload.Data.ProviderSubscriptionID,
		ProviderCustomerID:     payload.Data.ProviderCustomerID,
		Plan:                   payload.Data.Plan,
		Status:                 payload.Data.Status,
		SeatsEntitled:          payload.Data.SeatsEntitled,
		StorageEntitledGB:      payload.Data.StorageEntitledGB,
		CurrentPeriodEnd:       parsePeriodEnd(payload.Data.CurrentPeriodEnd),
		RawPayloadJSON:         string(body),
	}
	_, syncErr := s.billing.SyncSubscription(c.UserContext(), sub)
	if err := s.billing.MarkWebhookProcessed(c.UserContext(), event.ID, syncErr); err != nil {
		log.Errorf("[Billing] Could not mark webhook %d processed: %v", event.ID, err)
	}
	if syncErr != nil {
		return internalError(c, syncErr)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

type checkoutConfirmRequest struct {
	Provider               string `json:"provider"`
	ProviderSubscriptionID string `json:"subscription_id"`
	ProviderCustomerID     string `json:"customer_id"`
	Plan                   string `json:"plan"`
	Status                 string `json:"status"`
	SeatsEntitled          int    `json:"seats_entitled"`
	StorageEntitledGB      int    `json:"storage_entitled_gb"`
	CurrentPeriodEnd       string `json:"current_period_end"`
}

// PostCheckoutConfirm syncs subscription state right after checkout instead of
// waiting for the provider webhook to arrive.
func (s *APIServer) PostCheckoutConfirm(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	var req checkoutConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	sub, err := s.billing.SyncSubscription(c.UserContext(), billing.NormalizedSubscription{
		TenantID:               uc.TenantID,
		Provider:               req.Provider,
		ProviderSubscriptionID: req.ProviderSubscriptionID,
		ProviderCustomerID:     req.ProviderCustomerID,
		Plan:                   req.Plan,
		Status:                 req.Status,
		SeatsEntitled:          req.SeatsEntitled,
		StorageEntitledGB:      req.StorageEntitledGB,
		CurrentPeriodEnd:       parsePeriodEnd(req.CurrentPeriodEnd),
	})
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"subscription": sub})
}

func parsePeriodEnd(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &t
}

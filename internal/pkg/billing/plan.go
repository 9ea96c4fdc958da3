package billing

import (
	"strings"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/entitlements"
)

func normalizePlan(plan string) string {
	return string(entitlements.NormalizePlan(plan))
}

func normalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case models.SubscriptionStatusActive:
		return models.SubscriptionStatusActive
	case models.SubscriptionStatusPastDue:
		return models.SubscriptionStatusPastDue
	case models.SubscriptionStatusCanceled:
		return models.SubscriptionStatusCanceled
	default:
		return models.SubscriptionStatusTrialing
	}
}

// isEntitlingStatus reports whether the status keeps the tenant paid-for and
// out of the scheduler's reach.
func isEntitlingStatus(status string) bool {
	return normalizeStatus(status) == models.SubscriptionStatusActive
}

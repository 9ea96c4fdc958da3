package entitlements

import (
	"strings"

	"github.com/nordwerk/teamdesk/app/models"
)

type Plan string

const (
	PlanIndividual Plan = "individual"
	PlanEnterprise Plan = "enterprise"
)

// NormalizePlan maps arbitrary input to a known plan, defaulting to individual.
func NormalizePlan(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanEnterprise):
		return PlanEnterprise
	default:
		return PlanIndividual
	}
}

// IsEnterprise performs the case-insensitive, trimmed plan comparison used by
// the plan-only gate.
func IsEnterprise(plan string) bool {
	return strings.EqualFold(strings.TrimSpace(plan), string(PlanEnterprise))
}

// Entitlements is the per-tenant quota and lifecycle snapshot.
type Entitlements struct {
	Plan              string `json:"plan"`
	SeatsEntitled     int    `json:"seats_entitled"`
	StorageEntitledGB int    `json:"storage_entitled_gb"`
	LifecycleState    string `json:"lifecycle_state"`
}

// DefaultEntitlements is what a tenant gets with no subscription row at all.
func DefaultEntitlements() Entitlements {
	return Entitlements{
		Plan:              string(PlanIndividual),
		SeatsEntitled:     models.DefaultSeatsEntitled,
		StorageEntitledGB: models.DefaultStorageEntitledGB,
		LifecycleState:    models.LIFECYCLE_TRIAL_ACTIVE,
	}
}

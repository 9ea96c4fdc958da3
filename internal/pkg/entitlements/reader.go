package entitlements

import (
	"context"

	"gorm.io/gorm"
)

// Reader answers "what is this tenant entitled to right now". Pure read, no
// side effects.
type Reader struct {
	repo Repository
}

// NewReader creates a reader from an injected repository.
func NewReader(repo Repository) *Reader {
	return &Reader{repo: repo}
}

// NewReaderFromDB creates a reader from a GORM DB handle.
func NewReaderFromDB(db *gorm.DB) *Reader {
	return NewReader(NewRepository(db))
}

// GetEntitlements resolves plan, quotas and lifecycle state for a tenant.
// Missing rows produce defensive defaults instead of errors so the gate keeps
// working on partially-provisioned tenants.
func (r *Reader) GetEntitlements(ctx context.Context, tenantID uint) (Entitlements, error) {
	_ = ctx
	ent := DefaultEntitlements()

	tenant, err := r.repo.GetTenant(tenantID)
	if err != nil {
		if IsNotFound(err) {
			return ent, nil
		}
		return ent, err
	}

	if tenant.LifecycleState != "" {
		ent.LifecycleState = tenant.LifecycleState
	}
	if tenant.Plan != "" {
		ent.Plan = string(NormalizePlan(tenant.Plan))
	}

	sub, err := r.repo.GetLatestSubscription(tenantID)
	if err != nil {
		if IsNotFound(err) {
			return ent, nil
		}
		return ent, err
	}

	// Most-recently-updated subscription wins over the tenant's stored plan.
	ent.Plan = string(NormalizePlan(sub.Plan))
	if sub.SeatsEntitled > 0 {
		ent.SeatsEntitled = sub.SeatsEntitled
	}
	if sub.StorageEntitledGB > 0 {
		ent.StorageEntitledGB = sub.StorageEntitledGB
	}
	return ent, nil
}

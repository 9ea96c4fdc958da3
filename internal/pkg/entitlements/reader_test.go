package entitlements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nordwerk/teamdesk/app/models"
)

type fakeRepo struct {
	tenant *models.Tenant
	sub    *models.Subscription
}

func (f *fakeRepo) GetTenant(tenantID uint) (*models.Tenant, error) {
	if f.tenant == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.tenant, nil
}

func (f *fakeRepo) GetLatestSubscription(tenantID uint) (*models.Subscription, error) {
	if f.sub == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.sub, nil
}

func TestGetEntitlements(t *testing.T) {
	tests := []struct {
		name     string
		repo     *fakeRepo
		expected Entitlements
	}{
		{
			name: "missing tenant falls back to defaults",
			repo: &fakeRepo{},
			expected: Entitlements{
				Plan:              "individual",
				SeatsEntitled:     1,
				StorageEntitledGB: 5,
				LifecycleState:    models.LIFECYCLE_TRIAL_ACTIVE,
			},
		},
		{
			name: "tenant without subscription keeps tenant plan and state",
			repo: &fakeRepo{
				tenant: &models.Tenant{Plan: models.PLAN_ENTERPRISE, LifecycleState: models.LIFECYCLE_TRIAL_EXPIRED},
			},
			expected: Entitlements{
				Plan:              "enterprise",
				SeatsEntitled:     1,
				StorageEntitledGB: 5,
				LifecycleState:    models.LIFECYCLE_TRIAL_EXPIRED,
			},
		},
		{
			name: "subscription plan and quotas win over tenant plan",
			repo: &fakeRepo{
				tenant: &models.Tenant{Plan: models.PLAN_INDIVIDUAL, LifecycleState: models.LIFECYCLE_ACTIVE},
				sub:    &models.Subscription{Plan: "Enterprise", SeatsEntitled: 25, StorageEntitledGB: 500},
			},
			expected: Entitlements{
				Plan:              "enterprise",
				SeatsEntitled:     25,
				StorageEntitledGB: 500,
				LifecycleState:    models.LIFECYCLE_ACTIVE,
			},
		},
		{
			name: "zero quotas on the subscription keep the defaults",
			repo: &fakeRepo{
				tenant: &models.Tenant{Plan: models.PLAN_ENTERPRISE, LifecycleState: models.LIFECYCLE_ACTIVE},
				sub:    &models.Subscription{Plan: "enterprise"},
			},
			expected: Entitlements{
				Plan:              "enterprise",
				SeatsEntitled:     1,
				StorageEntitledGB: 5,
				LifecycleState:    models.LIFECYCLE_ACTIVE,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ent, err := NewReader(tt.repo).GetEntitlements(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ent)
		})
	}
}

func TestNormalizePlan(t *testing.T) {
	assert.Equal(t, PlanEnterprise, NormalizePlan("enterprise"))
	assert.Equal(t, PlanEnterprise, NormalizePlan("  Enterprise "))
	assert.Equal(t, PlanIndividual, NormalizePlan("individual"))
	assert.Equal(t, PlanIndividual, NormalizePlan(""))
	assert.Equal(t, PlanIndividual, NormalizePlan("gold"))
}

func TestIsEnterprise(t *testing.T) {
	assert.True(t, IsEnterprise("enterprise"))
	assert.True(t, IsEnterprise(" ENTERPRISE "))
	assert.False(t, IsEnterprise("individual"))
	assert.False(t, IsEnterprise(""))
}

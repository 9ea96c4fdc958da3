package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTrial(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	tenant := &Tenant{Name: "Acme", Slug: "acme", Plan: PLAN_ENTERPRISE, LifecycleState: LIFECYCLE_TRIAL_EXPIRED}

	tenant.StartTrial(now)

	require.NotNil(t, tenant.TrialStartedAt)
	require.NotNil(t, tenant.TrialEndsAt)
	assert.Equal(t, now, *tenant.TrialStartedAt)
	assert.Equal(t, now.Add(30*24*time.Hour), *tenant.TrialEndsAt)
	assert.Equal(t, LIFECYCLE_TRIAL_ACTIVE, tenant.LifecycleState)
}

func TestIsTrialExpired(t *testing.T) {
	assert.True(t, (&Tenant{LifecycleState: LIFECYCLE_TRIAL_EXPIRED}).IsTrialExpired())
	assert.False(t, (&Tenant{LifecycleState: LIFECYCLE_TRIAL_ACTIVE}).IsTrialExpired())
	assert.False(t, (&Tenant{LifecycleState: LIFECYCLE_ACTIVE}).IsTrialExpired())
	assert.False(t, (&Tenant{LifecycleState: LIFECYCLE_PENDING_DELETION}).IsTrialExpired())
}

func TestTenantValidate(t *testing.T) {
	tenant := &Tenant{Name: "Acme", Slug: "acme", Plan: PLAN_INDIVIDUAL, LifecycleState: LIFECYCLE_TRIAL_ACTIVE}
	assert.NoError(t, tenant.Validate())

	assert.Error(t, (&Tenant{Name: "A", Slug: "acme", Plan: PLAN_INDIVIDUAL, LifecycleState: LIFECYCLE_TRIAL_ACTIVE}).Validate())
	assert.Error(t, (&Tenant{Name: "Acme", Slug: "acme", Plan: "gold", LifecycleState: LIFECYCLE_TRIAL_ACTIVE}).Validate())
	assert.Error(t, (&Tenant{Name: "Acme", Slug: "acme", Plan: PLAN_INDIVIDUAL, LifecycleState: "limbo"}).Validate())
}

func TestCreateUser(t *testing.T) {
	user, err := CreateUser(1, "Jamie Doe", "jamie@example.com", "s3cret-pw")
	require.NoError(t, err)

	assert.Equal(t, uint(1), user.TenantID)
	assert.Equal(t, STATUS_ACTIVE, user.Status)
	assert.NotEqual(t, "s3cret-pw", user.Password, "password must be hashed")
	assert.True(t, user.CheckPassword("s3cret-pw"))
	assert.False(t, user.CheckPassword("wrong"))

	_, err = CreateUser(1, "Jamie Doe", "not-an-email", "s3cret-pw")
	assert.Error(t, err)
	_, err = CreateUser(1, "Jamie Doe", "jamie@example.com", "short")
	assert.Error(t, err)
}

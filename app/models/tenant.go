package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	PLAN_INDIVIDUAL = "individual"
	PLAN_ENTERPRISE = "enterprise"

	LIFECYCLE_TRIAL_ACTIVE     = "trial_active"
	LIFECYCLE_ACTIVE           = "active"
	LIFECYCLE_TRIAL_EXPIRED    = "trial_expired"
	LIFECYCLE_PENDING_DELETION = "pending_deletion"
)

// TrialDuration is the time a fresh tenant can use the product before the
// day-30 transition fires.
const TrialDuration = 30 * 24 * time.Hour

type Tenant struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Name           string         `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Slug           string         `gorm:"uniqueIndex;type:varchar(100)" json:"slug" validate:"required,min=2,max=100"`
	Plan           string         `gorm:"type:varchar(50);default:'individual';index" json:"plan" validate:"oneof=individual enterprise"`
	LifecycleState string         `gorm:"type:varchar(32);default:'trial_active';index" json:"lifecycle_state" validate:"oneof=trial_active active trial_expired pending_deletion"`
	TrialStartedAt *time.Time     `gorm:"type:timestamp;default:null" json:"trial_started_at,omitempty"`
	TrialEndsAt    *time.Time     `gorm:"type:timestamp;default:null" json:"trial_ends_at,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Tenant) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// StartTrial fixes the trial window on a fresh tenant. Calling it again
// moves the window, which also re-arms the lifecycle jobs.
func (t *Tenant) StartTrial(now time.Time) {
	ends := now.Add(TrialDuration)
	t.TrialStartedAt = &now
	t.TrialEndsAt = &ends
	t.LifecycleState = LIFECYCLE_TRIAL_ACTIVE
}

// IsTrialExpired reports whether the tenant is blocked by the trial gate.
func (t *Tenant) IsTrialExpired() bool {
	return t.LifecycleState == LIFECYCLE_TRIAL_EXPIRED
}

package trial

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/audit"
	"github.com/nordwerk/teamdesk/internal/pkg/notify"
)

// Service executes the delayed lifecycle transitions. It implements
// jobqueue.TrialExecutor and is registered with the queue at startup.
type Service struct {
	repo     Repository
	notifier *notify.Notifier
	auditor  *audit.Recorder
}

// NewService creates a trial service from an injected repository and sinks.
func NewService(repo Repository, notifier *notify.Notifier, auditor *audit.Recorder) *Service {
	return &Service{repo: repo, notifier: notifier, auditor: auditor}
}

// NewServiceFromDB creates a trial service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), notify.NewNotifier(db), audit.NewRecorder(db))
}

// ExpireTrial is the day-30 transition. It is a no-op when the tenant has an
// active subscription at execution time; at-least-once delivery and duplicate
// scheduling are absorbed here, not in the queue.
func (s *Service) ExpireTrial(ctx context.Context, tenantID uint) error {
	tenant, err := s.repo.GetTenant(tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Trial] Tenant %d gone, skipping expire transition", tenantID)
			return nil
		}
		return err
	}

	active, err := s.repo.HasActiveSubscription(tenantID)
	if err != nil {
		return err
	}
	if active {
		log.Infof("[Trial] Tenant %d has an active subscription, skipping expire transition", tenantID)
		return nil
	}

	if err := s.repo.SetLifecycleState(tenantID, models.LIFECYCLE_TRIAL_EXPIRED); err != nil {
		return err
	}

	s.notifier.NotifyTenant(ctx, tenantID,
		models.NOTIFICATION_TRIAL_ENDED,
		"Your trial has ended",
		"Your 30-day trial is over. Upgrade now to keep access to your workspace.",
		map[string]interface{}{"tenant_id": tenantID})
	s.auditor.Record(ctx, tenantID, 0, models.AUDIT_TRIAL_EXPIRED, "tenant", "", map[string]interface{}{
		"from": tenant.LifecycleState,
		"to":   models.LIFECYCLE_TRIAL_EXPIRED,
	})
	return nil
}

// SendDeletionWarning is the day-37 transition. It fires on the original
// schedule regardless of current subscription status.
func (s *Service) SendDeletionWarning(ctx context.Context, tenantID uint) error {
	if _, err := s.repo.GetTenant(tenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Trial] Tenant %d gone, skipping deletion warning", tenantID)
			return nil
		}
		return err
	}

	s.notifier.NotifyTenant(ctx, tenantID,
		models.NOTIFICATION_DELETION_WARNING,
		"Final warning: workspace deletion",
		"Your workspace will be scheduled for deletion in 30 days unless you upgrade.",
		map[string]interface{}{"tenant_id": tenantID})
	s.auditor.Record(ctx, tenantID, 0, models.AUDIT_DELETION_WARNING, "tenant", "", nil)
	return nil
}

// MarkPendingDeletion is the day-67 transition. Like the warning, it fires
// regardless of subscription status.
func (s *Service) MarkPendingDeletion(ctx context.Context, tenantID uint) error {
	tenant, err := s.repo.GetTenant(tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnf("[Trial] Tenant %d gone, skipping pending-deletion transition", tenantID)
			return nil
		}
		return err
	}

	if err := s.repo.SetLifecycleState(tenantID, models.LIFECYCLE_PENDING_DELETION); err != nil {
		return err
	}

	s.auditor.Record(ctx, tenantID, 0, models.AUDIT_PENDING_DELETION, "tenant", "", map[string]interface{}{
		"from": tenant.LifecycleState,
		"to":   models.LIFECYCLE_PENDING_DELETION,
	})
	return nil
}

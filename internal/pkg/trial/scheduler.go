package trial

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/nordwerk/teamdesk/app/models"
	"github.com/nordwerk/teamdesk/internal/pkg/jobqueue"
)

// Offsets of the warning and deletion transitions relative to trial_ends_at.
const (
	WarningOffset  = 7 * 24 * time.Hour
	DeletionOffset = 37 * 24 * time.Hour
)

// Enqueuer is the slice of the job queue the scheduler needs.
type Enqueuer interface {
	EnqueueJobIn(jobType jobqueue.JobType, payload map[string]interface{}, delay time.Duration) (*jobqueue.Job, error)
}

// Scheduler arms the three delayed lifecycle transitions for a tenant.
type Scheduler struct {
	queue Enqueuer
	now   func() time.Time
}

func NewScheduler(queue Enqueuer) *Scheduler {
	return &Scheduler{queue: queue, now: time.Now}
}

// TransitionDelays computes how far in the future each transition fires,
// clamped at zero. Targets already in the past fire immediately.
func TransitionDelays(trialEndsAt, now time.Time) (expire, warning, deletion time.Duration) {
	expire = trialEndsAt.Sub(now)
	warning = trialEndsAt.Add(WarningOffset).Sub(now)
	deletion = trialEndsAt.Add(DeletionOffset).Sub(now)
	if expire < 0 {
		expire = 0
	}
	if warning < 0 {
		warning = 0
	}
	if deletion < 0 {
		deletion = 0
	}
	return expire, warning, deletion
}

// ScheduleTrialJobs enqueues the day-30/37/67 transitions for the tenant.
// Calling it twice for the same tenant arms a second set of jobs; the
// execution-time checks in Service make the duplicates harmless for the
// expire transition only.
func (s *Scheduler) ScheduleTrialJobs(tenant *models.Tenant) error {
	if tenant == nil || tenant.TrialEndsAt == nil {
		return errors.New("tenant has no trial end date")
	}

	now := s.now()
	expireDelay, warningDelay, deletionDelay := TransitionDelays(*tenant.TrialEndsAt, now)

	transitions := []struct {
		jobType jobqueue.JobType
		name    string
		delay   time.Duration
	}{
		{jobqueue.JobTypeTrialExpire, "expire", expireDelay},
		{jobqueue.JobTypeTrialDeletionWarning, "deletion_warning", warningDelay},
		{jobqueue.JobTypeTrialPendingDeletion, "pending_deletion", deletionDelay},
	}

	for _, t := range transitions {
		payload := jobqueue.TrialTransitionJobPayload{
			TenantID:    tenant.ID,
			Transition:  t.name,
			TrialEndsAt: *tenant.TrialEndsAt,
		}
		if _, err := s.queue.EnqueueJobIn(t.jobType, payload.ToMap(), t.delay); err != nil {
			return err
		}
		log.Infof("[Trial] Scheduled %s for tenant %d in %s", t.name, tenant.ID, t.delay)
	}
	return nil
}

package jobqueue

import (
	"context"
	"fmt"
	"sync"
)

// TrialExecutor applies one lifecycle transition to a tenant. The trial
// package provides the implementation; it is registered at startup to keep
// the dependency one-directional.
type TrialExecutor interface {
	ExpireTrial(ctx context.Context, tenantID uint) error
	SendDeletionWarning(ctx context.Context, tenantID uint) error
	MarkPendingDeletion(ctx context.Context, tenantID uint) error
}

var (
	trialExecutorMu sync.RWMutex
	trialExecutor   TrialExecutor
)

// SetTrialExecutor registers the executor used by trial transition jobs.
func SetTrialExecutor(e TrialExecutor) {
	trialExecutorMu.Lock()
	defer trialExecutorMu.Unlock()
	trialExecutor = e
}

func getTrialExecutor() TrialExecutor {
	trialExecutorMu.RLock()
	defer trialExecutorMu.RUnlock()
	return trialExecutor
}

// processTrialTransitionJob dispatches one delayed lifecycle transition.
func (q *Queue) processTrialTransitionJob(ctx context.Context, job *Job) error {
	executor := getTrialExecutor()
	if executor == nil {
		return fmt.Errorf("no trial executor registered")
	}

	payload, err := TrialTransitionJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid trial transition payload: %w", err)
	}
	if payload.TenantID == 0 {
		return fmt.Errorf("trial transition payload missing tenant_id")
	}

	switch job.Type {
	case JobTypeTrialExpire:
		return executor.ExpireTrial(ctx, payload.TenantID)
	case JobTypeTrialDeletionWarning:
		return executor.SendDeletionWarning(ctx, payload.TenantID)
	case JobTypeTrialPendingDeletion:
		return executor.MarkPendingDeletion(ctx, payload.TenantID)
	default:
		return fmt.Errorf("not a trial transition job: %s", job.Type)
	}
}

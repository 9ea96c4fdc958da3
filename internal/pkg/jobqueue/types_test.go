package jobqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrialTransitionJobPayloadRoundTrip(t *testing.T) {
	ends := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	payload := TrialTransitionJobPayload{
		TenantID:    42,
		Transition:  "expire",
		TrialEndsAt: ends,
	}

	m := payload.ToMap()
	assert.Equal(t, uint(42), m["tenant_id"])
	assert.Equal(t, "expire", m["transition"])
	assert.Equal(t, "2026-04-01T09:30:00Z", m["trial_ends_at"])

	restored, err := TrialTransitionJobPayloadFromMap(m)
	require.NoError(t, err)
	assert.Equal(t, uint(42), restored.TenantID)
	assert.Equal(t, "expire", restored.Transition)
	assert.True(t, restored.TrialEndsAt.Equal(ends))
}

func TestJobStatusTransitions(t *testing.T) {
	job := &Job{
		ID:         "job-1",
		Type:       JobTypeTrialExpire,
		Status:     JobStatusPending,
		MaxRetries: 3,
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("redis timeout")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "redis timeout", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsRetrying()
	assert.Equal(t, JobStatusRetrying, job.Status)

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
	assert.Empty(t, job.ErrorMsg)
	assert.False(t, job.IsRetryable())
}

func TestJobIsRetryableExhaustsRetries(t *testing.T) {
	job := &Job{Status: JobStatusPending, MaxRetries: 2}

	job.MarkAsFailed("boom")
	assert.True(t, job.IsRetryable())
	job.MarkAsFailed("boom")
	assert.False(t, job.IsRetryable(), "retry budget spent")
}

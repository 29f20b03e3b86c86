package jobs

import (
	"encoding/json"
	"time"

	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// JobStatus represents the lifecycle status of a background job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// JobKind identifies which handler processes a job
type JobKind string

const (
	JobKindCampaignSend  JobKind = "campaign_send"
	JobKindSEOAudit      JobKind = "seo_audit"
	JobKindAssistantSEO  JobKind = "assistant_seo"
	JobKindProposalPDF   JobKind = "proposal_pdf"
	JobKindStoreSync     JobKind = "store_sync"
	JobKindInvoiceSweep  JobKind = "invoice_sweep"
	JobKindCampaignSweep JobKind = "campaign_sweep"
)

const (
	// DefaultMaxAttempts is how many times a job runs before it fails for good
	DefaultMaxAttempts = 3
	// RetryBaseDelay is the first retry delay; each further attempt doubles it
	RetryBaseDelay = 30 * time.Second
)

// Job is the database record of one unit of background work. The row is
// the source of truth; the queue only carries the job ID, so a lost queue
// entry is recoverable by polling the table.
type Job struct {
	shared.OrgAggregateRoot
	Kind        JobKind   `gorm:"type:varchar(30);not null;index"`
	Status      JobStatus `gorm:"type:varchar(10);not null;default:'pending';index"`
	Payload     string    `gorm:"type:jsonb;not null;default:'{}'"`
	Attempts    int       `gorm:"not null;default:0"`
	MaxAttempts int       `gorm:"not null;default:3"`
	RunAt       time.Time `gorm:"type:timestamptz;not null;index"` // Earliest time the job may run

	StartedAt  *time.Time `gorm:"type:timestamptz"`
	FinishedAt *time.Time `gorm:"type:timestamptz"`
	LastError  string     `gorm:"type:text"`
	Result     string     `gorm:"type:jsonb"` // Handler output for inspection, JSON
}

// TableName returns the table name for GORM
func (Job) TableName() string {
	return "background_jobs"
}

// NewJob creates a pending job carrying a JSON payload
func NewJob(orgID uuid.UUID, kind JobKind, payload interface{}) (*Job, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if kind == "" {
		return nil, shared.NewDomainError("INVALID_KIND", "Job kind cannot be empty")
	}

	body := "{}"
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PAYLOAD", "Job payload is not serializable")
		}
		body = string(raw)
	}

	return &Job{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Kind:             kind,
		Status:           JobStatusPending,
		Payload:          body,
		MaxAttempts:      DefaultMaxAttempts,
		RunAt:            time.Now(),
	}, nil
}

// DecodePayload unmarshals the payload into dst
func (j *Job) DecodePayload(dst interface{}) error {
	if err := json.Unmarshal([]byte(j.Payload), dst); err != nil {
		return shared.NewDomainError("INVALID_PAYLOAD", "Job payload could not be decoded")
	}
	return nil
}

// Start marks the job running and counts the attempt
func (j *Job) Start() error {
	if j.Status != JobStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending jobs can start")
	}
	if time.Now().Before(j.RunAt) {
		return shared.NewDomainError("NOT_DUE", "Job is not due to run yet")
	}

	now := time.Now()
	j.Status = JobStatusRunning
	j.Attempts++
	j.StartedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()
	return nil
}

// Complete records a successful run with optional JSON result
func (j *Job) Complete(result string) error {
	if j.Status != JobStatusRunning {
		return shared.NewDomainError("INVALID_STATE", "Only running jobs can complete")
	}

	now := time.Now()
	j.Status = JobStatusCompleted
	j.Result = result
	j.LastError = ""
	j.FinishedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()
	return nil
}

// Fail records a failed run. If attempts remain the job goes back to
// pending with an exponential backoff delay; otherwise it fails for good.
// Returns true when the job will be retried.
func (j *Job) Fail(reason string) (bool, error) {
	if j.Status != JobStatusRunning {
		return false, shared.NewDomainError("INVALID_STATE", "Only running jobs can fail")
	}

	now := time.Now()
	j.LastError = reason
	j.UpdatedAt = now
	j.IncrementVersion()

	if j.Attempts < j.MaxAttempts {
		j.Status = JobStatusPending
		j.RunAt = now.Add(j.nextBackoff())
		return true, nil
	}

	j.Status = JobStatusFailed
	j.FinishedAt = &now
	return false, nil
}

// Cancel stops a job that has not started running
func (j *Job) Cancel() error {
	if j.Status != JobStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending jobs can be cancelled")
	}

	now := time.Now()
	j.Status = JobStatusCancelled
	j.FinishedAt = &now
	j.UpdatedAt = now
	j.IncrementVersion()
	return nil
}

// Retry resets a terminally failed job for another round of attempts
func (j *Job) Retry() error {
	if j.Status != JobStatusFailed {
		return shared.NewDomainError("INVALID_STATE", "Only failed jobs can be retried")
	}

	j.Status = JobStatusPending
	j.Attempts = 0
	j.RunAt = time.Now()
	j.FinishedAt = nil
	j.UpdatedAt = time.Now()
	j.IncrementVersion()
	return nil
}

// IsTerminal returns true once the job can never run again
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed || j.Status == JobStatusCancelled
}

// nextBackoff doubles the delay per attempt already made: 30s, 1m, 2m, ...
func (j *Job) nextBackoff() time.Duration {
	delay := RetryBaseDelay
	for i := 1; i < j.Attempts; i++ {
		delay *= 2
	}
	return delay
}

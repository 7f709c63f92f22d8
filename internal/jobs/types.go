// Package jobs defines the asynchronous work the API hands off to the
// ingestion worker, plus the queue and store abstractions it travels through.
package jobs

import (
	"context"
	"time"
)

// JobType names a kind of background work.
type JobType string

const (
	// JobTypeParseStatement imports an uploaded statement file into
	// transactions.
	JobTypeParseStatement JobType = "parse_statement"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// ParseStatementJob asks the worker to parse one uploaded statement and
// store the resulting transactions for the owning user.
type ParseStatementJob struct {
	JobID      string `json:"job_id"`
	DocumentID string `json:"document_id"`
	UserID     int64  `json:"user_id"`

	// Path is where the blob store saved the uploaded file.
	Path string `json:"path"`

	// Source and Format are the platform and file format declared at
	// upload time; either may be empty, in which case the pipeline
	// detects them.
	Source string `json:"source,omitempty"`
	Format string `json:"format"`

	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	RetryCount  int        `json:"retry_count"`
	MaxRetries  int        `json:"max_retries"`
}

// Job is the minimal view the queue machinery needs of any job type.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *ParseStatementJob) GetID() string        { return j.JobID }
func (j *ParseStatementJob) GetType() JobType     { return JobTypeParseStatement }
func (j *ParseStatementJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. Implementations may be in-memory or backed by an
// external broker.
type Publisher interface {
	PublishParseStatement(ctx context.Context, job *ParseStatementJob) error
	Close() error
}

// Consumer pulls jobs off the queue and runs them through a handler.
type Consumer interface {
	Start(ctx context.Context, handler JobHandler) error
	// Stop waits for in-flight jobs before returning.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A returned error marks the job failed and
// eligible for retry.
type JobHandler func(ctx context.Context, job Job) error

// JobStore tracks job state so the API can report progress.
type JobStore interface {
	SaveJob(ctx context.Context, job *ParseStatementJob) error
	GetJob(ctx context.Context, jobID string) (*ParseStatementJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*ParseStatementJob, error)
}

// JobFilter narrows ListJobs results.
type JobFilter struct {
	DocumentID string
	UserID     int64
	Status     JobStatus
	Limit      int
	Offset     int
}

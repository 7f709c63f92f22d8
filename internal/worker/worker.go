// Package worker executes statement parsing jobs: it loads the uploaded
// file from the blob store, runs it through the statement pipeline and
// persists whatever survives deduplication.
package worker

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dmoraes/driver-finance/internal/domain"
	"github.com/dmoraes/driver-finance/internal/jobs"
	"github.com/dmoraes/driver-finance/internal/statement"
)

// DocumentStore is the slice of the persistence layer the worker writes
// parsing outcomes through.
type DocumentStore interface {
	MarkDocumentRunning(ctx context.Context, id string) error
	MarkDocumentParsed(ctx context.Context, id string, imported, skipped int) error
	MarkDocumentFailed(ctx context.Context, id string, errMsg string) error
	InsertIfFingerprintAbsent(ctx context.Context, tx *domain.Transaction) (bool, error)
}

// BlobLoader reads back a stored statement file.
type BlobLoader interface {
	Load(path string) ([]byte, error)
}

// Worker wires the pipeline to storage for one deployment.
type Worker struct {
	store DocumentStore
	blobs BlobLoader
	pipe  *statement.Pipeline
	log   zerolog.Logger
}

// New builds a Worker.
func New(store DocumentStore, blobs BlobLoader, pipe *statement.Pipeline, log zerolog.Logger) *Worker {
	return &Worker{store: store, blobs: blobs, pipe: pipe, log: log}
}

// Handle processes one queue job. A returned error marks the job failed so
// the queue can retry; unreadable files are terminal and recorded on the
// document instead of retried.
func (w *Worker) Handle(ctx context.Context, job jobs.Job) error {
	parseJob, ok := job.(*jobs.ParseStatementJob)
	if !ok {
		return fmt.Errorf("Handle: unexpected job type %T", job)
	}

	log := w.log.With().
		Str("job_id", parseJob.JobID).
		Str("document_id", parseJob.DocumentID).
		Int64("user_id", parseJob.UserID).
		Logger()
	log.Info().Str("path", parseJob.Path).Msg("Processing statement")

	if err := w.store.MarkDocumentRunning(ctx, parseJob.DocumentID); err != nil {
		return fmt.Errorf("Handle: mark running: %w", err)
	}

	data, err := w.blobs.Load(parseJob.Path)
	if err != nil {
		return fmt.Errorf("Handle: load statement: %w", err)
	}

	candidates, err := w.pipe.Ingest(data, statement.ParsePlatform(parseJob.Source), statement.Format(parseJob.Format))
	if err != nil {
		// The file itself is unreadable; retrying the same bytes cannot
		// succeed, so record the failure and consume the job.
		log.Error().Err(err).Msg("Statement could not be read")
		if markErr := w.store.MarkDocumentFailed(ctx, parseJob.DocumentID, err.Error()); markErr != nil {
			return fmt.Errorf("Handle: mark failed: %w", markErr)
		}
		return nil
	}

	var imported, skipped int
	for _, c := range candidates {
		tx := &domain.Transaction{
			UserID:      parseJob.UserID,
			Amount:      c.Amount,
			Description: c.Description,
			Type:        c.Type,
			Source:      string(c.Source),
			ExternalID:  c.Fingerprint,
			Date:        c.OccurredAt,
		}
		inserted, err := w.store.InsertIfFingerprintAbsent(ctx, tx)
		if err != nil {
			return fmt.Errorf("Handle: insert transaction: %w", err)
		}
		if inserted {
			imported++
		} else {
			skipped++
		}
	}

	if err := w.store.MarkDocumentParsed(ctx, parseJob.DocumentID, imported, skipped); err != nil {
		return fmt.Errorf("Handle: mark parsed: %w", err)
	}

	log.Info().Int("imported", imported).Int("skipped", skipped).Msg("Statement processed")
	return nil
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/domain"
	"github.com/dmoraes/driver-finance/internal/jobs"
	"github.com/dmoraes/driver-finance/internal/store"
)

// DocumentsHandler exposes uploaded statement metadata.
type DocumentsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewDocumentsHandler creates a documents handler.
func NewDocumentsHandler(s *store.Store, log zerolog.Logger) *DocumentsHandler {
	return &DocumentsHandler{store: s, log: log}
}

// List handles GET /api/documents
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	documents, err := h.store.ListDocuments(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list documents")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	if documents == nil {
		documents = []domain.Document{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": documents,
		"count":     len(documents),
	})
}

// Get handles GET /api/documents/:id
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request, documentID string) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	doc, err := h.store.GetDocument(ctx, user.ID, documentID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Document not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load document")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, doc)
}

// JobsHandler exposes background job status.
type JobsHandler struct {
	jobs jobs.JobStore
	log  zerolog.Logger
}

// NewJobsHandler creates a jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{jobs: store, log: log}
}

// List handles GET /api/jobs, scoped to the caller's jobs.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	filter := jobs.JobFilter{
		UserID:     user.ID,
		DocumentID: r.URL.Query().Get("document_id"),
		Status:     jobs.JobStatus(r.URL.Query().Get("status")),
		Limit:      queryInt(r, "limit", 0),
		Offset:     queryInt(r, "offset", 0),
	}

	list, err := h.jobs.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if list == nil {
		list = []*jobs.ParseStatementJob{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  list,
		"count": len(list),
	})
}

// Get handles GET /api/jobs/:id
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	job, err := h.jobs.GetJob(ctx, jobID)
	if err != nil || job.UserID != user.ID {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

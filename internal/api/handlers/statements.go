package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/blobstore"
	"github.com/dmoraes/driver-finance/internal/domain"
	"github.com/dmoraes/driver-finance/internal/jobs"
	"github.com/dmoraes/driver-finance/internal/statement"
	"github.com/dmoraes/driver-finance/internal/store"
)

// StatementsHandler accepts statement uploads and queues them for parsing.
type StatementsHandler struct {
	store     *store.Store
	blobs     *blobstore.Store
	publisher jobs.Publisher
	maxBytes  int64
	log       zerolog.Logger
}

// NewStatementsHandler creates a statements handler. maxBytes caps the
// accepted upload size.
func NewStatementsHandler(s *store.Store, blobs *blobstore.Store, publisher jobs.Publisher, maxBytes int64, log zerolog.Logger) *StatementsHandler {
	return &StatementsHandler{store: s, blobs: blobs, publisher: publisher, maxBytes: maxBytes, log: log}
}

// Upload handles POST /api/statements. It expects multipart form data with a
// "file" part and optional "source" and "format" fields; the file is stored,
// a document row created and a parse job enqueued. Responds 202 with the
// document and job ids.
func (h *StatementsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		h.log.Error().Err(err).Msg("Failed to read upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read upload")
		return
	}
	if len(data) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "file is empty")
		return
	}

	// An unrecognized declared format falls back to the filename extension.
	format := statement.ParseFormat(r.FormValue("format"))
	if format == "" {
		format = statement.FormatFromFilename(header.Filename)
	}
	source := statement.ParsePlatform(r.FormValue("source"))

	documentID := uuid.New().String()
	storedPath, err := h.blobs.Save(documentID, header.Filename, data)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to store upload")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	checksum := sha256.Sum256(data)
	doc := &domain.Document{
		ID:             documentID,
		UserID:         user.ID,
		Filename:       header.Filename,
		StoredPath:     storedPath,
		ChecksumSHA256: hex.EncodeToString(checksum[:]),
		Source:         string(source),
		Format:         string(format),
	}
	if err := h.store.InsertDocument(ctx, doc); err != nil {
		h.log.Error().Err(err).Msg("Failed to record document")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to record document")
		return
	}

	job := &jobs.ParseStatementJob{
		DocumentID: documentID,
		UserID:     user.ID,
		Path:       storedPath,
		Source:     string(source),
		Format:     string(format),
	}
	if err := h.publisher.PublishParseStatement(ctx, job); err != nil {
		h.log.Error().Err(err).Str("document_id", documentID).Msg("Failed to enqueue parse job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue parsing")
		return
	}

	h.log.Info().
		Str("document_id", documentID).
		Str("job_id", job.JobID).
		Str("filename", header.Filename).
		Int("bytes", len(data)).
		Msg("Statement uploaded")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"document_id": documentID,
		"job_id":      job.JobID,
		"status":      doc.ParsingStatus,
	})
}

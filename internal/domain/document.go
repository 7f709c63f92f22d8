package domain

import "time"

// ParsingStatus tracks an uploaded statement through the ingestion worker.
type ParsingStatus string

const (
	ParsingPending ParsingStatus = "PENDING"
	ParsingRunning ParsingStatus = "RUNNING"
	ParsingParsed  ParsingStatus = "PARSED"
	ParsingFailed  ParsingStatus = "FAILED"
)

// Document is the metadata row for one uploaded statement file. The bytes
// themselves live in the blob store under StoredPath.
type Document struct {
	ID             string        `json:"id"`
	UserID         int64         `json:"user_id"`
	Filename       string        `json:"filename"`
	StoredPath     string        `json:"-"`
	ChecksumSHA256 string        `json:"checksum_sha256"`
	Source         string        `json:"source,omitempty"`
	Format         string        `json:"format"`
	ParsingStatus  ParsingStatus `json:"parsing_status"`
	ImportedCount  int           `json:"imported_count"`
	SkippedCount   int           `json:"skipped_count"`
	ErrorMessage   string        `json:"error_message,omitempty"`
	UploadedAt     time.Time     `json:"uploaded_at"`
	ProcessedAt    *time.Time    `json:"processed_at,omitempty"`
}

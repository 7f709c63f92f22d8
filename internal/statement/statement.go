// Package statement turns raw ride-platform statement files (CSV exports,
// spreadsheets, PDF earnings reports) into normalized transaction candidates.
//
// The package is pure and synchronous: one buffer in, one slice of candidates
// out, no I/O and no state shared between calls, so a single Pipeline is safe
// for concurrent use. Parsing is best-effort: rows the pipeline cannot make
// sense of are dropped silently and an unrecognized file yields an empty
// slice. Only a container that cannot be decoded at all (a corrupt workbook
// or PDF) surfaces as an error.
package statement

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// Platform identifies the ride-hailing service that issued a statement.
// The zero value means the caller did not declare one.
type Platform string

const (
	PlatformUnknown    Platform = ""
	PlatformUber       Platform = "Uber"
	PlatformNinetyNine Platform = "99"
	PlatformInDrive    Platform = "inDrive"
)

// ParsePlatform maps a caller-declared source label to a Platform.
// Unrecognized labels come back as PlatformUnknown so the classifier decides.
func ParsePlatform(s string) Platform {
	switch normalizeLabel(s) {
	case "uber":
		return PlatformUber
	case "99", "ninetynine", "ninety_nine":
		return PlatformNinetyNine
	case "indrive":
		return PlatformInDrive
	default:
		return PlatformUnknown
	}
}

// Format is the container format of an uploaded statement.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat maps a declared format label to a Format, or "" if unknown.
func ParseFormat(s string) Format {
	switch normalizeLabel(s) {
	case "csv":
		return FormatCSV
	case "xlsx", "xls", "spreadsheet":
		return FormatXLSX
	case "pdf":
		return FormatPDF
	default:
		return ""
	}
}

// FormatFromFilename guesses the format from a file extension, defaulting to
// CSV: the delimited-table detector is the one that can fail softly.
func FormatFromFilename(name string) Format {
	switch {
	case hasSuffixFold(name, ".xlsx"), hasSuffixFold(name, ".xls"):
		return FormatXLSX
	case hasSuffixFold(name, ".pdf"):
		return FormatPDF
	default:
		return FormatCSV
	}
}

// Candidate is one normalized transaction extracted from a statement. It has
// not been persisted and never will be mutated; the persistence layer uses
// Fingerprint to reject rows imported twice.
type Candidate struct {
	OccurredAt  time.Time
	Amount      decimal.Decimal
	Description string
	Type        domain.TransactionType
	Source      Platform
	Fingerprint string
}

// rawEntry is the (date, amount) cell pair a detector pulls out of a file
// before any normalization.
type rawEntry struct {
	date   string
	amount string
}

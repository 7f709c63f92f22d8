package statement

import (
	"strings"
	"time"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// Pipeline orchestrates the format detectors. It holds only configuration,
// so one instance serves any number of concurrent ingestions.
type Pipeline struct {
	cfg Config
}

// New builds a pipeline from explicit configuration.
func New(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Ingest parses one uploaded statement buffer into transaction candidates.
//
// The declared format picks the detector; when the caller did not declare a
// source platform, the classifier infers one from the file's text. The result
// is a fully materialized slice in source row / text-match order.
//
// Content the pipeline cannot make sense of (unknown column layouts, rows
// with bad dates or non-positive amounts, text with no matches) degrades to
// fewer, possibly zero, candidates. The only errors returned are for
// containers that cannot be decoded at all, such as a corrupt workbook or
// PDF; callers surface those as "could not read file".
func (p *Pipeline) Ingest(data []byte, source Platform, format Format) ([]Candidate, error) {
	switch format {
	case FormatXLSX:
		return p.parseSpreadsheet(data, source)
	case FormatPDF:
		if source == PlatformUnknown {
			source = p.Classify(data)
		}
		return p.parseUnstructured(data, source)
	default:
		if source == PlatformUnknown {
			source = p.Classify(data)
		}
		return p.parseDelimited(data, source), nil
	}
}

// Classify guesses the issuing platform by scanning the decoded file text for
// platform names, first keyword match wins. Undecodable bytes are dropped
// rather than failing, and a file that names no platform falls back to the
// configured default so ingestion always attempts some table layout.
func (p *Pipeline) Classify(data []byte) Platform {
	text := strings.ToLower(strings.ToValidUTF8(string(data), ""))
	for _, kw := range p.cfg.Keywords {
		if strings.Contains(text, kw.Substring) {
			return kw.Platform
		}
	}
	return p.cfg.Fallback
}

// normalize runs raw (date, amount) pairs through the amount normalizer and
// fingerprint generator, dropping rows that fail to parse. fpSource is the
// source name hashed into the fingerprint; it is kept separate from the
// candidate's platform so re-imports of the same file stay stable even if
// display names change.
func (p *Pipeline) normalize(entries []rawEntry, source Platform, description, fpSource string) []Candidate {
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		amount := NormalizeAmount(e.amount)
		if !amount.IsPositive() {
			continue
		}
		occurredAt, ok := p.parseDate(e.date)
		if !ok {
			continue
		}
		out = append(out, Candidate{
			OccurredAt:  occurredAt,
			Amount:      amount,
			Description: description,
			Type:        domain.TypeIncome,
			Source:      source,
			Fingerprint: Fingerprint(e.date, e.amount, fpSource),
		})
	}
	return out
}

// parseDate tries the configured layouts in order, day-first layouts first.
func (p *Pipeline) parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range p.cfg.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// rideDescription is the default description for rows imported from a
// platform statement.
func rideDescription(source Platform) string {
	if source == PlatformUnknown {
		return "Ride income"
	}
	return string(source) + " ride income"
}

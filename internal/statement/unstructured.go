package statement

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/dmoraes/driver-finance/internal/domain"
)

// entryPattern matches a dd/mm/yyyy date followed later on the same line by a
// currency-prefixed amount, e.g. "21/07/2025  Corrida centro  R$ 35,50".
var entryPattern = regexp.MustCompile(`(?i)(\d{2}/\d{2}/\d{4}).*?R\$\s*([\d,]+\.?\d*)`)

// parseUnstructured is the unstructured-text detector for PDF earnings
// reports. It concatenates the extracted text of every page and runs a single
// regex sweep over it.
//
// This is explicitly best-effort and fragile: a layout change in the source
// document silently reduces recall, down to zero matches. Callers must not
// read an empty result as "the statement had no earnings"; it only means the
// text did not match. A PDF that cannot be decoded at all is the fatal case.
func (p *Pipeline) parseUnstructured(data []byte, source Platform) ([]Candidate, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parseUnstructured: reading pdf: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("parseUnstructured: extracting text: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, textReader); err != nil {
		return nil, fmt.Errorf("parseUnstructured: reading text: %w", err)
	}

	return p.extractFromText(sb.String(), source), nil
}

// extractFromText applies the regex sweep to already-extracted text. Split
// out from parseUnstructured so the match-and-normalize step is testable
// without crafting PDF containers.
func (p *Pipeline) extractFromText(text string, source Platform) []Candidate {
	matches := entryPattern.FindAllStringSubmatch(text, -1)
	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		rawDate, rawAmount := m[1], m[2]
		amount := NormalizeAmount(rawAmount)
		if !amount.IsPositive() {
			continue
		}
		occurredAt, err := time.Parse("02/01/2006", rawDate)
		if err != nil {
			continue
		}
		out = append(out, Candidate{
			OccurredAt:  occurredAt,
			Amount:      amount,
			Description: "Ride income (PDF)",
			Type:        domain.TypeIncome,
			Source:      source,
			Fingerprint: Fingerprint(rawDate, rawAmount, string(source)+"-PDF"),
		})
	}
	return out
}

package statement

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// parseDelimited is the delimited-table detector. It never fails: a buffer
// that is not a parseable table, or a table whose header names no
// recognizable date and amount columns, yields zero candidates.
func (p *Pipeline) parseDelimited(data []byte, source Platform) []Candidate {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil || len(rows) < 2 {
		return nil
	}

	entries := extractTable(rows, p.cfg.columnsFor(source))
	return p.normalize(entries, source, rideDescription(source), string(source))
}

// extractTable pulls raw (date, amount) pairs out of header-plus-rows tabular
// data. Both the delimited-table and the spreadsheet detectors funnel through
// here, so column matching lives in exactly one place.
func extractTable(rows [][]string, cols TableColumns) []rawEntry {
	header := rows[0]
	dateIdx := locateColumn(header, cols.Date)
	amountIdx := locateColumn(header, cols.Amount)
	if dateIdx < 0 || amountIdx < 0 {
		return nil
	}

	entries := make([]rawEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if dateIdx >= len(row) || amountIdx >= len(row) {
			continue
		}
		entries = append(entries, rawEntry{
			date:   strings.TrimSpace(row[dateIdx]),
			amount: strings.TrimSpace(row[amountIdx]),
		})
	}
	return entries
}

// locateColumn finds the first header cell containing any of the tokens,
// case-insensitively. Returns -1 when no cell matches.
func locateColumn(header []string, tokens []string) int {
	for i, cell := range header {
		c := strings.ToLower(strings.TrimSpace(cell))
		for _, tok := range tokens {
			if tok != "" && strings.Contains(c, tok) {
				return i
			}
		}
	}
	return -1
}

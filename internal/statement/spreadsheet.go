package statement

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseSpreadsheet is the spreadsheet detector: it reads the workbook's first
// sheet and re-encodes it as CSV so spreadsheets and delimited exports share
// one normalization path. A workbook that cannot be opened at all is the one
// fatal case; an empty or unrecognizable sheet yields zero candidates.
func (p *Pipeline) parseSpreadsheet(data []byte, source Platform) ([]Candidate, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parseSpreadsheet: opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("parseSpreadsheet: reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("parseSpreadsheet: re-encoding sheet: %w", err)
	}

	csvData := buf.Bytes()
	if source == PlatformUnknown {
		source = p.Classify(csvData)
	}
	return p.parseDelimited(csvData, source), nil
}

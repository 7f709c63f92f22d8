package statement

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes tabular data into an in-memory xlsx workbook.
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("writing row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("writing workbook: %v", err)
	}
	return buf.Bytes()
}

func TestIngest_SpreadsheetMatchesDelimitedTable(t *testing.T) {
	p := New(DefaultConfig())

	xlsxData := buildWorkbook(t, [][]any{
		{"Date", "Amount"},
		{"21/07/2025", "R$ 35,50"},
		{"22/07/2025", "R$ 12,00"},
	})
	csvData := []byte("Date,Amount\n\"21/07/2025\",\"R$ 35,50\"\n\"22/07/2025\",\"R$ 12,00\"\n")

	fromXLSX, err := p.Ingest(xlsxData, PlatformUber, FormatXLSX)
	if err != nil {
		t.Fatalf("spreadsheet ingest: %v", err)
	}
	fromCSV, err := p.Ingest(csvData, PlatformUber, FormatCSV)
	if err != nil {
		t.Fatalf("delimited ingest: %v", err)
	}

	if len(fromXLSX) != len(fromCSV) {
		t.Fatalf("spreadsheet produced %d candidates, delimited %d", len(fromXLSX), len(fromCSV))
	}
	for i := range fromXLSX {
		if fromXLSX[i].Fingerprint != fromCSV[i].Fingerprint {
			t.Errorf("candidate %d fingerprints differ between spreadsheet and delimited paths", i)
		}
		if !fromXLSX[i].Amount.Equal(fromCSV[i].Amount) {
			t.Errorf("candidate %d amounts differ: %s vs %s", i, fromXLSX[i].Amount, fromCSV[i].Amount)
		}
	}
}

func TestIngest_SpreadsheetClassifiesSource(t *testing.T) {
	p := New(DefaultConfig())

	xlsxData := buildWorkbook(t, [][]any{
		{"Date", "Amount", "Service"},
		{"21/07/2025", "R$ 35,50", "uber trip"},
	})

	got, err := p.Ingest(xlsxData, PlatformUnknown, FormatXLSX)
	if err != nil {
		t.Fatalf("spreadsheet ingest: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Source != PlatformUber {
		t.Errorf("source = %q, want Uber from classifier", got[0].Source)
	}
}

func TestIngest_CorruptWorkbookIsFatal(t *testing.T) {
	p := New(DefaultConfig())

	if _, err := p.Ingest([]byte("not a zip container"), PlatformUber, FormatXLSX); err == nil {
		t.Fatal("expected an error for an unreadable workbook")
	}
}

package statement

import "testing"

func TestClassify(t *testing.T) {
	p := New(DefaultConfig())

	tests := []struct {
		name string
		in   string
		want Platform
	}{
		{"uber lowercase", "trip report from uber do brasil", PlatformUber},
		{"uber uppercase", "UBER WEEKLY STATEMENT", PlatformUber},
		{"ninety nine", "extrato 99 motorista", PlatformNinetyNine},
		{"indrive", "inDrive driver earnings", PlatformInDrive},
		{"uber wins over later keywords", "uber and indrive side by side", PlatformUber},
		{"no keyword falls back", "generic export with no platform name", PlatformUber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Classify([]byte(tt.in)); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassify_IgnoresUndecodableBytes(t *testing.T) {
	p := New(DefaultConfig())

	data := append([]byte{0xff, 0xfe, 0x00}, []byte("statement from uber")...)
	if got := p.Classify(data); got != PlatformUber {
		t.Errorf("Classify = %q, want Uber", got)
	}
}

func TestIngest_ClassifiesUndeclaredSource(t *testing.T) {
	p := New(DefaultConfig())

	data := []byte("Date,Amount,Service\n21/07/2025,35.50,uber trip\n")
	got, err := p.Ingest(data, PlatformUnknown, FormatCSV)
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Source != PlatformUber {
		t.Errorf("source = %q, want Uber from classifier", got[0].Source)
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"uber", PlatformUber},
		{"Uber", PlatformUber},
		{"99", PlatformNinetyNine},
		{"ninety_nine", PlatformNinetyNine},
		{"indrive", PlatformInDrive},
		{"", PlatformUnknown},
		{"lyft", PlatformUnknown},
	}
	for _, tt := range tests {
		if got := ParsePlatform(tt.in); got != tt.want {
			t.Errorf("ParsePlatform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"extrato.csv", FormatCSV},
		{"ganhos.XLSX", FormatXLSX},
		{"report.xls", FormatXLSX},
		{"statement.pdf", FormatPDF},
		{"noextension", FormatCSV},
	}
	for _, tt := range tests {
		if got := FormatFromFilename(tt.in); got != tt.want {
			t.Errorf("FormatFromFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package statement

import "strings"

// TableColumns lists the header substrings used to locate the date and amount
// columns in one platform's delimited export. Matching is case-insensitive
// substring matching, which is what survives the platforms renaming columns
// between export versions ("Date", "Data", "Valor líquido", ...).
type TableColumns struct {
	Date   []string
	Amount []string
}

// PlatformKeyword routes unclassified statements: the first keyword found in
// the file's text decides the platform.
type PlatformKeyword struct {
	Substring string
	Platform  Platform
}

// Config carries every tunable of the pipeline as plain data. Nothing in this
// package reads the environment; callers construct a Config (usually
// DefaultConfig) and hand it to New, which keeps the pipeline testable in
// isolation.
type Config struct {
	// Columns holds the per-platform header token sets for delimited tables.
	Columns map[Platform]TableColumns

	// Keywords are checked in order against the lower-cased file text when no
	// source platform was declared. First match wins.
	Keywords []PlatformKeyword

	// Fallback is the platform assumed when classification finds nothing.
	// Ingestion always attempts some table layout rather than rejecting
	// unknown files outright.
	Fallback Platform

	// DateLayouts are tried in order against raw date cells. The order
	// encodes the day-before-month bias of Brazilian statements.
	DateLayouts []string
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Columns: map[Platform]TableColumns{
			PlatformUber: {
				Date:   []string{"date", "data"},
				Amount: []string{"amount", "valor", "ganhos"},
			},
			PlatformNinetyNine: {
				Date:   []string{"data", "date", "dia"},
				Amount: []string{"valor", "ganhos", "recebido"},
			},
			PlatformInDrive: {
				Date:   []string{"date", "data"},
				Amount: []string{"amount", "valor", "rendimento"},
			},
		},
		Keywords: []PlatformKeyword{
			{Substring: "uber", Platform: PlatformUber},
			{Substring: "99", Platform: PlatformNinetyNine},
			{Substring: "indrive", Platform: PlatformInDrive},
		},
		Fallback: PlatformUber,
		DateLayouts: []string{
			"02/01/2006",
			"2/1/2006",
			"02/01/2006 15:04",
			"02/01/2006 15:04:05",
			"02-01-2006",
			"02/01/06",
			"2006-01-02",
			"2006-01-02 15:04:05",
		},
	}
}

// columnsFor returns the token set for a platform, falling back to the
// fallback platform's layout for sources without a dedicated set.
func (c Config) columnsFor(p Platform) TableColumns {
	if cols, ok := c.Columns[p]; ok {
		return cols
	}
	return c.Columns[c.Fallback]
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func hasSuffixFold(s, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(s), suffix)
}

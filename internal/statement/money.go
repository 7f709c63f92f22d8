package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount converts a raw statement cell into an exact decimal. It
// accepts values that are already numeric as well as locale-variant strings
// such as "R$ 25,50", "1.234,56" or "25.50".
//
// It never returns an error: anything unparsable comes back as zero, and the
// row filters drop non-positive amounts, so corrupt cells and zero-value rows
// end up discarded the same way.
func NormalizeAmount(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		return normalizeAmountString(v)
	default:
		return decimal.Zero
	}
}

func normalizeAmountString(s string) decimal.Decimal {
	// A minus anywhere before the first digit makes the amount negative.
	// Statements mark refunds and adjustments that way and the positivity
	// filter must see them as negative, not silently absolute-valued.
	negative := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			break
		}
		if r == '-' {
			negative = true
		}
	}

	// Keep digits and separators only, then treat comma as the decimal
	// separator (Brazilian locale bias when ambiguous).
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ",", ".")

	// Several dots left means thousands-separator artifacts: everything
	// before the last dot is digit groups, the last dot is the decimal point.
	if strings.Count(cleaned, ".") > 1 {
		parts := strings.Split(cleaned, ".")
		cleaned = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d
}

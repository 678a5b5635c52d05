package valuation

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var gbp = message.NewPrinter(language.BritishEnglish)

// FormatPounds renders a whole-pound amount with thousands separators,
// e.g. 320000 -> "£320,000".
func FormatPounds(amount int) string {
	return gbp.Sprintf("£%d", amount)
}

// FormatRange renders a low/mid/high band as "£a / £b / £c".
func FormatRange(low, mid, high int) string {
	return FormatPounds(low) + " / " + FormatPounds(mid) + " / " + FormatPounds(high)
}

// FormatBand renders a negotiation band as "£a–£b".
func FormatBand(low, high int) string {
	return FormatPounds(low) + "–" + FormatPounds(high)
}

// FormatSignedPct renders a percentage with an explicit sign and one
// decimal, e.g. "+4.5%".
func FormatSignedPct(pct float64) string {
	return fmt.Sprintf("%+.1f%%", pct)
}

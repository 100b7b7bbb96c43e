package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
)

var displayPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders amount for display with two decimals and en-US
// digit grouping. It is presentation only; never feed the result back into
// arithmetic.
func FormatCurrency(amount decimal.Decimal, currency enums.Currency) string {
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	whole, cents, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + currency.Symbol() + groupDigits(rounded.Truncate(0), whole) + "." + cents
}

// groupDigits inserts thousands separators into the integer digits of whole.
// The printer only sees an exact int64; larger values are grouped by hand.
func groupDigits(whole decimal.Decimal, digits string) string {
	if n := whole.BigInt(); n.IsInt64() {
		return displayPrinter.Sprintf("%d", n.Int64())
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

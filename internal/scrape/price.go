package scrape

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// moneyRegex matches an optional currency symbol followed by a number with
// optional thousands separators and cents, e.g. "$1,299.99" or "CA$5.00".
var moneyRegex = regexp.MustCompile(`(CA\$|[\$£€])?\s*([0-9]{1,3}(?:,[0-9]{3})*(?:\.[0-9]{2})|[0-9]+(?:\.[0-9]{2})?)`)

var currencySymbols = map[string]string{
	"USD": "$",
	"CAD": "CA$",
}

var moneyPrinter = message.NewPrinter(language.English)

// ParsePrice extracts the first money amount from raw price text.
// The second return value is false when no parseable number is present.
func ParsePrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	m := moneyRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	num := strings.ReplaceAll(m[2], ",", "")
	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// HostCurrency infers the currency from a hostname: Canadian storefronts
// (.ca TLD or ca. subdomain) price in CAD, everything else in USD.
func HostCurrency(host string) string {
	host = strings.ToLower(host)
	if strings.HasSuffix(host, ".ca") || strings.HasPrefix(host, "ca.") || strings.Contains(host, ".ca.") {
		return "CAD"
	}
	return "USD"
}

// FormatPrice renders a price with its currency symbol and thousands
// separators. The host decides the symbol when the currency is unknown.
func FormatPrice(value *float64, currency, host string) string {
	if value == nil {
		return ""
	}
	sym := currencySymbols[strings.ToUpper(currency)]
	if sym == "" {
		sym = currencySymbols[HostCurrency(host)]
	}
	if sym == "" {
		sym = "$"
	}
	return sym + moneyPrinter.Sprintf("%.2f", *value)
}

// DiscountRule applies percent and absolute reductions to an original price
type DiscountRule struct {
	PercentOff  float64 `json:"percent_off"`
	AbsoluteOff float64 `json:"absolute_off"`
}

// Apply computes the discounted price, clamped at zero and rounded to cents
func (r DiscountRule) Apply(price float64) float64 {
	p := price
	if r.PercentOff > 0 {
		p *= 1 - r.PercentOff/100
	}
	if r.AbsoluteOff > 0 {
		p -= r.AbsoluteOff
	}
	if p < 0 {
		p = 0
	}
	return math.Round((p+1e-9)*100) / 100
}

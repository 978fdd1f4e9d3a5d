package currency

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NotAvailable is rendered for listings without a price.
const NotAvailable = "N/A"

// ParsePrice extracts the numeric value of a display price such as
// "$2,500,000" or "R 1 250 000". It keeps digits and the decimal point.
func ParsePrice(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Convert turns a Base amount into currency to.
func Convert(amount float64, rates Rates, to Code) (float64, error) {
	if !to.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, to)
	}
	rate, ok := rates.Rate(to)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoRate, to)
	}
	return amount * rate, nil
}

// ConvertBack turns an amount in currency from back into Base.
func ConvertBack(amount float64, rates Rates, from Code) (float64, error) {
	if !from.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupported, from)
	}
	rate, ok := rates.Rate(from)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoRate, from)
	}
	return amount / rate, nil
}

// Exchange converts amount from one supported currency to another via Base.
func Exchange(amount float64, rates Rates, from, to Code) (float64, error) {
	base, err := ConvertBack(amount, rates, from)
	if err != nil {
		return 0, err
	}
	return Convert(base, rates, to)
}

var symbols = map[Code]string{
	USD: "$",
	ZAR: "R",
	AED: "AED ",
	EUR: "€",
	GBP: "£",
}

var displayLocales = map[Code]language.Tag{
	USD: language.AmericanEnglish,
	ZAR: language.MustParse("en-ZA"),
	AED: language.MustParse("en-AE"),
	EUR: language.MustParse("en-IE"),
	GBP: language.BritishEnglish,
}

// Symbol returns the display prefix for c.
func Symbol(c Code) string {
	if s, ok := symbols[c]; ok {
		return s
	}
	return string(c) + " "
}

// Format renders amount in c with the currency's display locale and no
// fractional digits.
func Format(amount float64, c Code) string {
	tag, ok := displayLocales[c]
	if !ok {
		tag = language.AmericanEnglish
	}
	return FormatIn(amount, c, tag)
}

// FormatIn is Format with an explicit locale.
func FormatIn(amount float64, c Code, tag language.Tag) string {
	p := message.NewPrinter(tag)
	rounded := math.Round(amount)
	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}
	return sign + Symbol(c) + p.Sprintf("%v", number.Decimal(rounded, number.MaxFractionDigits(0)))
}

// FormatPrice renders a stored display price, tagged with currency from, in
// currency to. Empty prices render as NotAvailable; prices that cannot be
// parsed or converted are returned unchanged.
func FormatPrice(price string, from, to Code, rates Rates) string {
	if strings.TrimSpace(price) == "" {
		return NotAvailable
	}
	amount, ok := ParsePrice(price)
	if !ok {
		return price
	}
	if from == "" {
		from = Base
	}
	converted, err := Exchange(amount, rates, from, to)
	if err != nil {
		return price
	}
	return Format(converted, to)
}

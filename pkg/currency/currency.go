// Package currency holds the display-currency rules: the supported codes, the
// country table used for detection, the static fallback rates, and price
// parsing, conversion and formatting. Everything here is pure; network lookups
// live in the callers and are passed in as results.
package currency

import (
	"errors"
	"strings"
)

// Code is an ISO 4217 currency code.
type Code string

const (
	USD Code = "USD"
	ZAR Code = "ZAR"
	AED Code = "AED"
	EUR Code = "EUR"
	GBP Code = "GBP"
)

// Base is the currency every stored price and every rate is relative to.
const Base = USD

var (
	ErrUnsupported = errors.New("unsupported currency")
	ErrNoRate      = errors.New("no rate for currency")
)

// Supported lists the display currencies in menu order.
var Supported = []Code{USD, ZAR, AED, EUR, GBP}

// Valid reports whether c is a supported display currency.
func (c Code) Valid() bool {
	for _, s := range Supported {
		if s == c {
			return true
		}
	}
	return false
}

func (c Code) String() string { return string(c) }

// ParseCode normalizes s and checks it against Supported.
func ParseCode(s string) (Code, bool) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", false
	}
	return c, true
}

var countryCurrency = map[string]Code{
	"US": USD,
	"ZA": ZAR, "NA": ZAR, "LS": ZAR, "SZ": ZAR,
	"AE": AED,
	"GB": GBP,
	// euro area
	"AT": EUR, "BE": EUR, "CY": EUR, "DE": EUR, "EE": EUR,
	"ES": EUR, "FI": EUR, "FR": EUR, "GR": EUR, "HR": EUR,
	"IE": EUR, "IT": EUR, "LT": EUR, "LU": EUR, "LV": EUR,
	"MT": EUR, "NL": EUR, "PT": EUR, "SI": EUR, "SK": EUR,
}

// ForCountry maps an ISO 3166 alpha-2 country code to its display currency.
func ForCountry(country string) (Code, bool) {
	c, ok := countryCurrency[strings.ToUpper(strings.TrimSpace(country))]
	return c, ok
}

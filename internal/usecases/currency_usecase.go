package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"
	"luxe-estates.backend/pkg/currency"
	"luxe-estates.backend/pkg/logger"
)

// IPLocator resolves a client address to a country
type IPLocator interface {
	LookupIP(ctx context.Context, ip string) (*currency.Lookup, error)
}

// CoordinateLocator resolves browser coordinates to a country
type CoordinateLocator interface {
	LookupCoordinates(ctx context.Context, lat, lon float64) (*currency.Lookup, error)
}

// RateSource serves the current exchange-rate snapshot
type RateSource interface {
	Get(ctx context.Context) currency.Snapshot
}

// DetectInput carries everything detection may use
type DetectInput struct {
	IP         string
	Lat        *float64
	Lon        *float64
	Preference currency.Preference
}

// DetectResult is the resolved display currency and how it was reached
type DetectResult struct {
	Currency currency.Code    `json:"currency"`
	Detected currency.Code    `json:"detected"`
	Manual   bool             `json:"manual"`
	Lookup   *currency.Lookup `json:"lookup,omitempty"`
}

// ConvertResult is a single formatted conversion
type ConvertResult struct {
	Original  string        `json:"original"`
	From      currency.Code `json:"from"`
	To        currency.Code `json:"to"`
	Formatted string        `json:"formatted"`
	Amount    *float64      `json:"amount,omitempty"`
	Rate      float64       `json:"rate"`
}

// CurrencyUsecase handles currency detection, rates and conversion
type CurrencyUsecase struct {
	ipLocator     IPLocator
	geoLocator    CoordinateLocator
	rates         RateSource
	lookupTimeout time.Duration
}

// NewCurrencyUsecase creates a new currency usecase
func NewCurrencyUsecase(ipLocator IPLocator, geoLocator CoordinateLocator, rates RateSource, lookupTimeout time.Duration) *CurrencyUsecase {
	if lookupTimeout <= 0 {
		lookupTimeout = 5 * time.Second
	}
	return &CurrencyUsecase{
		ipLocator:     ipLocator,
		geoLocator:    geoLocator,
		rates:         rates,
		lookupTimeout: lookupTimeout,
	}
}

// Rates returns the current snapshot; it never fails
func (u *CurrencyUsecase) Rates(ctx context.Context) currency.Snapshot {
	return u.rates.Get(ctx)
}

// Detect resolves the display currency. A manual preference short-circuits
// every lookup. Lookup failures degrade silently to the next source.
func (u *CurrencyUsecase) Detect(ctx context.Context, input DetectInput) DetectResult {
	if input.Preference.Manual && input.Preference.Code.Valid() {
		return DetectResult{
			Currency: input.Preference.Code,
			Detected: input.Preference.Code,
			Manual:   true,
		}
	}

	ipResult := u.lookupIP(ctx, input.IP)
	var geoResult *currency.Lookup
	if ipResult == nil || !countryMapped(ipResult) {
		geoResult = u.lookupCoordinates(ctx, input.Lat, input.Lon)
	}

	detected := currency.Detect(ipResult, geoResult)
	result := DetectResult{
		Currency: currency.Resolve(input.Preference, detected),
		Detected: detected,
	}
	switch {
	case countryMapped(ipResult):
		result.Lookup = ipResult
	case countryMapped(geoResult):
		result.Lookup = geoResult
	}
	return result
}

// Convert formats price (tagged with from) in to
func (u *CurrencyUsecase) Convert(ctx context.Context, price string, from, to currency.Code) ConvertResult {
	if from == "" {
		from = currency.Base
	}
	if !to.Valid() {
		to = currency.Base
	}
	snap := u.rates.Get(ctx)
	rate, _ := snap.Rates.Rate(to)

	result := ConvertResult{
		Original:  price,
		From:      from,
		To:        to,
		Formatted: currency.FormatPrice(price, from, to, snap.Rates),
		Rate:      rate,
	}
	if amount, ok := currency.ParsePrice(price); ok {
		if converted, err := currency.Exchange(amount, snap.Rates, from, to); err == nil {
			result.Amount = &converted
		}
	}
	return result
}

func (u *CurrencyUsecase) lookupIP(ctx context.Context, ip string) *currency.Lookup {
	if u.ipLocator == nil || ip == "" {
		return nil
	}
	res, err := u.ipLocator.LookupIP(ctx, ip)
	if err != nil {
		logger.Debug(ctx, "IP currency lookup failed", zap.String("ip", ip), zap.Error(err))
		return nil
	}
	return res
}

func (u *CurrencyUsecase) lookupCoordinates(ctx context.Context, lat, lon *float64) *currency.Lookup {
	if u.geoLocator == nil || lat == nil || lon == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, u.lookupTimeout)
	defer cancel()

	res, err := u.geoLocator.LookupCoordinates(ctx, *lat, *lon)
	if err != nil {
		logger.Debug(ctx, "Reverse geocode lookup failed", zap.Error(err))
		return nil
	}
	return res
}

func countryMapped(l *currency.Lookup) bool {
	if l == nil {
		return false
	}
	_, ok := currency.ForCountry(l.Country)
	return ok
}

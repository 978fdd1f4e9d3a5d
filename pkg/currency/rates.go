package currency

import "time"

// Rates maps a currency to its multiplier against Base.
type Rates map[Code]float64

// FallbackRates are the approximate multipliers used whenever the upstream
// rate source is unavailable.
func FallbackRates() Rates {
	return Rates{
		USD: 1,
		ZAR: 18.5,
		AED: 3.67,
		EUR: 0.92,
		GBP: 0.79,
	}
}

// Rate returns the multiplier for c. Base is always 1.
func (r Rates) Rate(c Code) (float64, bool) {
	if c == Base {
		return 1, true
	}
	v, ok := r[c]
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// Merge returns a copy of r with gaps for supported codes filled from fallback.
func (r Rates) Merge(fallback Rates) Rates {
	out := make(Rates, len(Supported))
	for _, c := range Supported {
		if v, ok := r.Rate(c); ok {
			out[c] = v
			continue
		}
		if v, ok := fallback.Rate(c); ok {
			out[c] = v
		}
	}
	return out
}

// Source says where a snapshot came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

// Snapshot is a point-in-time rate table.
type Snapshot struct {
	Base      Code      `json:"base"`
	Rates     Rates     `json:"rates"`
	FetchedAt time.Time `json:"fetchedAt"`
	Source    Source    `json:"source"`
}

// FallbackSnapshot wraps FallbackRates.
func FallbackSnapshot(now time.Time) Snapshot {
	return Snapshot{Base: Base, Rates: FallbackRates(), FetchedAt: now, Source: SourceFallback}
}

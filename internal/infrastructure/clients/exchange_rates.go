package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"luxe-estates.backend/pkg/currency"
)

// ExchangeRateClient fetches the latest USD-based table (open.er-api.com shape).
type ExchangeRateClient struct {
	URL        string
	HTTPClient *http.Client
	now        func() time.Time
}

func NewExchangeRateClient(url string, timeout time.Duration) *ExchangeRateClient {
	return &ExchangeRateClient{
		URL:        url,
		HTTPClient: newHTTPClient(timeout),
		now:        time.Now,
	}
}

type exchangeRateResponse struct {
	Result             string             `json:"result"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	Rates              map[string]float64 `json:"rates"`
	ErrorType          string             `json:"error-type"`
}

// FetchRates returns a live snapshot restricted to the supported codes.
// Codes the upstream omits are filled from the fallback table.
func (c *ExchangeRateClient) FetchRates(ctx context.Context) (*currency.Snapshot, error) {
	var out exchangeRateResponse
	if err := getJSON(ctx, c.HTTPClient, "exchange rates", c.URL, &out); err != nil {
		return nil, err
	}
	if out.Result != "" && out.Result != "success" {
		return nil, fmt.Errorf("exchange rates: upstream result %q: %s", out.Result, out.ErrorType)
	}
	if out.BaseCode != "" && out.BaseCode != string(currency.Base) {
		return nil, fmt.Errorf("exchange rates: unexpected base %s", out.BaseCode)
	}
	if len(out.Rates) == 0 {
		return nil, fmt.Errorf("exchange rates: empty rate table")
	}

	rates := make(currency.Rates, len(currency.Supported))
	for _, code := range currency.Supported {
		if v, ok := out.Rates[string(code)]; ok && v > 0 {
			rates[code] = v
		}
	}
	rates = rates.Merge(currency.FallbackRates())

	fetchedAt := c.now()
	if out.TimeLastUpdateUnix > 0 {
		fetchedAt = time.Unix(out.TimeLastUpdateUnix, 0).UTC()
	}
	return &currency.Snapshot{
		Base:      currency.Base,
		Rates:     rates,
		FetchedAt: fetchedAt,
		Source:    currency.SourceLive,
	}, nil
}

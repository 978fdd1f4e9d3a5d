package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"luxe-estates.backend/pkg/currency"
)

var (
	ErrNoCountry  = errors.New("geolocation: no country in response")
	ErrPrivateIP  = errors.New("geolocation: address is not publicly routable")
	ErrBadAddress = errors.New("geolocation: invalid address")
)

const (
	SourceIP      = "ip"
	SourceGeocode = "geocode"
)

// IPLookupClient resolves a client IP to a country (ipapi.co response shape).
type IPLookupClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewIPLookupClient(baseURL string, timeout time.Duration) *IPLookupClient {
	return &IPLookupClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: newHTTPClient(timeout),
	}
}

type ipLookupResponse struct {
	CountryCode string `json:"country_code"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

// LookupIP returns the country for ip. Loopback and private addresses are
// rejected without a network call.
func (c *IPLookupClient) LookupIP(ctx context.Context, ip string) (*currency.Lookup, error) {
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		return nil, ErrBadAddress
	}
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return nil, ErrPrivateIP
	}

	var out ipLookupResponse
	endpoint := fmt.Sprintf("%s/%s/json/", c.BaseURL, url.PathEscape(addr.String()))
	if err := getJSON(ctx, c.HTTPClient, "ip lookup", endpoint, &out); err != nil {
		return nil, err
	}
	if out.Error {
		return nil, fmt.Errorf("ip lookup: %s", out.Reason)
	}
	if out.CountryCode == "" {
		return nil, ErrNoCountry
	}
	return &currency.Lookup{Country: strings.ToUpper(out.CountryCode), Source: SourceIP}, nil
}

// ReverseGeocodeClient resolves coordinates to a country (BigDataCloud
// client-side endpoint shape).
type ReverseGeocodeClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewReverseGeocodeClient bounds every call with timeout.
func NewReverseGeocodeClient(baseURL string, timeout time.Duration) *ReverseGeocodeClient {
	return &ReverseGeocodeClient{
		BaseURL:    baseURL,
		HTTPClient: newHTTPClient(timeout),
	}
}

type reverseGeocodeResponse struct {
	CountryCode string `json:"countryCode"`
}

func (c *ReverseGeocodeClient) LookupCoordinates(ctx context.Context, lat, lon float64) (*currency.Lookup, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrBadAddress
	}
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("localityLanguage", "en")

	var out reverseGeocodeResponse
	if err := getJSON(ctx, c.HTTPClient, "reverse geocode", c.BaseURL+"?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if out.CountryCode == "" {
		return nil, ErrNoCountry
	}
	return &currency.Lookup{Country: strings.ToUpper(out.CountryCode), Source: SourceGeocode}, nil
}

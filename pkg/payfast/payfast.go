// Package payfast builds signed redirect URLs for the PayFast hosted checkout.
package payfast

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	SandboxHost = "https://sandbox.payfast.co.za/eng/process"
	LiveHost    = "https://www.payfast.co.za/eng/process"

	// FrequencyMonthly is the PayFast code for monthly recurring billing.
	FrequencyMonthly = 3
)

var ErrMissingMerchant = errors.New("payfast: merchant id and key are required")

// Merchant holds the gateway credentials and fixed callback URLs.
type Merchant struct {
	ID         string
	Key        string
	Passphrase string
	Sandbox    bool
	ReturnURL  string
	CancelURL  string
	NotifyURL  string
}

// Checkout describes one subscription payment.
type Checkout struct {
	PaymentID string
	Amount    float64
	ItemName  string
	FirstName string
	LastName  string
	Email     string
	Frequency int
	// Cycles is the number of billing cycles; zero bills until cancelled.
	Cycles int
}

// Host returns the checkout host for the configured environment.
func (m Merchant) Host() string {
	if m.Sandbox {
		return SandboxHost
	}
	return LiveHost
}

// FormatAmount renders an amount with two decimals as the gateway expects.
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// field is one ordered query parameter. The gateway signs parameters in
// the documented order, not alphabetically.
type field struct {
	key   string
	value string
}

func (m Merchant) fields(c Checkout) []field {
	freq := c.Frequency
	if freq == 0 {
		freq = FrequencyMonthly
	}
	amount := FormatAmount(c.Amount)
	all := []field{
		{"merchant_id", m.ID},
		{"merchant_key", m.Key},
		{"return_url", m.ReturnURL},
		{"cancel_url", m.CancelURL},
		{"notify_url", m.NotifyURL},
		{"name_first", c.FirstName},
		{"name_last", c.LastName},
		{"email_address", c.Email},
		{"m_payment_id", c.PaymentID},
		{"amount", amount},
		{"item_name", c.ItemName},
		{"subscription_type", "1"},
		{"recurring_amount", amount},
		{"frequency", strconv.Itoa(freq)},
		{"cycles", strconv.Itoa(c.Cycles)},
	}
	out := all[:0]
	for _, f := range all {
		if f.value != "" {
			out = append(out, f)
		}
	}
	return out
}

// encode joins fields as key=value pairs, with spaces as '+' and
// upper-case percent escapes.
func encode(fields []field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.key+"="+url.QueryEscape(strings.TrimSpace(f.value)))
	}
	return strings.Join(parts, "&")
}

// Signature computes the MD5 signature over the encoded parameter string,
// with the passphrase appended when one is configured.
func Signature(encoded, passphrase string) string {
	payload := encoded
	if passphrase != "" {
		payload += "&passphrase=" + url.QueryEscape(strings.TrimSpace(passphrase))
	}
	sum := md5.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// BuildURL returns the full redirect URL for c. A signature is added only
// when the merchant has a passphrase.
func (m Merchant) BuildURL(c Checkout) (string, error) {
	if m.ID == "" || m.Key == "" {
		return "", ErrMissingMerchant
	}
	query := encode(m.fields(c))
	if m.Passphrase != "" {
		query += "&signature=" + Signature(query, m.Passphrase)
	}
	return m.Host() + "?" + query, nil
}

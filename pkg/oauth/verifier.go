// Package oauth verifies OpenID Connect ID tokens against a provider JWKS.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
)

var (
	ErrNotConfigured = errors.New("oauth: provider not configured")
	ErrInvalidToken  = errors.New("oauth: invalid id token")
	ErrUnknownKey    = errors.New("oauth: signing key not found")
)

var allowedAlgorithms = map[string]bool{
	string(jose.RS256): true,
	string(jose.ES256): true,
}

// Config names the provider.
type Config struct {
	JWKSURL  string
	Issuer   string
	Audience string
	// KeysTTL bounds how long a fetched key set is trusted. Zero means one hour.
	KeysTTL time.Duration
}

// Identity is the verified subset of ID token claims.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

type profileClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Verifier checks signature, issuer, audience and expiry.
type Verifier struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	keys      *jose.JSONWebKeySet
	fetchedAt time.Time
}

func NewVerifier(cfg Config) *Verifier {
	if cfg.KeysTTL <= 0 {
		cfg.KeysTTL = time.Hour
	}
	return &Verifier{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// Enabled reports whether a JWKS endpoint is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && v.cfg.JWKSURL != ""
}

// Verify parses and validates a compact ID token.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	if !v.Enabled() {
		return nil, ErrNotConfigured
	}
	tok, err := jwt.ParseSigned(strings.TrimSpace(rawIDToken))
	if err != nil || len(tok.Headers) != 1 {
		return nil, ErrInvalidToken
	}
	header := tok.Headers[0]
	if !allowedAlgorithms[header.Algorithm] {
		return nil, fmt.Errorf("%w: algorithm %s", ErrInvalidToken, header.Algorithm)
	}

	key, err := v.key(ctx, header.KeyID)
	if err != nil {
		return nil, err
	}

	var std jwt.Claims
	var extra profileClaims
	if err := tok.Claims(key.Key, &std, &extra); err != nil {
		return nil, ErrInvalidToken
	}

	expected := jwt.Expected{Time: v.now()}
	if v.cfg.Issuer != "" {
		expected.Issuer = v.cfg.Issuer
	}
	if v.cfg.Audience != "" {
		expected.Audience = jwt.Audience{v.cfg.Audience}
	}
	if err := std.ValidateWithLeeway(expected, time.Minute); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if std.Subject == "" || extra.Email == "" {
		return nil, fmt.Errorf("%w: missing subject or email", ErrInvalidToken)
	}

	return &Identity{
		Subject:       std.Subject,
		Email:         strings.ToLower(extra.Email),
		EmailVerified: extra.EmailVerified,
		Name:          extra.Name,
	}, nil
}

// key returns the JWK for kid, refetching the set once when kid is unknown
// or the cached set is stale.
func (v *Verifier) key(ctx context.Context, kid string) (*jose.JSONWebKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	stale := v.keys == nil || v.now().Sub(v.fetchedAt) > v.cfg.KeysTTL
	if !stale {
		if k := lookup(v.keys, kid); k != nil {
			return k, nil
		}
	}

	set, err := v.fetch(ctx)
	if err != nil {
		return nil, err
	}
	v.keys = set
	v.fetchedAt = v.now()

	if k := lookup(set, kid); k != nil {
		return k, nil
	}
	return nil, ErrUnknownKey
}

func lookup(set *jose.JSONWebKeySet, kid string) *jose.JSONWebKey {
	if set == nil {
		return nil
	}
	if kid == "" {
		if len(set.Keys) == 1 {
			return &set.Keys[0]
		}
		return nil
	}
	if keys := set.Key(kid); len(keys) > 0 {
		return &keys[0]
	}
	return nil
}

func (v *Verifier) fetch(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.JWKSURL, nil)
	if err != nil {
		return nil, fmt.Errorf("oauth: jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oauth: jwks fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth: jwks fetch: status %d", resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("oauth: jwks decode: %w", err)
	}
	return &set, nil
}

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/interfaces/http/response"
	"luxe-estates.backend/internal/usecases"
	"luxe-estates.backend/pkg/currency"
)

const (
	// PreferenceCookie holds a manually chosen display currency
	PreferenceCookie = "currency_preference"
	preferenceMaxAge = 365 * 24 * 60 * 60
)

type currencyService interface {
	Rates(ctx context.Context) currency.Snapshot
	Detect(ctx context.Context, input usecases.DetectInput) usecases.DetectResult
	Convert(ctx context.Context, price string, from, to currency.Code) usecases.ConvertResult
}

// CurrencyHandler handles currency endpoints
type CurrencyHandler struct {
	currency     currencyService
	secureCookie bool
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(svc currencyService, secureCookie bool) *CurrencyHandler {
	return &CurrencyHandler{currency: svc, secureCookie: secureCookie}
}

// GetRates returns the current exchange-rate snapshot
// GET /api/v1/currency/rates
func (h *CurrencyHandler) GetRates(c *gin.Context) {
	response.Success(c, http.StatusOK, h.currency.Rates(c.Request.Context()))
}

// Detect resolves the display currency for the caller
// GET /api/v1/currency/detect?lat=&lon=
func (h *CurrencyHandler) Detect(c *gin.Context) {
	lat, err := optionalFloat(c.Query("lat"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("lat must be a number"))
		return
	}
	lon, err := optionalFloat(c.Query("lon"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("lon must be a number"))
		return
	}

	result := h.currency.Detect(c.Request.Context(), usecases.DetectInput{
		IP:         c.ClientIP(),
		Lat:        lat,
		Lon:        lon,
		Preference: preferenceFromCookie(c),
	})
	response.Success(c, http.StatusOK, result)
}

type preferenceRequest struct {
	Currency string `json:"currency" binding:"required"`
}

// SetPreference pins a manually chosen currency
// PUT /api/v1/currency/preference
func (h *CurrencyHandler) SetPreference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	code, ok := currency.ParseCode(req.Currency)
	if !ok {
		response.Error(c, domainerrors.BadRequest("unsupported currency"))
		return
	}

	h.writeCookie(c, string(code), preferenceMaxAge)
	response.Success(c, http.StatusOK, gin.H{"currency": code, "manual": true})
}

// ResetPreference returns the caller to automatic detection
// DELETE /api/v1/currency/preference
func (h *CurrencyHandler) ResetPreference(c *gin.Context) {
	h.writeCookie(c, "", -1)
	response.Success(c, http.StatusOK, gin.H{"manual": false})
}

// Convert formats one price in the requested currency
// GET /api/v1/currency/convert?price=&from=&currency=
func (h *CurrencyHandler) Convert(c *gin.Context) {
	price := c.Query("price")
	from := currency.Base
	if raw := c.Query("from"); raw != "" {
		parsed, ok := currency.ParseCode(raw)
		if !ok {
			response.Error(c, domainerrors.BadRequest("unsupported source currency"))
			return
		}
		from = parsed
	}
	to, ok := DisplayCurrency(c)
	if !ok {
		response.Error(c, domainerrors.BadRequest("unsupported currency"))
		return
	}

	response.Success(c, http.StatusOK, h.currency.Convert(c.Request.Context(), price, from, to))
}

func (h *CurrencyHandler) writeCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(PreferenceCookie, value, maxAge, "/", "", h.secureCookie, false)
}

// DisplayCurrency picks the currency a response is rendered in: the
// currency query parameter, then a manual cookie preference, then the base.
// ok is false only for an unsupported explicit query value.
func DisplayCurrency(c *gin.Context) (currency.Code, bool) {
	if raw := strings.TrimSpace(c.Query("currency")); raw != "" {
		return currency.ParseCode(raw)
	}
	pref := preferenceFromCookie(c)
	if pref.Manual {
		return pref.Code, true
	}
	return currency.Base, true
}

func preferenceFromCookie(c *gin.Context) currency.Preference {
	raw, err := c.Cookie(PreferenceCookie)
	if err != nil {
		return currency.Automatic()
	}
	if code, ok := currency.ParseCode(raw); ok {
		return currency.Choose(code)
	}
	return currency.Automatic()
}

func optionalFloat(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

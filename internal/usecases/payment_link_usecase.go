package usecases

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/pkg/currency"
	"luxe-estates.backend/pkg/logger"
	"luxe-estates.backend/pkg/metrics"
	"luxe-estates.backend/pkg/payfast"
	"luxe-estates.backend/pkg/utils"
)

const maxItemNameLength = 100

// PaymentLinkUsecase builds hosted checkout redirects. Nothing is persisted.
type PaymentLinkUsecase struct {
	merchant     payfast.Merchant
	minAmount    float64
	metrics      *metrics.Metrics
	newPaymentID func() string
}

// NewPaymentLinkUsecase creates a new payment link usecase
func NewPaymentLinkUsecase(merchant payfast.Merchant, minAmount float64, m *metrics.Metrics) *PaymentLinkUsecase {
	return &PaymentLinkUsecase{
		merchant:     merchant,
		minAmount:    minAmount,
		metrics:      m,
		newPaymentID: func() string { return utils.GenerateUUIDv7().String() },
	}
}

// CartTotal sums price times quantity, rounded to cents; quantities below
// one count as one
func CartTotal(items []entities.LineItem) (float64, error) {
	total, err := cartTotal(items)
	if err != nil {
		return 0, err
	}
	return total.Round(2).InexactFloat64(), nil
}

// cartTotal is the exact parsed sum. Callers round only for display.

func cartTotal(items []entities.LineItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range items {
		price, ok := currency.ParsePrice(item.Price)
		if !ok {
			return decimal.Zero, fmt.Errorf("invalid price %q for %s", item.Price, item.Name)
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}

// CreateSubscription rejects carts below the minimum and returns the
// signed redirect to the hosted payment page
func (u *PaymentLinkUsecase) CreateSubscription(ctx context.Context, input *entities.SubscriptionInput) (*entities.PaymentLink, error) {
	sum, err := cartTotal(input.Items)
	if err != nil {
		u.metrics.ObservePaymentLink("invalid")
		return nil, domainerrors.BadRequest(err.Error())
	}
	if sum.LessThan(decimal.NewFromFloat(u.minAmount)) {
		u.metrics.ObservePaymentLink("below_minimum")
		return nil, domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeInvalidInput,
			fmt.Sprintf("amount must be at least %s", payfast.FormatAmount(u.minAmount)), domainerrors.ErrBelowMinimum)
	}

	total := sum.Round(2).InexactFloat64()
	paymentID := u.newPaymentID()
	url, err := u.merchant.BuildURL(payfast.Checkout{
		PaymentID: paymentID,
		Amount:    total,
		ItemName:  itemName(input.Items),
		FirstName: strings.TrimSpace(input.Customer.FirstName),
		LastName:  strings.TrimSpace(input.Customer.LastName),
		Email:     strings.TrimSpace(input.Customer.Email),
		Frequency: payfast.FrequencyMonthly,
	})
	if err != nil {
		u.metrics.ObservePaymentLink("failed")
		logger.Error(ctx, "Payment link construction failed", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}

	u.metrics.ObservePaymentLink("created")
	logger.Info(ctx, "Payment link created",
		zap.String("m_payment_id", paymentID),
		zap.Float64("amount", total),
		zap.Bool("sandbox", u.merchant.Sandbox),
	)
	return &entities.PaymentLink{
		URL:       url,
		Amount:    total,
		PaymentID: paymentID,
		Sandbox:   u.merchant.Sandbox,
	}, nil
}

// HandleNotify records the gateway callback in the log only. The sender is
// not verified and no state changes.
func (u *PaymentLinkUsecase) HandleNotify(ctx context.Context, payload map[string]string) {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if k == "signature" {
			continue
		}
		fields = append(fields, zap.String(k, payload[k]))
	}
	logger.Info(ctx, "Payment notification received", fields...)
}

func itemName(items []entities.LineItem) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		if n := strings.TrimSpace(item.Name); n != "" {
			names = append(names, n)
		}
	}
	name := strings.Join(names, ", ")
	if name == "" {
		name = "Membership"
	}
	if runes := []rune(name); len(runes) > maxItemNameLength {
		name = strings.TrimSpace(string(runes[:maxItemNameLength-3])) + "..."
	}
	return name
}

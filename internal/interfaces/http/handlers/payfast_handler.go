package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/interfaces/http/response"
)

type paymentLinkService interface {
	CreateSubscription(ctx context.Context, input *entities.SubscriptionInput) (*entities.PaymentLink, error)
	HandleNotify(ctx context.Context, payload map[string]string)
}

// PayFastHandler builds checkout links and accepts payment notifications
type PayFastHandler struct {
	payments paymentLinkService
}

// NewPayFastHandler creates a new PayFast handler
func NewPayFastHandler(payments paymentLinkService) *PayFastHandler {
	return &PayFastHandler{payments: payments}
}

// CreateSubscription returns the hosted checkout URL for a cart
// POST /api/payfast/create-subscription
func (h *PayFastHandler) CreateSubscription(c *gin.Context) {
	var input entities.SubscriptionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	link, err := h.payments.CreateSubscription(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// Notify accepts the gateway's form-encoded callback
// POST /api/payfast/notify
func (h *PayFastHandler) Notify(c *gin.Context) {
	payload := map[string]string{}
	if err := c.Request.ParseForm(); err == nil {
		for k := range c.Request.PostForm {
			payload[k] = c.Request.PostForm.Get(k)
		}
	}
	h.payments.HandleNotify(c.Request.Context(), payload)
	c.Status(http.StatusOK)
}

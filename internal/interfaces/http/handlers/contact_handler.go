package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"luxe-estates.backend/internal/domain/entities"
)

type contactService interface {
	Submit(ctx context.Context, input *entities.ContactInput) error
}

// ContactHandler relays contact form submissions
type ContactHandler struct {
	contact contactService
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contact contactService) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit sends the business notification and the auto-reply
// POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var input entities.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Please fill in all required fields with valid values."})
		return
	}

	if err := h.contact.Submit(c.Request.Context(), &input); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "We could not send your message. Please try again later."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Thank you for contacting us. We will be in touch shortly."})
}

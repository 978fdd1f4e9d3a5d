package handlers

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/interfaces/http/middleware"
	"luxe-estates.backend/internal/interfaces/http/response"
	"luxe-estates.backend/internal/usecases"
)

// MaxImageBytes caps a single property image upload
const MaxImageBytes = 10 << 20

type adminService interface {
	ListProperties(ctx context.Context) ([]*entities.Property, error)
	GetProperty(ctx context.Context, id uuid.UUID) (*entities.Property, error)
	CreateProperty(ctx context.Context, input *entities.PropertyInput) (*entities.Property, error)
	UpdateProperty(ctx context.Context, id uuid.UUID, input *entities.PropertyInput) (*entities.Property, error)
	DeleteProperty(ctx context.Context, id uuid.UUID, confirmed bool) error
	UploadImage(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
	RemoveImage(ctx context.Context, publicURL string) error
	ListProfiles(ctx context.Context, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	UpdateTier(ctx context.Context, id uuid.UUID, tier entities.MembershipTier, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	UpdateAccountStatus(ctx context.Context, id uuid.UUID, status entities.AccountStatus, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	UpdateRole(ctx context.Context, actorID, id uuid.UUID, role entities.Role, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	Stats(ctx context.Context) (*usecases.DashboardStats, error)
}

// AdminHandler handles the admin dashboard endpoints
type AdminHandler struct {
	admin adminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin adminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// ListProperties returns every listing, exclusive included
// GET /api/v1/admin/properties
func (h *AdminHandler) ListProperties(c *gin.Context) {
	properties, err := h.admin.ListProperties(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": properties, "total": len(properties)})
}

// GetProperty returns one listing for editing
// GET /api/v1/admin/properties/:id
func (h *AdminHandler) GetProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	property, err := h.admin.GetProperty(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, property)
}

// CreateProperty adds a listing
// POST /api/v1/admin/properties
func (h *AdminHandler) CreateProperty(c *gin.Context) {
	var input entities.PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	property, err := h.admin.CreateProperty(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, property)
}

// UpdateProperty replaces a listing's editable fields
// PUT /api/v1/admin/properties/:id
func (h *AdminHandler) UpdateProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input entities.PropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	property, err := h.admin.UpdateProperty(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, property)
}

// DeleteProperty removes a listing once the caller confirms
// DELETE /api/v1/admin/properties/:id?confirm=true
func (h *AdminHandler) DeleteProperty(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	if err := h.admin.DeleteProperty(c.Request.Context(), id, confirmed); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Property deleted"})
}

// UploadImage stores one image from the multipart field "file"
// POST /api/v1/admin/properties/images
func (h *AdminHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, domainerrors.BadRequest("file is required"))
		return
	}
	if fh.Size > MaxImageBytes {
		response.Error(c, domainerrors.BadRequest("image exceeds the 10 MB limit"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	defer f.Close()

	url, err := h.admin.UploadImage(c.Request.Context(), f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"url": url})
}

// RemoveImage deletes a previously uploaded image
// DELETE /api/v1/admin/properties/images?url=
func (h *AdminHandler) RemoveImage(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		response.Error(c, domainerrors.BadRequest("url is required"))
		return
	}
	if err := h.admin.RemoveImage(c.Request.Context(), url); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Image removed"})
}

// ListUsers returns one filtered page of the user table
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	q, ok := profileQuery(c)
	if !ok {
		return
	}
	page, err := h.admin.ListProfiles(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

type tierRequest struct {
	Tier entities.MembershipTier `json:"tier" binding:"required"`
}

type statusRequest struct {
	Status entities.AccountStatus `json:"status" binding:"required"`
}

type paymentStatusRequest struct {
	PaymentStatus entities.PaymentStatus `json:"paymentStatus" binding:"required"`
}

type roleRequest struct {
	Role entities.Role `json:"role" binding:"required"`
}

// UpdateTier changes a member's tier and returns the refreshed table page
// PATCH /api/v1/admin/users/:id/tier
func (h *AdminHandler) UpdateTier(c *gin.Context) {
	var req tierRequest
	h.mutateUser(c, &req, func(ctx context.Context, id uuid.UUID, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
		return h.admin.UpdateTier(ctx, id, req.Tier, q)
	})
}

// UpdateStatus activates, parks or suspends a member
// PATCH /api/v1/admin/users/:id/status
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	h.mutateUser(c, &req, func(ctx context.Context, id uuid.UUID, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
		return h.admin.UpdateAccountStatus(ctx, id, req.Status, q)
	})
}

// UpdatePaymentStatus records payment verification
// PATCH /api/v1/admin/users/:id/payment
func (h *AdminHandler) UpdatePaymentStatus(c *gin.Context) {
	var req paymentStatusRequest
	h.mutateUser(c, &req, func(ctx context.Context, id uuid.UUID, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
		return h.admin.UpdatePaymentStatus(ctx, id, req.PaymentStatus, q)
	})
}

// UpdateRole promotes or demotes a member
// PATCH /api/v1/admin/users/:id/role
func (h *AdminHandler) UpdateRole(c *gin.Context) {
	actorID, ok := middleware.GetProfileID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	var req roleRequest
	h.mutateUser(c, &req, func(ctx context.Context, id uuid.UUID, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
		return h.admin.UpdateRole(ctx, actorID, id, req.Role, q)
	})
}

// Stats returns the dashboard counters
// GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func (h *AdminHandler) mutateUser(c *gin.Context, req interface{}, apply func(context.Context, uuid.UUID, usecases.ProfileQuery) (*usecases.ProfilePage, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	q, ok := profileQuery(c)
	if !ok {
		return
	}
	page, err := apply(c.Request.Context(), id, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// profileQuery reads the table state the client is looking at
func profileQuery(c *gin.Context) (usecases.ProfileQuery, bool) {
	var filter entities.ProfileFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return usecases.ProfileQuery{}, false
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	return usecases.ProfileQuery{Filter: filter, Page: page, Limit: limit}, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/usecases"
	"luxe-estates.backend/pkg/utils"
)

type adminServiceStub struct {
	listPropertiesFn func(ctx context.Context) ([]*entities.Property, error)
	getPropertyFn    func(ctx context.Context, id uuid.UUID) (*entities.Property, error)
	createFn         func(ctx context.Context, input *entities.PropertyInput) (*entities.Property, error)
	updateFn         func(ctx context.Context, id uuid.UUID, input *entities.PropertyInput) (*entities.Property, error)
	deleteFn         func(ctx context.Context, id uuid.UUID, confirmed bool) error
	uploadFn         func(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
	removeFn         func(ctx context.Context, publicURL string) error
	listProfilesFn   func(ctx context.Context, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	updateTierFn     func(ctx context.Context, id uuid.UUID, tier entities.MembershipTier, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	updateStatusFn   func(ctx context.Context, id uuid.UUID, status entities.AccountStatus, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	updatePaymentFn  func(ctx context.Context, id uuid.UUID, status entities.PaymentStatus, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	updateRoleFn     func(ctx context.Context, actorID, id uuid.UUID, role entities.Role, q usecases.ProfileQuery) (*usecases.ProfilePage, error)
	statsFn          func(ctx context.Context) (*usecases.DashboardStats, error)
}

func (s *adminServiceStub) ListProperties(ctx context.Context) ([]*entities.Property, error) {
	return s.listPropertiesFn(ctx)
}
func (s *adminServiceStub) GetProperty(ctx context.Context, id uuid.UUID) (*entities.Property, error) {
	return s.getPropertyFn(ctx, id)
}
func (s *adminServiceStub) CreateProperty(ctx context.Context, input *entities.PropertyInput) (*entities.Property, error) {
	return s.createFn(ctx, input)
}
func (s *adminServiceStub) UpdateProperty(ctx context.Context, id uuid.UUID, input *entities.PropertyInput) (*entities.Property, error) {
	return s.updateFn(ctx, id, input)
}
func (s *adminServiceStub) DeleteProperty(ctx context.Context, id uuid.UUID, confirmed bool) error {
	return s.deleteFn(ctx, id, confirmed)
}
func (s *adminServiceStub) UploadImage(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	return s.uploadFn(ctx, r, size, contentType)
}
func (s *adminServiceStub) RemoveImage(ctx context.Context, publicURL string) error {
	return s.removeFn(ctx, publicURL)
}
func (s *adminServiceStub) ListProfiles(ctx context.Context, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
	return s.listProfilesFn(ctx, q)
}
func (s *adminServiceStub) UpdateTier(ctx context.Context, id uuid.UUID, tier entities.MembershipTier, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
	return s.updateTierFn(ctx, id, tier, q)
}
func (s *adminServiceStub) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status entities.AccountStatus, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
	return s.updateStatusFn(ctx, id, status, q)
}
func (s *adminServiceStub) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
	return s.updatePaymentFn(ctx, id, status, q)
}
func (s *adminServiceStub) UpdateRole(ctx context.Context, actorID, id uuid.UUID, role entities.Role, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
	return s.updateRoleFn(ctx, actorID, id, role, q)
}
func (s *adminServiceStub) Stats(ctx context.Context) (*usecases.DashboardStats, error) {
	return s.statsFn(ctx)
}

func TestAdminHandler_PropertyCRUD(t *testing.T) {
	id := uuid.New()
	svc := &adminServiceStub{
		listPropertiesFn: func(context.Context) ([]*entities.Property, error) {
			return []*entities.Property{{ID: id, Title: "Villa", Exclusive: true}}, nil
		},
		getPropertyFn: func(_ context.Context, got uuid.UUID) (*entities.Property, error) {
			if got != id {
				return nil, domainerrors.NotFound("property not found")
			}
			return &entities.Property{ID: id, Title: "Villa"}, nil
		},
		createFn: func(_ context.Context, in *entities.PropertyInput) (*entities.Property, error) {
			if len(in.Images) == 0 {
				return nil, domainerrors.BadRequest("at least one image is required")
			}
			return &entities.Property{ID: id, Title: in.Title}, nil
		},
		updateFn: func(_ context.Context, got uuid.UUID, in *entities.PropertyInput) (*entities.Property, error) {
			return &entities.Property{ID: got, Title: in.Title}, nil
		},
	}
	h := NewAdminHandler(svc)
	r := newTestRouter()
	r.GET("/properties", h.ListProperties)
	r.GET("/properties/:id", h.GetProperty)
	r.POST("/properties", h.CreateProperty)
	r.PUT("/properties/:id", h.UpdateProperty)

	w := doJSON(t, r, http.MethodGet, "/properties", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["total"])

	w = doJSON(t, r, http.MethodGet, "/properties/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/properties/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, http.MethodGet, "/properties/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	input := map[string]interface{}{"title": "Cliff House", "location": "Cape Town", "category": "villa", "price": "$1,000,000", "images": []string{"https://cdn/x.jpg"}}
	w = doJSON(t, r, http.MethodPost, "/properties", input)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Cliff House", decode(t, w)["title"])

	input["images"] = []string{}
	w = doJSON(t, r, http.MethodPost, "/properties", input)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	input["title"] = "Renamed"
	w = doJSON(t, r, http.MethodPut, "/properties/"+id.String(), input)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Renamed", decode(t, w)["title"])
}

func TestAdminHandler_DeleteProperty(t *testing.T) {
	var gotConfirmed bool
	svc := &adminServiceStub{
		deleteFn: func(_ context.Context, _ uuid.UUID, confirmed bool) error {
			gotConfirmed = confirmed
			if !confirmed {
				return domainerrors.ConfirmationRequired("confirm deletion")
			}
			return nil
		},
	}
	r := newTestRouter()
	r.DELETE("/properties/:id", NewAdminHandler(svc).DeleteProperty)

	w := doJSON(t, r, http.MethodDelete, "/properties/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusPreconditionRequired, w.Code)
	assert.False(t, gotConfirmed)

	w = doJSON(t, r, http.MethodDelete, "/properties/"+uuid.NewString()+"?confirm=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, gotConfirmed)
}

func multipartImage(t *testing.T, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="villa.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAdminHandler_UploadImage(t *testing.T) {
	svc := &adminServiceStub{
		uploadFn: func(_ context.Context, r io.Reader, size int64, contentType string) (string, error) {
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, int64(len(data)), size)
			if contentType != "image/jpeg" {
				return "", domainerrors.BadRequest("only image uploads are accepted")
			}
			return "https://media.luxe.test/properties/1.jpg", nil
		},
	}
	r := newTestRouter()
	r.POST("/images", NewAdminHandler(svc).UploadImage)

	body, ct := multipartImage(t, "image/jpeg", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/images", body)
	req.Header.Set("Content-Type", ct)
	w := serve(r, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "https://media.luxe.test/properties/1.jpg", decode(t, w)["url"])

	body, ct = multipartImage(t, "application/pdf", []byte("%PDF"))
	req = httptest.NewRequest(http.MethodPost, "/images", body)
	req.Header.Set("Content-Type", ct)
	w = serve(r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/images", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_RemoveImage(t *testing.T) {
	svc := &adminServiceStub{
		removeFn: func(_ context.Context, url string) error {
			if url == "https://elsewhere/x.jpg" {
				return domainerrors.BadRequest("url does not belong to the media bucket")
			}
			return nil
		},
	}
	r := newTestRouter()
	r.DELETE("/images", NewAdminHandler(svc).RemoveImage)

	w := doJSON(t, r, http.MethodDelete, "/images?url=https://media.luxe.test/properties/1.jpg", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/images?url=https://elsewhere/x.jpg", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/images", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func pageOf(profiles ...*entities.Profile) *usecases.ProfilePage {
	return &usecases.ProfilePage{Items: profiles, Meta: utils.CalculateMeta(int64(len(profiles)), 1, utils.DefaultPageLimit)}
}

func TestAdminHandler_ListUsers_PassesTableState(t *testing.T) {
	var got usecases.ProfileQuery
	svc := &adminServiceStub{
		listProfilesFn: func(_ context.Context, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
			got = q
			return pageOf(&entities.Profile{Email: "a@mail.test"}), nil
		},
	}
	r := newTestRouter()
	r.GET("/users", NewAdminHandler(svc).ListUsers)

	w := doJSON(t, r, http.MethodGet, "/users?page=2&limit=10&search=ann&tier=prestige&status=suspended&role=user&paymentStatus=verified", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, "ann", got.Filter.Search)
	assert.Equal(t, entities.TierPrestige, got.Filter.Tier)
	assert.Equal(t, entities.AccountSuspended, got.Filter.Status)
	assert.Equal(t, entities.RoleUser, got.Filter.Role)
	assert.Equal(t, entities.PaymentVerified, got.Filter.PaymentStatus)
}

func TestAdminHandler_UserMutations(t *testing.T) {
	actor := uuid.New()
	member := uuid.New()
	var calls []string
	var gotQuery usecases.ProfileQuery
	svc := &adminServiceStub{
		updateTierFn: func(_ context.Context, id uuid.UUID, tier entities.MembershipTier, q usecases.ProfileQuery) (*usecases.ProfilePage, error) {
			calls = append(calls, "tier:"+string(tier))
			gotQuery = q
			return pageOf(&entities.Profile{ID: id, MembershipTier: tier}), nil
		},
		updateStatusFn: func(_ context.Context, id uuid.UUID, status entities.AccountStatus, _ usecases.ProfileQuery) (*usecases.ProfilePage, error) {
			calls = append(calls, "status:"+string(status))
			return pageOf(&entities.Profile{ID: id, AccountStatus: status}), nil
		},
		updatePaymentFn: func(_ context.Context, id uuid.UUID, status entities.PaymentStatus, _ usecases.ProfileQuery) (*usecases.ProfilePage, error) {
			calls = append(calls, "payment:"+string(status))
			return pageOf(&entities.Profile{ID: id, PaymentStatus: status}), nil
		},
		updateRoleFn: func(_ context.Context, actorID, id uuid.UUID, role entities.Role, _ usecases.ProfileQuery) (*usecases.ProfilePage, error) {
			if actorID == id {
				return nil, domainerrors.BadRequest("admins cannot remove their own admin role")
			}
			assert.Equal(t, actor, actorID)
			calls = append(calls, "role:"+string(role))
			return pageOf(&entities.Profile{ID: id, Role: role}), nil
		},
	}
	h := NewAdminHandler(svc)
	r := newTestRouter()
	r.Use(asProfile(actor, "admin"))
	r.PATCH("/users/:id/tier", h.UpdateTier)
	r.PATCH("/users/:id/status", h.UpdateStatus)
	r.PATCH("/users/:id/payment", h.UpdatePaymentStatus)
	r.PATCH("/users/:id/role", h.UpdateRole)

	base := "/users/" + member.String()
	w := doJSON(t, r, http.MethodPatch, base+"/tier?status=active&page=3", map[string]string{"tier": "signature"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entities.AccountActive, gotQuery.Filter.Status)
	assert.Equal(t, 3, gotQuery.Page)

	w = doJSON(t, r, http.MethodPatch, base+"/status", map[string]string{"status": "suspended"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPatch, base+"/payment", map[string]string{"paymentStatus": "verified"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodPatch, base+"/role", map[string]string{"role": "admin"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"tier:signature", "status:suspended", "payment:verified", "role:admin"}, calls)

	w = doJSON(t, r, http.MethodPatch, "/users/"+actor.String()+"/role", map[string]string{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, base+"/tier", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, r, http.MethodPatch, "/users/nope/tier", map[string]string{"tier": "signature"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_Stats(t *testing.T) {
	svc := &adminServiceStub{
		statsFn: func(context.Context) (*usecases.DashboardStats, error) {
			return &usecases.DashboardStats{
				Properties: &entities.PropertyStats{Total: 4, Exclusive: 1},
				Profiles:   &entities.ProfileStats{Total: 9, Suspended: 2},
			}, nil
		},
	}
	r := newTestRouter()
	r.GET("/stats", NewAdminHandler(svc).Stats)

	w := doJSON(t, r, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"suspended":2`)

	svc.statsFn = func(context.Context) (*usecases.DashboardStats, error) {
		return nil, domainerrors.Upstream(errors.New("connection refused"))
	}
	w = doJSON(t, r, http.MethodGet, "/stats", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "connection refused", decode(t, w)["message"])
}

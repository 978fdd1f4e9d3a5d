package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/interfaces/http/middleware"
	"luxe-estates.backend/internal/usecases"
	"luxe-estates.backend/pkg/currency"
	"luxe-estates.backend/pkg/jwt"
)

type catalogServiceStub struct {
	viewer  entities.Viewer
	filter  entities.PropertyFilter
	display currency.Code
	detail  func(id uuid.UUID, viewer entities.Viewer) (*entities.PropertyDetail, error)
}

func (s *catalogServiceStub) List(_ context.Context, viewer entities.Viewer, filter entities.PropertyFilter, display currency.Code) (*entities.CatalogPage, error) {
	s.viewer, s.filter, s.display = viewer, filter, display
	return &entities.CatalogPage{Items: []entities.PropertyCard{}, DisplayCurrency: display}, nil
}

func (s *catalogServiceStub) Featured(_ context.Context, viewer entities.Viewer, display currency.Code) ([]entities.PropertyCard, error) {
	s.viewer, s.display = viewer, display
	return []entities.PropertyCard{{Title: "Gated", SignInRequired: true}}, nil
}

func (s *catalogServiceStub) Detail(_ context.Context, viewer entities.Viewer, id uuid.UUID, display currency.Code) (*entities.PropertyDetail, error) {
	s.display = display
	return s.detail(id, viewer)
}

func TestPropertyHandler_ListProperties_ParsesFilter(t *testing.T) {
	svc := &catalogServiceStub{}
	r := newTestRouter()
	r.GET("/properties", NewPropertyHandler(svc).ListProperties)

	w := doJSON(t, r, http.MethodGet, "/properties?search=%20ocean%20&category=villa&minPrice=100&maxPrice=500&bedrooms=2,3,5%2B&listingType=rental&featured=true&currency=zar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ocean", svc.filter.Search)
	assert.Equal(t, entities.PropertyCategory("villa"), svc.filter.Category)
	require.NotNil(t, svc.filter.Price.Min)
	assert.Equal(t, 100.0, *svc.filter.Price.Min)
	assert.Equal(t, []int{2, 3}, svc.filter.Bedrooms.Values)
	assert.Equal(t, 5, svc.filter.Bedrooms.AtLeast)
	assert.Equal(t, entities.ListingRental, svc.filter.ListingType)
	require.NotNil(t, svc.filter.Featured)
	assert.True(t, *svc.filter.Featured)
	assert.Equal(t, currency.ZAR, svc.display)
	assert.False(t, svc.viewer.Authenticated)
}

func TestPropertyHandler_ListProperties_Rejects(t *testing.T) {
	r := newTestRouter()
	r.GET("/properties", NewPropertyHandler(&catalogServiceStub{}).ListProperties)

	for _, q := range []string{
		"category=castle",
		"minPrice=abc",
		"minPrice=10&maxPrice=5",
		"bedrooms=two",
		"listingType=lease",
		"featured=maybe",
		"currency=JPY",
	} {
		w := doJSON(t, r, http.MethodGet, "/properties?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestPropertyHandler_ListFeatured_UsesPreferenceCookie(t *testing.T) {
	svc := &catalogServiceStub{}
	r := newTestRouter()
	r.GET("/featured", asProfile(uuid.New(), "user"), NewPropertyHandler(svc).ListFeatured)

	req := httptest.NewRequest(http.MethodGet, "/featured", nil)
	req.AddCookie(&http.Cookie{Name: PreferenceCookie, Value: "GBP"})
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, currency.GBP, svc.display)
	assert.True(t, svc.viewer.Authenticated)
	assert.Equal(t, "GBP", decode(t, w)["displayCurrency"])
}

func TestPropertyHandler_GetProperty(t *testing.T) {
	open := uuid.New()
	exclusive := uuid.New()
	svc := &catalogServiceStub{
		detail: func(id uuid.UUID, viewer entities.Viewer) (*entities.PropertyDetail, error) {
			switch id {
			case open:
				return &entities.PropertyDetail{Property: &entities.Property{ID: id, Title: "Open"}, DisplayPrice: "$1,000"}, nil
			case exclusive:
				if !viewer.Authenticated {
					return nil, domainerrors.SignInRequired("sign in to view this exclusive property")
				}
				return &entities.PropertyDetail{Property: &entities.Property{ID: id, Exclusive: true}}, nil
			}
			return nil, domainerrors.NotFound("property not found")
		},
	}
	h := NewPropertyHandler(svc)
	r := newTestRouter()
	r.GET("/properties/:id", h.GetProperty)
	r.GET("/member/properties/:id", asProfile(uuid.New(), "user"), h.GetProperty)

	w := doJSON(t, r, http.MethodGet, "/properties/"+open.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "$1,000", decode(t, w)["displayPrice"])

	w = doJSON(t, r, http.MethodGet, "/properties/"+exclusive.String(), nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["signInRequired"])
	assert.Equal(t, usecases.SignInPath(exclusive), body["signInPath"])

	w = doJSON(t, r, http.MethodGet, "/member/properties/"+exclusive.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/properties/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, r, http.MethodGet, "/properties/bad", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type profileLoaderStub map[uuid.UUID]*entities.Profile

func (s profileLoaderStub) GetProfile(_ context.Context, id uuid.UUID) (*entities.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, domainerrors.ErrNotFound
}

func TestPropertyHandler_GetProperty_SuspendedViewerIsAnonymous(t *testing.T) {
	exclusive := uuid.New()
	svc := &catalogServiceStub{
		detail: func(id uuid.UUID, viewer entities.Viewer) (*entities.PropertyDetail, error) {
			if !viewer.Authenticated {
				return nil, domainerrors.SignInRequired("sign in to view this exclusive property")
			}
			return &entities.PropertyDetail{Property: &entities.Property{ID: id, Exclusive: true, Images: []string{"https://cdn/secret.jpg"}}}, nil
		},
	}

	jwtService := jwt.NewJWTService("catalog-secret", time.Minute, time.Hour)
	memberID, suspendedID := uuid.New(), uuid.New()
	profiles := profileLoaderStub{
		memberID:    {ID: memberID, AccountStatus: entities.AccountActive, Role: entities.RoleUser},
		suspendedID: {ID: suspendedID, AccountStatus: entities.AccountSuspended, Role: entities.RoleUser},
	}

	r := newTestRouter()
	r.GET("/properties/:id",
		middleware.OptionalAuthMiddleware(jwtService, nil),
		middleware.OptionalActiveAccount(profiles),
		NewPropertyHandler(svc).GetProperty,
	)

	get := func(profileID uuid.UUID) *httptest.ResponseRecorder {
		pair, err := jwtService.GenerateTokenPair(profileID, "m@mail.test", "user")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/properties/"+exclusive.String(), nil)
		req.Header.Set(middleware.AuthorizationHeader, "Bearer "+pair.AccessToken)
		return serve(r, req)
	}

	w := get(memberID)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "secret.jpg")

	w = get(suspendedID)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "secret.jpg")
	assert.Equal(t, true, decode(t, w)["signInRequired"])
}

func TestParseCountSet(t *testing.T) {
	set, err := ParseCountSet("")
	require.NoError(t, err)
	assert.True(t, set.Empty())

	set, err = ParseCountSet("any")
	require.NoError(t, err)
	assert.True(t, set.Empty())

	set, err = ParseCountSet("1, 4+, 2+")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, set.Values)
	assert.Equal(t, 2, set.AtLeast)

	_, err = ParseCountSet("-1")
	assert.Error(t, err)
}

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/interfaces/http/middleware"
	"luxe-estates.backend/internal/interfaces/http/response"
	"luxe-estates.backend/internal/usecases"
	"luxe-estates.backend/pkg/currency"
)

type catalogService interface {
	List(ctx context.Context, viewer entities.Viewer, filter entities.PropertyFilter, display currency.Code) (*entities.CatalogPage, error)
	Featured(ctx context.Context, viewer entities.Viewer, display currency.Code) ([]entities.PropertyCard, error)
	Detail(ctx context.Context, viewer entities.Viewer, id uuid.UUID, display currency.Code) (*entities.PropertyDetail, error)
}

// PropertyHandler serves the public catalog
type PropertyHandler struct {
	catalog catalogService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(catalog catalogService) *PropertyHandler {
	return &PropertyHandler{catalog: catalog}
}

// ListProperties returns the filtered catalog
// GET /api/v1/properties?search=&category=&minPrice=&maxPrice=&minArea=&maxArea=&bedrooms=2,3,5+&currency=
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	display, ok := DisplayCurrency(c)
	if !ok {
		response.Error(c, domainerrors.BadRequest("unsupported currency"))
		return
	}
	filter, err := ParsePropertyFilter(c)
	if err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	page, err := h.catalog.List(c.Request.Context(), middleware.GetViewer(c), filter, display)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// ListFeatured returns featured cards, gated ones included
// GET /api/v1/properties/featured
func (h *PropertyHandler) ListFeatured(c *gin.Context) {
	display, ok := DisplayCurrency(c)
	if !ok {
		response.Error(c, domainerrors.BadRequest("unsupported currency"))
		return
	}
	cards, err := h.catalog.Featured(c.Request.Context(), middleware.GetViewer(c), display)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": cards, "displayCurrency": display})
}

// GetProperty returns one listing; exclusive listings need a signed-in viewer
// GET /api/v1/properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("invalid property id"))
		return
	}
	display, ok := DisplayCurrency(c)
	if !ok {
		response.Error(c, domainerrors.BadRequest("unsupported currency"))
		return
	}

	detail, err := h.catalog.Detail(c.Request.Context(), middleware.GetViewer(c), id, display)
	if err != nil {
		if appErr, ok := domainerrors.As(err); ok && appErr.Code == domainerrors.CodeSignInRequired {
			c.JSON(appErr.Status, gin.H{
				"code":           appErr.Code,
				"message":        appErr.Message,
				"error":          appErr.Message,
				"signInRequired": true,
				"signInPath":     usecases.SignInPath(id),
			})
			return
		}
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// ParsePropertyFilter reads the catalog filter from the query string
func ParsePropertyFilter(c *gin.Context) (entities.PropertyFilter, error) {
	f := entities.PropertyFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}

	if raw := strings.ToLower(strings.TrimSpace(c.Query("category"))); raw != "" && raw != "all" {
		cat := entities.PropertyCategory(raw)
		if !cat.Valid() {
			return f, fmt.Errorf("unknown category %q", raw)
		}
		f.Category = cat
	}

	var err error
	if f.Price, err = parseRange(c.Query("minPrice"), c.Query("maxPrice"), "price"); err != nil {
		return f, err
	}
	if f.Area, err = parseRange(c.Query("minArea"), c.Query("maxArea"), "area"); err != nil {
		return f, err
	}

	counts := []struct {
		param string
		dst   *entities.CountSet
	}{
		{"bedrooms", &f.Bedrooms},
		{"bathrooms", &f.Bathrooms},
		{"garage", &f.Garage},
		{"parking", &f.Parking},
	}
	for _, cs := range counts {
		set, err := ParseCountSet(c.Query(cs.param))
		if err != nil {
			return f, fmt.Errorf("%s: %w", cs.param, err)
		}
		*cs.dst = set
	}

	if raw := strings.ToLower(strings.TrimSpace(c.Query("listingType"))); raw != "" {
		lt := entities.ListingType(raw)
		if lt != entities.ListingSale && lt != entities.ListingRental {
			return f, fmt.Errorf("unknown listing type %q", raw)
		}
		f.ListingType = lt
	}

	if raw := strings.TrimSpace(c.Query("featured")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("featured must be true or false")
		}
		f.Featured = &b
	}
	return f, nil
}

// ParseCountSet parses "2,3,5+" into explicit values plus an open bucket
func ParseCountSet(raw string) (entities.CountSet, error) {
	var set entities.CountSet
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "any") {
			continue
		}
		if strings.HasSuffix(part, "+") {
			n, err := strconv.Atoi(strings.TrimSuffix(part, "+"))
			if err != nil || n < 0 {
				return set, fmt.Errorf("invalid value %q", part)
			}
			if set.AtLeast == 0 || n < set.AtLeast {
				set.AtLeast = n
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return set, fmt.Errorf("invalid value %q", part)
		}
		set.Values = append(set.Values, n)
	}
	return set, nil
}

func parseRange(minRaw, maxRaw, name string) (entities.Range, error) {
	var r entities.Range
	min, err := optionalFloat(minRaw)
	if err != nil {
		return r, fmt.Errorf("min %s must be a number", name)
	}
	max, err := optionalFloat(maxRaw)
	if err != nil {
		return r, fmt.Errorf("max %s must be a number", name)
	}
	if min != nil && max != nil && *min > *max {
		return r, fmt.Errorf("min %s exceeds max %s", name, name)
	}
	r.Min, r.Max = min, max
	return r, nil
}

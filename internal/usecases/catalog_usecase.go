package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/domain/repositories"
	"luxe-estates.backend/pkg/currency"
)

const (
	CatalogPath     = "/properties"
	MemberLoginPath = "/member/login"
)

// CatalogUsecase renders the public property catalog
type CatalogUsecase struct {
	propertyRepo repositories.PropertyRepository
	rates        RateSource
}

// NewCatalogUsecase creates a new catalog usecase
func NewCatalogUsecase(propertyRepo repositories.PropertyRepository, rates RateSource) *CatalogUsecase {
	return &CatalogUsecase{propertyRepo: propertyRepo, rates: rates}
}

// List loads the whole catalog once and filters it in a single pass.
// Exclusive listings are dropped for anonymous viewers.
func (u *CatalogUsecase) List(ctx context.Context, viewer entities.Viewer, filter entities.PropertyFilter, display currency.Code) (*entities.CatalogPage, error) {
	display = displayCode(display)
	properties, err := u.propertyRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	rates := u.rates.Get(ctx).Rates

	items := make([]entities.PropertyCard, 0, len(properties))
	for _, p := range properties {
		if !MatchesFilter(p, filter, viewer, rates, display) {
			continue
		}
		items = append(items, BuildCard(p, viewer, rates, display))
	}

	page := &entities.CatalogPage{
		Items:           items,
		Total:           len(items),
		DisplayCurrency: display,
		Badges:          FilterBadges(filter, display),
	}
	if len(page.Badges) > 0 {
		page.ClearAllPath = CatalogPath
	}
	return page, nil
}

// Featured returns featured listings. Exclusive ones are kept as gated cards.
func (u *CatalogUsecase) Featured(ctx context.Context, viewer entities.Viewer, display currency.Code) ([]entities.PropertyCard, error) {
	display = displayCode(display)
	properties, err := u.propertyRepo.ListFeatured(ctx)
	if err != nil {
		return nil, err
	}
	rates := u.rates.Get(ctx).Rates

	cards := make([]entities.PropertyCard, 0, len(properties))
	for _, p := range properties {
		cards = append(cards, BuildCard(p, viewer, rates, display))
	}
	return cards, nil
}

// Detail returns one listing. Anonymous viewers get a sign-in error for
// exclusive listings.
func (u *CatalogUsecase) Detail(ctx context.Context, viewer entities.Viewer, id uuid.UUID, display currency.Code) (*entities.PropertyDetail, error) {
	display = displayCode(display)
	p, err := u.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("property not found")
		}
		return nil, err
	}
	if p.Exclusive && !viewer.Authenticated {
		return nil, domainerrors.SignInRequired("sign in to view this exclusive property")
	}

	rates := u.rates.Get(ctx).Rates
	detail := &entities.PropertyDetail{
		Property:        p,
		DisplayPrice:    currency.FormatPrice(p.Price, p.Currency, display, rates),
		DisplayCurrency: display,
	}
	if p.SecurityDeposit.Valid {
		detail.DisplaySecurityDeposit = currency.FormatPrice(p.SecurityDeposit.String, p.Currency, display, rates)
	}
	return detail, nil
}

// MatchesFilter is the conjunction of every active filter plus the
// exclusive gate.
func MatchesFilter(p *entities.Property, f entities.PropertyFilter, viewer entities.Viewer, rates currency.Rates, display currency.Code) bool {
	if p.Exclusive && !viewer.Authenticated {
		return false
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(p.Title), search) && !strings.Contains(strings.ToLower(p.Location), search) {
			return false
		}
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if !f.Price.Empty() {
		amount, ok := displayAmount(p, rates, display)
		if !ok || !f.Price.Contains(amount) {
			return false
		}
	}
	if !f.Area.Empty() && !f.Area.Contains(p.Area) {
		return false
	}
	if !f.Bedrooms.Contains(p.Bedrooms) || !f.Bathrooms.Contains(p.Bathrooms) ||
		!f.Garage.Contains(p.Garage) || !f.Parking.Contains(p.Parking) {
		return false
	}
	if f.ListingType != "" && p.ListingType != f.ListingType {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	return true
}

// BuildCard renders p for viewer. Exclusive listings shown to an anonymous
// viewer carry no image and no detail link.
func BuildCard(p *entities.Property, viewer entities.Viewer, rates currency.Rates, display currency.Code) entities.PropertyCard {
	card := entities.PropertyCard{
		ID:                    p.ID,
		Title:                 p.Title,
		Location:              p.Location,
		Category:              p.Category,
		DisplayPrice:          currency.FormatPrice(p.Price, p.Currency, display, rates),
		DisplayCurrency:       display,
		Bedrooms:              p.Bedrooms,
		Bathrooms:             p.Bathrooms,
		Garage:                p.Garage,
		Parking:               p.Parking,
		Area:                  p.Area,
		ListingType:           p.ListingType,
		RentalPeriod:          p.RentalPeriod.String,
		Featured:              p.Featured,
		Exclusive:             p.Exclusive,
		InvestmentOpportunity: p.InvestmentOpportunity,
	}
	if p.Exclusive && !viewer.Authenticated {
		card.SignInRequired = true
		card.SignInPath = SignInPath(p.ID)
		return card
	}
	if len(p.Images) > 0 {
		card.Image = p.Images[0]
	}
	card.DetailPath = DetailPath(p.ID)
	return card
}

// DetailPath is the public page of a listing
func DetailPath(id uuid.UUID) string {
	return CatalogPath + "/" + id.String()
}

// SignInPath sends the viewer to the member sign-in page and back to the listing
func SignInPath(id uuid.UUID) string {
	return MemberLoginPath + "?redirect=" + url.QueryEscape(DetailPath(id))
}

// FilterBadges describes every active filter. Removing any badge clears the
// whole filter state.
func FilterBadges(f entities.PropertyFilter, display currency.Code) []entities.FilterBadge {
	badges := make([]entities.FilterBadge, 0)
	if s := strings.TrimSpace(f.Search); s != "" {
		badges = append(badges, entities.FilterBadge{Key: "search", Label: fmt.Sprintf("Search: %q", s)})
	}
	if f.Category != "" {
		badges = append(badges, entities.FilterBadge{Key: "category", Label: "Category: " + titleCase(string(f.Category))})
	}
	if !f.Price.Empty() {
		badges = append(badges, entities.FilterBadge{Key: "price", Label: "Price: " + rangeLabel(f.Price, func(v float64) string {
			return currency.Format(v, display)
		})})
	}
	if !f.Area.Empty() {
		badges = append(badges, entities.FilterBadge{Key: "area", Label: "Area: " + rangeLabel(f.Area, func(v float64) string {
			return strconv.FormatFloat(v, 'f', -1, 64) + " m²"
		})})
	}
	counts := []struct {
		key, name string
		set       entities.CountSet
	}{
		{"bedrooms", "Bedrooms", f.Bedrooms},
		{"bathrooms", "Bathrooms", f.Bathrooms},
		{"garage", "Garage", f.Garage},
		{"parking", "Parking", f.Parking},
	}
	for _, c := range counts {
		if !c.set.Empty() {
			badges = append(badges, entities.FilterBadge{Key: c.key, Label: c.name + ": " + countSetLabel(c.set)})
		}
	}
	switch f.ListingType {
	case entities.ListingRental:
		badges = append(badges, entities.FilterBadge{Key: "listingType", Label: "For rent"})
	case entities.ListingSale:
		badges = append(badges, entities.FilterBadge{Key: "listingType", Label: "For sale"})
	}
	if f.Featured != nil && *f.Featured {
		badges = append(badges, entities.FilterBadge{Key: "featured", Label: "Featured"})
	}
	return badges
}

func displayAmount(p *entities.Property, rates currency.Rates, display currency.Code) (float64, bool) {
	amount, ok := currency.ParsePrice(p.Price)
	if !ok {
		return 0, false
	}
	from := p.Currency
	if from == "" {
		from = currency.Base
	}
	converted, err := currency.Exchange(amount, rates, from, display)
	if err != nil {
		return 0, false
	}
	return converted, true
}

func displayCode(c currency.Code) currency.Code {
	if c.Valid() {
		return c
	}
	return currency.Base
}

func rangeLabel(r entities.Range, format func(float64) string) string {
	switch {
	case r.Min != nil && r.Max != nil:
		return format(*r.Min) + " to " + format(*r.Max)
	case r.Min != nil:
		return "from " + format(*r.Min)
	default:
		return "up to " + format(*r.Max)
	}
}

func countSetLabel(s entities.CountSet) string {
	values := append([]int(nil), s.Values...)
	sort.Ints(values)
	parts := make([]string, 0, len(values)+1)
	for _, v := range values {
		if s.AtLeast > 0 && v >= s.AtLeast {
			continue
		}
		parts = append(parts, strconv.Itoa(v))
	}
	if s.AtLeast > 0 {
		parts = append(parts, strconv.Itoa(s.AtLeast)+"+")
	}
	return strings.Join(parts, ", ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

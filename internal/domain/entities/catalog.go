package entities

import (
	"github.com/google/uuid"
	"luxe-estates.backend/pkg/currency"
)

// CountSet matches a count against explicit values plus an optional "N or more" bucket
type CountSet struct {
	Values  []int `json:"values,omitempty"`
	AtLeast int   `json:"atLeast,omitempty"`
}

// Empty reports whether the set constrains nothing
func (s CountSet) Empty() bool {
	return len(s.Values) == 0 && s.AtLeast <= 0
}

// Contains reports whether n is a member of the set
func (s CountSet) Contains(n int) bool {
	if s.Empty() {
		return true
	}
	if s.AtLeast > 0 && n >= s.AtLeast {
		return true
	}
	for _, v := range s.Values {
		if v == n {
			return true
		}
	}
	return false
}

// Range is an inclusive numeric interval; nil bounds are open
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Empty reports whether neither bound is set
func (r Range) Empty() bool { return r.Min == nil && r.Max == nil }

// Contains reports whether v lies within the bounds
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// PropertyFilter is the catalog search state. Price bounds are expressed in
// the display currency.
type PropertyFilter struct {
	Search      string           `json:"search,omitempty"`
	Category    PropertyCategory `json:"category,omitempty"`
	Price       Range            `json:"price"`
	Area        Range            `json:"area"`
	Bedrooms    CountSet         `json:"bedrooms"`
	Bathrooms   CountSet         `json:"bathrooms"`
	Garage      CountSet         `json:"garage"`
	Parking     CountSet         `json:"parking"`
	ListingType ListingType      `json:"listingType,omitempty"`
	Featured    *bool            `json:"featured,omitempty"`
}

// Viewer is who the catalog renders for
type Viewer struct {
	ProfileID     uuid.UUID
	Authenticated bool
	Role          Role
}

// Anonymous is the unauthenticated viewer
var Anonymous = Viewer{}

// PropertyCard is a catalog entry rendered for a viewer. Gated cards carry no
// media and no detail link.
type PropertyCard struct {
	ID                    uuid.UUID        `json:"id"`
	Title                 string           `json:"title"`
	Location              string           `json:"location"`
	Category              PropertyCategory `json:"category"`
	DisplayPrice          string           `json:"displayPrice"`
	DisplayCurrency       currency.Code    `json:"displayCurrency"`
	Bedrooms              int              `json:"bedrooms"`
	Bathrooms             int              `json:"bathrooms"`
	Garage                int              `json:"garage"`
	Parking               int              `json:"parking"`
	Area                  float64          `json:"area"`
	ListingType           ListingType      `json:"listingType"`
	RentalPeriod          string           `json:"rentalPeriod,omitempty"`
	Featured              bool             `json:"featured"`
	Exclusive             bool             `json:"exclusive"`
	InvestmentOpportunity bool             `json:"investmentOpportunity"`
	Image                 string           `json:"image,omitempty"`
	DetailPath            string           `json:"detailPath,omitempty"`
	SignInRequired        bool             `json:"signInRequired"`
	SignInPath            string           `json:"signInPath,omitempty"`
}

// PropertyDetail is the full listing returned to a permitted viewer
type PropertyDetail struct {
	*Property
	DisplayPrice           string        `json:"displayPrice"`
	DisplayCurrency        currency.Code `json:"displayCurrency"`
	DisplaySecurityDeposit string        `json:"displaySecurityDeposit,omitempty"`
}

// FilterBadge is one removable chip describing an active filter
type FilterBadge struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// CatalogPage is the filtered catalog response
type CatalogPage struct {
	Items           []PropertyCard `json:"items"`
	Total           int            `json:"total"`
	DisplayCurrency currency.Code  `json:"displayCurrency"`
	Badges          []FilterBadge  `json:"badges"`
	ClearAllPath    string         `json:"clearAllPath,omitempty"`
}

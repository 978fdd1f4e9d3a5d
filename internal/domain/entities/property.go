package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"luxe-estates.backend/pkg/currency"
)

// PropertyCategory is the listing type shown in the catalog filter
type PropertyCategory string

const (
	CategoryVilla      PropertyCategory = "villa"
	CategoryApartment  PropertyCategory = "apartment"
	CategoryPenthouse  PropertyCategory = "penthouse"
	CategoryEstate     PropertyCategory = "estate"
	CategoryTownhouse  PropertyCategory = "townhouse"
	CategoryLand       PropertyCategory = "land"
	CategoryCommercial PropertyCategory = "commercial"
)

// Valid reports whether c is a known category
func (c PropertyCategory) Valid() bool {
	switch c {
	case CategoryVilla, CategoryApartment, CategoryPenthouse, CategoryEstate,
		CategoryTownhouse, CategoryLand, CategoryCommercial:
		return true
	}
	return false
}

// ListingType distinguishes sale and rental listings
type ListingType string

const (
	ListingSale   ListingType = "sale"
	ListingRental ListingType = "rental"
)

// RentalPeriod is the billing period of a rental listing
type RentalPeriod string

const (
	RentalMonthly RentalPeriod = "monthly"
	RentalWeekly  RentalPeriod = "weekly"
	RentalDaily   RentalPeriod = "daily"
)

// Valid reports whether p is a known rental period
func (p RentalPeriod) Valid() bool {
	return p == RentalMonthly || p == RentalWeekly || p == RentalDaily
}

// Property represents a listing
type Property struct {
	ID                    uuid.UUID        `json:"id"`
	Title                 string           `json:"title"`
	Description           string           `json:"description"`
	Location              string           `json:"location"`
	Category              PropertyCategory `json:"category"`
	Price                 string           `json:"price"`
	Currency              currency.Code    `json:"currency"`
	Bedrooms              int              `json:"bedrooms"`
	Bathrooms             int              `json:"bathrooms"`
	Garage                int              `json:"garage"`
	Parking               int              `json:"parking"`
	Area                  float64          `json:"area"`
	Images                []string         `json:"images"`
	ExternalLinks         []string         `json:"externalLinks"`
	Featured              bool             `json:"featured"`
	Exclusive             bool             `json:"exclusive"`
	InvestmentOpportunity bool             `json:"investmentOpportunity"`
	ListingType           ListingType      `json:"listingType"`
	RentalPeriod          null.String      `json:"rentalPeriod"`
	SecurityDeposit       null.String      `json:"securityDeposit"`
	ROIPercentage         null.Float64     `json:"roiPercentage"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
}

// PropertyInput is the admin create/update payload
type PropertyInput struct {
	Title                 string           `json:"title" binding:"required,max=200"`
	Description           string           `json:"description"`
	Location              string           `json:"location" binding:"required"`
	Category              PropertyCategory `json:"category" binding:"required"`
	Price                 string           `json:"price"`
	Currency              string           `json:"currency"`
	Bedrooms              int              `json:"bedrooms" binding:"min=0"`
	Bathrooms             int              `json:"bathrooms" binding:"min=0"`
	Garage                int              `json:"garage" binding:"min=0"`
	Parking               int              `json:"parking" binding:"min=0"`
	Area                  float64          `json:"area" binding:"min=0"`
	Images                []string         `json:"images"`
	ExternalLinks         []string         `json:"externalLinks"`
	Featured              bool             `json:"featured"`
	Exclusive             bool             `json:"exclusive"`
	InvestmentOpportunity bool             `json:"investmentOpportunity"`
	ListingType           ListingType      `json:"listingType"`
	RentalPeriod          string           `json:"rentalPeriod"`
	SecurityDeposit       string           `json:"securityDeposit"`
	ROIPercentage         *float64         `json:"roiPercentage"`
}

// PropertyStats backs the admin dashboard counters
type PropertyStats struct {
	Total     int64 `json:"total"`
	Exclusive int64 `json:"exclusive"`
	Featured  int64 `json:"featured"`
	Rentals   int64 `json:"rentals"`
}

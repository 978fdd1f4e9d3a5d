package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Property struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Title                 string         `gorm:"type:varchar(200);not null"`
	Description           string         `gorm:"type:text"`
	Location              string         `gorm:"type:varchar(255);not null;index"`
	Category              string         `gorm:"type:varchar(50);not null;index"`
	Price                 string         `gorm:"type:varchar(100)"`
	Currency              string         `gorm:"type:varchar(3);not null;default:'USD'"`
	Bedrooms              int            `gorm:"not null;default:0"`
	Bathrooms             int            `gorm:"not null;default:0"`
	Garage                int            `gorm:"not null;default:0"`
	Parking               int            `gorm:"not null;default:0"`
	Area                  float64        `gorm:"type:numeric(12,2);not null;default:0"`
	Images                pq.StringArray `gorm:"type:text[]"`
	ExternalLinks         pq.StringArray `gorm:"type:text[]"`
	Featured              bool           `gorm:"not null;default:false;index"`
	Exclusive             bool           `gorm:"not null;default:false"`
	InvestmentOpportunity bool           `gorm:"not null;default:false"`
	ListingType           string         `gorm:"type:varchar(20);not null;default:'sale'"`
	RentalPeriod          *string        `gorm:"type:varchar(20)"`
	SecurityDeposit       *string        `gorm:"type:varchar(100)"`
	ROIPercentage         *float64       `gorm:"type:numeric(6,2)"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

func (Property) TableName() string {
	return "properties"
}

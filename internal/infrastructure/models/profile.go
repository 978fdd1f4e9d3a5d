package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email                string     `gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName             string     `gorm:"type:varchar(100);not null"`
	PasswordHash         string     `gorm:"type:varchar(255)"`
	AuthProvider         string     `gorm:"type:varchar(20);not null;default:'password'"`
	MembershipTier       string     `gorm:"type:varchar(20);not null;default:'essential'"`
	AccountStatus        string     `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus        string     `gorm:"type:varchar(20);not null;default:'pending'"`
	PaymentVerifiedAt    *time.Time `gorm:"type:timestamp"`
	NotificationsEnabled bool       `gorm:"not null;default:true"`
	Role                 string     `gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	DeletedAt            gorm.DeletedAt `gorm:"index"`
}

func (Profile) TableName() string {
	return "profiles"
}

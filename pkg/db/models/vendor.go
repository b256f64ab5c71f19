package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a supplier contact record in the directory.
type Vendor struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string    `gorm:"column:name;not null" json:"name"`
	Email         string    `gorm:"column:email;not null;uniqueIndex" json:"email"`
	ContactPerson *string   `gorm:"column:contact_person" json:"contactPerson,omitempty"`
	Phone         *string   `gorm:"column:phone" json:"phone,omitempty"`
	Address       *string   `gorm:"column:address" json:"address,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

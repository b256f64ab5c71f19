package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// RFP is a structured Request for Proposal extracted from a natural-language
// procurement request.
type RFP struct {
	ID             uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title          string           `gorm:"column:title;not null" json:"title"`
	RawInput       string           `gorm:"column:raw_input;not null" json:"rawInput"`
	Description    *string          `gorm:"column:description" json:"description,omitempty"`
	Budget         *decimal.Decimal `gorm:"column:budget;type:numeric(14,2)" json:"budget,omitempty"`
	Currency       string           `gorm:"column:currency;not null;default:'USD'" json:"currency"`
	DeliveryDays   *int             `gorm:"column:delivery_days" json:"deliveryDays,omitempty"`
	PaymentTerms   *string          `gorm:"column:payment_terms" json:"paymentTerms,omitempty"`
	WarrantyMonths *int             `gorm:"column:warranty_months" json:"warrantyMonths,omitempty"`
	Status         enums.RFPStatus  `gorm:"column:status;not null;default:'DRAFT'" json:"status"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	Items      []RFPItem   `gorm:"foreignKey:RFPID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	RFPVendors []RFPVendor `gorm:"foreignKey:RFPID;constraint:OnDelete:CASCADE" json:"rfpVendors,omitempty"`
	Proposals  []Proposal  `gorm:"foreignKey:RFPID;constraint:OnDelete:CASCADE" json:"proposals,omitempty"`
}

// TableName keeps the SQL identifier lowercase.
func (RFP) TableName() string { return "rfps" }

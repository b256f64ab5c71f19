package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/types"
)

// Proposal is a vendor's structured response to an RFP. At most one proposal
// exists per (rfp_id, vendor_id) pair; later submissions overwrite it.
type Proposal struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RFPID      uuid.UUID `gorm:"column:rfp_id;type:uuid;not null;uniqueIndex:idx_proposal_pair" json:"rfpId"`
	VendorID   uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:idx_proposal_pair" json:"vendorId"`
	RawEmail   string    `gorm:"column:raw_email;not null" json:"rawEmail"`
	RawSubject *string   `gorm:"column:raw_subject" json:"rawSubject,omitempty"`

	// ParsedData retains the AI collaborator's output verbatim.
	ParsedData types.JSONRaw `gorm:"column:parsed_data;type:jsonb" json:"parsedData,omitempty"`

	TotalPrice   *decimal.Decimal     `gorm:"column:total_price;type:numeric(14,2)" json:"totalPrice,omitempty"`
	UnitPrices   types.UnitPriceLines `gorm:"column:unit_prices;type:jsonb" json:"unitPrices"`
	DeliveryDays *int                 `gorm:"column:delivery_days" json:"deliveryDays,omitempty"`
	Warranty     *string              `gorm:"column:warranty" json:"warranty,omitempty"`
	PaymentTerms *string              `gorm:"column:payment_terms" json:"paymentTerms,omitempty"`

	AIScore      *int             `gorm:"column:ai_score" json:"aiScore,omitempty"`
	AISummary    *string          `gorm:"column:ai_summary" json:"aiSummary,omitempty"`
	AIStrengths  types.StringList `gorm:"column:ai_strengths;type:jsonb" json:"aiStrengths"`
	AIWeaknesses types.StringList `gorm:"column:ai_weaknesses;type:jsonb" json:"aiWeaknesses"`

	ReceivedAt time.Time `gorm:"column:received_at;autoCreateTime" json:"receivedAt"`

	Vendor *Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	RFP    *RFP    `gorm:"foreignKey:RFPID" json:"rfp,omitempty"`
}

// TableName keeps the SQL identifier lowercase.
func (Proposal) TableName() string { return "proposals" }

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// RFPVendor records that an RFP was (or failed to be) dispatched to a vendor.
// The (rfp_id, vendor_id) pair is unique; re-sends update the existing row.
type RFPVendor struct {
	ID       uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RFPID    uuid.UUID            `gorm:"column:rfp_id;type:uuid;not null;uniqueIndex:idx_rfp_vendor_pair" json:"rfpId"`
	VendorID uuid.UUID            `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:idx_rfp_vendor_pair" json:"vendorId"`
	SentAt   *time.Time           `gorm:"column:sent_at" json:"sentAt,omitempty"`
	Status   enums.DispatchStatus `gorm:"column:status;not null" json:"status"`

	Vendor *Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	RFP    *RFP    `gorm:"foreignKey:RFPID" json:"rfp,omitempty"`
}

// TableName keeps the SQL identifier lowercase.
func (RFPVendor) TableName() string { return "rfp_vendors" }

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/procureflow/procureflow-backend/pkg/types"
)

// RFPItem is one line item owned by an RFP. Items are immutable once created;
// there is no update path.
type RFPItem struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RFPID          uuid.UUID     `gorm:"column:rfp_id;type:uuid;not null;index" json:"rfpId"`
	Name           string        `gorm:"column:name;not null" json:"name"`
	Description    *string       `gorm:"column:description" json:"description,omitempty"`
	Quantity       int           `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Specifications types.SpecMap `gorm:"column:specifications;type:jsonb" json:"specifications"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName keeps the SQL identifier lowercase.
func (RFPItem) TableName() string { return "rfp_items" }

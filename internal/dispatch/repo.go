package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// Repository handles RFPVendor dispatch records.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to dispatch record operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// MarkSent upserts the (rfp, vendor) dispatch row as SENT with the given
// timestamp. Re-sends update the existing row in place.
func (r *Repository) MarkSent(ctx context.Context, rfpID, vendorID uuid.UUID, sentAt time.Time) error {
	record := models.RFPVendor{
		RFPID:    rfpID,
		VendorID: vendorID,
		SentAt:   &sentAt,
		Status:   enums.DispatchStatusSent,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "rfp_id"}, {Name: "vendor_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"sent_at": sentAt,
			"status":  enums.DispatchStatusSent,
		}),
	}).Create(&record).Error
}

// MarkFailed upserts the (rfp, vendor) dispatch row as FAILED. The sent_at
// timestamp is left untouched.
func (r *Repository) MarkFailed(ctx context.Context, rfpID, vendorID uuid.UUID) error {
	record := models.RFPVendor{
		RFPID:    rfpID,
		VendorID: vendorID,
		Status:   enums.DispatchStatusFailed,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "rfp_id"}, {Name: "vendor_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status": enums.DispatchStatusFailed,
		}),
	}).Create(&record).Error
}

// LatestSentForVendor returns the vendor's most recently dispatched SENT
// record, used to correlate replies that carry no explicit RFP id.
func (r *Repository) LatestSentForVendor(ctx context.Context, vendorID uuid.UUID) (*models.RFPVendor, error) {
	var record models.RFPVendor
	if err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND status = ?", vendorID, enums.DispatchStatusSent).
		Order("sent_at DESC").
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

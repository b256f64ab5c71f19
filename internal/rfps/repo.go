package rfps

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
)

// Repository handles RFP persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to RFP operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all RFPs with their items, newest first.
func (r *Repository) List(ctx context.Context) ([]models.RFP, error) {
	var rfps []models.RFP
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&rfps).Error; err != nil {
		return nil, err
	}
	return rfps, nil
}

// FindByID loads an RFP with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	var rfp models.RFP
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&rfp).Error; err != nil {
		return nil, err
	}
	return &rfp, nil
}

// FindDetailed loads an RFP with items, dispatch records, and proposals, the
// latter two with their vendors attached.
func (r *Repository) FindDetailed(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	var rfp models.RFP
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("RFPVendors.Vendor").
		Preload("Proposals.Vendor").
		Where("id = ?", id).
		First(&rfp).Error; err != nil {
		return nil, err
	}
	return &rfp, nil
}

// Create persists a new RFP and its items in one transaction.
func (r *Repository) Create(ctx context.Context, rfp *models.RFP) error {
	if rfp == nil {
		return fmt.Errorf("rfp is required")
	}
	return r.db.WithContext(ctx).Create(rfp).Error
}

// Delete removes an RFP row and its dependents, reporting whether it existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.RFP{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateStatus writes the given status on the RFP row.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RFPStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.RFP{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// AdvanceStatus moves the RFP status forward to target. Requests that would
// move the status backward or sideways are ignored; the lifecycle only ever
// advances.
func (r *Repository) AdvanceStatus(ctx context.Context, id uuid.UUID, target enums.RFPStatus) error {
	var rfp models.RFP
	if err := r.db.WithContext(ctx).
		Select("id", "status").
		Where("id = ?", id).
		First(&rfp).Error; err != nil {
		return err
	}
	if !rfp.Status.CanAdvanceTo(target) {
		return nil
	}
	return r.UpdateStatus(ctx, id, target)
}

// ProposalCounts returns the number of proposals per RFP.
func (r *Repository) ProposalCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.groupedCounts(ctx, "proposals")
}

// DispatchCounts returns the number of dispatch records per RFP.
func (r *Repository) DispatchCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.groupedCounts(ctx, "rfp_vendors")
}

func (r *Repository) groupedCounts(ctx context.Context, table string) (map[uuid.UUID]int64, error) {
	type row struct {
		RFPID uuid.UUID
		Total int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Table(table).
		Select("rfp_id, COUNT(*) AS total").
		Group("rfp_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, rec := range rows {
		counts[rec.RFPID] = rec.Total
	}
	return counts, nil
}

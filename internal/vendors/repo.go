package vendors

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
)

// Repository handles vendor persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to vendor operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all vendors, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Vendor, error) {
	var vendors []models.Vendor
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// FindByID loads a vendor by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// FindByIDs loads the vendors matching the given ids. Unknown ids are
// silently absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var vendors []models.Vendor
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

// FindByEmail loads a vendor by exact email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// likeEscaper neutralizes LIKE metacharacters so an underscore in an inbound
// address cannot act as a single-character wildcard.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// FindByEmailAddress matches a vendor whose stored email contains the given
// address, case-insensitively. Inbound mail addresses often carry display
// names or subaddress tags around the registered value.
func (r *Repository) FindByEmailAddress(ctx context.Context, address string) (*models.Vendor, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if address == "" {
		return nil, gorm.ErrRecordNotFound
	}
	pattern := "%" + likeEscaper.Replace(address) + "%"
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).
		Where(`LOWER(email) LIKE ? ESCAPE '\'`, pattern).
		First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

// Create persists a new vendor row.
func (r *Repository) Create(ctx context.Context, vendor *models.Vendor) error {
	if vendor == nil {
		return fmt.Errorf("vendor is required")
	}
	return r.db.WithContext(ctx).Create(vendor).Error
}

// Update saves the provided vendor.
func (r *Repository) Update(ctx context.Context, vendor *models.Vendor) error {
	if vendor == nil {
		return fmt.Errorf("vendor is required")
	}
	return r.db.WithContext(ctx).Save(vendor).Error
}

// Delete removes a vendor row, reporting whether it existed.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Vendor{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ProposalCounts returns the number of proposals per vendor.
func (r *Repository) ProposalCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.groupedCounts(ctx, "proposals")
}

// DispatchCounts returns the number of dispatch records per vendor.
func (r *Repository) DispatchCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.groupedCounts(ctx, "rfp_vendors")
}

func (r *Repository) groupedCounts(ctx context.Context, table string) (map[uuid.UUID]int64, error) {
	type row struct {
		VendorID uuid.UUID
		Total    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Table(table).
		Select("vendor_id, COUNT(*) AS total").
		Group("vendor_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, rec := range rows {
		counts[rec.VendorID] = rec.Total
	}
	return counts, nil
}

// ProposalsForVendor returns the vendor's proposals with their requests
// attached.
func (r *Repository) ProposalsForVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	if err := r.db.WithContext(ctx).
		Preload("RFP").
		Where("vendor_id = ?", vendorID).
		Order("received_at DESC").
		Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

// DispatchesForVendor returns the vendor's dispatch records with their
// requests attached.
func (r *Repository) DispatchesForVendor(ctx context.Context, vendorID uuid.UUID) ([]models.RFPVendor, error) {
	var dispatches []models.RFPVendor
	if err := r.db.WithContext(ctx).
		Preload("RFP").
		Where("vendor_id = ?", vendorID).
		Find(&dispatches).Error; err != nil {
		return nil, err
	}
	return dispatches, nil
}

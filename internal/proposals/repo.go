package proposals

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/types"
)

// Repository handles proposal persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to proposal operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns proposals with vendor and request attached, newest first.
// A zero rfpID returns proposals across all requests.
func (r *Repository) List(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error) {
	query := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("RFP").
		Order("received_at DESC")
	if rfpID != uuid.Nil {
		query = query.Where("rfp_id = ?", rfpID)
	}
	var proposals []models.Proposal
	if err := query.Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

// FindByID loads one proposal with its vendor and the full request.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := r.db.WithContext(ctx).
		Preload("Vendor").
		Preload("RFP.Items").
		Where("id = ?", id).
		First(&proposal).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// FindByPair loads the proposal for one (rfp, vendor) pair with its vendor.
func (r *Repository) FindByPair(ctx context.Context, rfpID, vendorID uuid.UUID) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("rfp_id = ? AND vendor_id = ?", rfpID, vendorID).
		First(&proposal).Error; err != nil {
		return nil, err
	}
	return &proposal, nil
}

// ListForRFP returns the proposals for one request with vendors attached.
func (r *Repository) ListForRFP(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	if err := r.db.WithContext(ctx).
		Preload("Vendor").
		Where("rfp_id = ?", rfpID).
		Order("received_at ASC").
		Find(&proposals).Error; err != nil {
		return nil, err
	}
	return proposals, nil
}

// Upsert writes the proposal keyed by (rfp_id, vendor_id); a later
// submission from the same vendor overwrites the stored one. The persisted
// row is returned with its vendor attached.
func (r *Repository) Upsert(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	if proposal == nil {
		return nil, fmt.Errorf("proposal is required")
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "rfp_id"}, {Name: "vendor_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"raw_email":     proposal.RawEmail,
			"raw_subject":   proposal.RawSubject,
			"parsed_data":   proposal.ParsedData,
			"total_price":   proposal.TotalPrice,
			"unit_prices":   proposal.UnitPrices,
			"delivery_days": proposal.DeliveryDays,
			"warranty":      proposal.Warranty,
			"payment_terms": proposal.PaymentTerms,
			"received_at":   proposal.ReceivedAt,
		}),
	}).Create(proposal).Error; err != nil {
		return nil, err
	}
	return r.FindByPair(ctx, proposal.RFPID, proposal.VendorID)
}

// SaveEvaluation writes the comparison results onto one proposal row.
func (r *Repository) SaveEvaluation(ctx context.Context, rfpID, vendorID uuid.UUID, score int, summary string, strengths, weaknesses []string) error {
	return r.db.WithContext(ctx).
		Model(&models.Proposal{}).
		Where("rfp_id = ? AND vendor_id = ?", rfpID, vendorID).
		Updates(map[string]any{
			"ai_score":      score,
			"ai_summary":    summary,
			"ai_strengths":  types.StringList(strengths),
			"ai_weaknesses": types.StringList(weaknesses),
		}).Error
}

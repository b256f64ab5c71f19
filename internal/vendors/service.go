package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/pkg/db"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
)

type vendorRepository interface {
	List(ctx context.Context) ([]models.Vendor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindByEmail(ctx context.Context, email string) (*models.Vendor, error)
	Create(ctx context.Context, vendor *models.Vendor) error
	Update(ctx context.Context, vendor *models.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ProposalCounts(ctx context.Context) (map[uuid.UUID]int64, error)
	DispatchCounts(ctx context.Context) (map[uuid.UUID]int64, error)
	ProposalsForVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Proposal, error)
	DispatchesForVendor(ctx context.Context, vendorID uuid.UUID) ([]models.RFPVendor, error)
}

// Service exposes vendor directory operations.
type Service interface {
	List(ctx context.Context) ([]VendorSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*VendorDetail, error)
	Create(ctx context.Context, input CreateVendorInput) (*models.Vendor, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*models.Vendor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo vendorRepository
}

// NewService builds a vendor service with the provided repository.
func NewService(repo vendorRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	return &service{repo: repo}, nil
}

// CreateVendorInput captures the fields for a new vendor.
type CreateVendorInput struct {
	Name          string
	Email         string
	ContactPerson *string
	Phone         *string
	Address       *string
}

// UpdateVendorInput captures the vendor fields allowed to change. Nil means
// leave unchanged.
type UpdateVendorInput struct {
	Name          *string
	Email         *string
	ContactPerson *string
	Phone         *string
	Address       *string
}

func (s *service) List(ctx context.Context) ([]VendorSummary, error) {
	vendors, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}
	proposalCounts, err := s.repo.ProposalCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count proposals")
	}
	dispatchCounts, err := s.repo.DispatchCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count dispatches")
	}

	summaries := make([]VendorSummary, 0, len(vendors))
	for _, vendor := range vendors {
		summaries = append(summaries, VendorSummary{
			Vendor:        vendor,
			ProposalCount: proposalCounts[vendor.ID],
			DispatchCount: dispatchCounts[vendor.ID],
		})
	}
	return summaries, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*VendorDetail, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	proposals, err := s.repo.ProposalsForVendor(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor proposals")
	}
	dispatches, err := s.repo.DispatchesForVendor(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor dispatches")
	}

	return &VendorDetail{
		Vendor:     *vendor,
		Proposals:  proposals,
		RFPVendors: dispatches,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateVendorInput) (*models.Vendor, error) {
	email := strings.TrimSpace(input.Email)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Vendor with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup vendor email")
	}

	vendor := &models.Vendor{
		Name:          strings.TrimSpace(input.Name),
		Email:         email,
		ContactPerson: input.ContactPerson,
		Phone:         input.Phone,
		Address:       input.Address,
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Vendor with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor")
	}
	return vendor, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateVendorInput) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	if input.Name != nil {
		vendor.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		vendor.Email = strings.TrimSpace(*input.Email)
	}
	if input.ContactPerson != nil {
		vendor.ContactPerson = input.ContactPerson
	}
	if input.Phone != nil {
		vendor.Phone = input.Phone
	}
	if input.Address != nil {
		vendor.Address = input.Address
	}

	if err := s.repo.Update(ctx, vendor); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "Vendor with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor")
	}
	return vendor, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vendor")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Vendor not found")
	}
	return nil
}

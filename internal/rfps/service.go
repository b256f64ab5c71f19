package rfps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/internal/ai"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/types"
)

const minRawInputLength = 10

type rfpRepository interface {
	List(ctx context.Context) ([]models.RFP, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.RFP, error)
	FindDetailed(ctx context.Context, id uuid.UUID) (*models.RFP, error)
	Create(ctx context.Context, rfp *models.RFP) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ProposalCounts(ctx context.Context) (map[uuid.UUID]int64, error)
	DispatchCounts(ctx context.Context) (map[uuid.UUID]int64, error)
}

// Service exposes RFP intake and lifecycle operations.
type Service interface {
	List(ctx context.Context) ([]RFPSummary, error)
	Get(ctx context.Context, id uuid.UUID) (*models.RFP, error)
	Create(ctx context.Context, rawInput string) (*models.RFP, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      rfpRepository
	assistant ai.Assistant
}

// NewService builds an RFP service with the provided dependencies.
func NewService(repo rfpRepository, assistant ai.Assistant) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rfp repository required")
	}
	if assistant == nil {
		return nil, fmt.Errorf("ai assistant required")
	}
	return &service{repo: repo, assistant: assistant}, nil
}

func (s *service) List(ctx context.Context) ([]RFPSummary, error) {
	rfps, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rfps")
	}
	proposalCounts, err := s.repo.ProposalCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count proposals")
	}
	dispatchCounts, err := s.repo.DispatchCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count dispatches")
	}

	summaries := make([]RFPSummary, 0, len(rfps))
	for _, rfp := range rfps {
		summaries = append(summaries, RFPSummary{
			RFP:           rfp,
			ProposalCount: proposalCounts[rfp.ID],
			DispatchCount: dispatchCounts[rfp.ID],
		})
	}
	return summaries, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	rfp, err := s.repo.FindDetailed(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "RFP not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rfp")
	}
	return rfp, nil
}

// Create extracts a structured request from the raw text and persists it as
// a draft with its items in one unit.
func (s *service) Create(ctx context.Context, rawInput string) (*models.RFP, error) {
	rawInput = strings.TrimSpace(rawInput)
	if len(rawInput) < minRawInputLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Please provide more details")
	}

	draft, err := s.assistant.ExtractRFP(ctx, rawInput)
	if err != nil {
		return nil, err
	}

	rfp := &models.RFP{
		Title:          draft.Title,
		RawInput:       rawInput,
		Budget:         draft.Budget,
		Currency:       draft.Currency,
		DeliveryDays:   draft.DeliveryDays,
		PaymentTerms:   draft.PaymentTerms,
		WarrantyMonths: draft.WarrantyMonths,
		Status:         enums.RFPStatusDraft,
	}
	if draft.Description != "" {
		rfp.Description = &draft.Description
	}
	if rfp.Currency == "" {
		rfp.Currency = "USD"
	}

	rfp.Items = make([]models.RFPItem, 0, len(draft.Items))
	for _, item := range draft.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		specs := item.Specifications
		if specs == nil {
			specs = types.SpecMap{}
		}
		modelItem := models.RFPItem{
			Name:           item.Name,
			Quantity:       quantity,
			Specifications: specs,
		}
		if item.Description != "" {
			desc := item.Description
			modelItem.Description = &desc
		}
		rfp.Items = append(rfp.Items, modelItem)
	}

	if err := s.repo.Create(ctx, rfp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rfp")
	}
	return rfp, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete rfp")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "RFP not found")
	}
	return nil
}

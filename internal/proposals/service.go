package proposals

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/internal/ai"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
)

const singleProposalScore = 75

type proposalRepository interface {
	List(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	FindByPair(ctx context.Context, rfpID, vendorID uuid.UUID) (*models.Proposal, error)
	ListForRFP(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error)
	SaveEvaluation(ctx context.Context, rfpID, vendorID uuid.UUID, score int, summary string, strengths, weaknesses []string) error
}

type rfpRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.RFP, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, target enums.RFPStatus) error
}

// Service exposes proposal browsing, comparison, and award operations.
type Service interface {
	// List returns stored proposals, optionally scoped to one request by a
	// non-zero rfpID.
	List(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Proposal, error)

	// Compare evaluates every proposal on a request against each other and
	// persists per-vendor scores. A lone proposal is summarized without an
	// AI call.
	Compare(ctx context.Context, rfpID uuid.UUID) (*ComparisonResult, error)

	// Award marks the request as won by the given vendor's proposal.
	Award(ctx context.Context, rfpID, vendorID uuid.UUID) (*AwardResult, error)
}

type service struct {
	proposals proposalRepository
	rfps      rfpRepository
	assistant ai.Assistant
	log       *logger.Logger
}

// NewService builds a proposal service with the provided dependencies.
func NewService(proposals proposalRepository, rfps rfpRepository, assistant ai.Assistant, log *logger.Logger) (Service, error) {
	if proposals == nil {
		return nil, fmt.Errorf("proposal repository required")
	}
	if rfps == nil {
		return nil, fmt.Errorf("rfp repository required")
	}
	if assistant == nil {
		return nil, fmt.Errorf("ai assistant required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{proposals: proposals, rfps: rfps, assistant: assistant, log: log}, nil
}

func (s *service) List(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error) {
	proposals, err := s.proposals.List(ctx, rfpID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proposals")
	}
	return proposals, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	proposal, err := s.proposals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Proposal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load proposal")
	}
	return proposal, nil
}

func (s *service) Compare(ctx context.Context, rfpID uuid.UUID) (*ComparisonResult, error) {
	rfp, err := s.rfps.FindByID(ctx, rfpID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "RFP not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rfp")
	}

	proposals, err := s.proposals.ListForRFP(ctx, rfpID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list proposals")
	}
	if len(proposals) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "No proposals to compare")
	}

	if len(proposals) == 1 {
		// Nothing to rank a lone quote against; the stored score survives
		// and the request stays in its current status.
		return &ComparisonResult{
			RFP:        rfp,
			Proposals:  proposals,
			Comparison: singleProposalReport(&proposals[0]),
		}, nil
	}

	report, err := s.assistant.CompareProposals(ctx, comparisonInput(rfp, proposals))
	if err != nil {
		return nil, err
	}

	for _, evaluation := range report.Evaluations {
		vendorID, err := uuid.Parse(evaluation.VendorID)
		if err != nil {
			s.log.Warn(s.log.WithField(ctx, "vendor_id", evaluation.VendorID), "compare.evaluation.bad_vendor_id")
			continue
		}
		if err := s.proposals.SaveEvaluation(ctx, rfpID, vendorID, evaluation.Score, evaluation.Summary, evaluation.Strengths, evaluation.Weaknesses); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save evaluation")
		}
	}

	if err := s.rfps.AdvanceStatus(ctx, rfpID, enums.RFPStatusEvaluating); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance rfp status")
	}

	return &ComparisonResult{RFP: rfp, Proposals: proposals, Comparison: report}, nil
}

func (s *service) Award(ctx context.Context, rfpID, vendorID uuid.UUID) (*AwardResult, error) {
	proposal, err := s.proposals.FindByPair(ctx, rfpID, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Proposal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load proposal")
	}

	if err := s.rfps.AdvanceStatus(ctx, rfpID, enums.RFPStatusAwarded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance rfp status")
	}

	vendorName := ""
	if proposal.Vendor != nil {
		vendorName = proposal.Vendor.Name
	}
	ctx = s.log.WithVendorID(s.log.WithRFPID(ctx, rfpID.String()), vendorID.String())
	s.log.Info(ctx, "award.complete")
	return &AwardResult{
		Message:  fmt.Sprintf("RFP awarded to %s", vendorName),
		Proposal: proposal,
	}, nil
}

// singleProposalReport produces the degenerate evaluation for a request that
// only drew one quote.
func singleProposalReport(proposal *models.Proposal) *ai.ComparisonReport {
	vendorName := ""
	if proposal.Vendor != nil {
		vendorName = proposal.Vendor.Name
	}
	score := singleProposalScore
	if proposal.AIScore != nil {
		score = *proposal.AIScore
	}
	return &ai.ComparisonReport{
		Evaluations: []ai.Evaluation{{
			VendorID:   proposal.VendorID.String(),
			VendorName: vendorName,
			Score:      score,
			Strengths:  []string{"Only proposal received"},
			Weaknesses: []string{"No competition for comparison"},
			Summary:    "Single proposal received. Review terms before awarding.",
		}},
		Recommendation: ai.Recommendation{
			RecommendedVendorID:   proposal.VendorID.String(),
			RecommendedVendorName: vendorName,
			Reasoning:             "Only one proposal received.",
		},
	}
}

// comparisonInput projects the request and its proposals into the shape the
// evaluation prompt expects.
func comparisonInput(rfp *models.RFP, proposals []models.Proposal) ai.ComparisonInput {
	items := make([]ai.ContextItem, 0, len(rfp.Items))
	for _, item := range rfp.Items {
		items = append(items, ai.ContextItem{
			Name:           item.Name,
			Description:    item.Description,
			Quantity:       item.Quantity,
			Specifications: item.Specifications,
		})
	}

	snapshots := make([]ai.ProposalSnapshot, 0, len(proposals))
	for _, proposal := range proposals {
		vendorName := ""
		if proposal.Vendor != nil {
			vendorName = proposal.Vendor.Name
		}
		snapshots = append(snapshots, ai.ProposalSnapshot{
			VendorID:     proposal.VendorID.String(),
			VendorName:   vendorName,
			TotalPrice:   proposal.TotalPrice,
			DeliveryDays: proposal.DeliveryDays,
			Warranty:     proposal.Warranty,
			PaymentTerms: proposal.PaymentTerms,
			UnitPrices:   proposal.UnitPrices,
			ParsedData:   []byte(proposal.ParsedData),
		})
	}

	return ai.ComparisonInput{
		RFP: ai.RFPContext{
			Title:          rfp.Title,
			Budget:         rfp.Budget,
			Items:          items,
			DeliveryDays:   rfp.DeliveryDays,
			PaymentTerms:   rfp.PaymentTerms,
			WarrantyMonths: rfp.WarrantyMonths,
		},
		Proposals: snapshots,
	}
}

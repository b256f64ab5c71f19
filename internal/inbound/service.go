package inbound

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/internal/ai"
	"github.com/procureflow/procureflow-backend/internal/events"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
	"github.com/procureflow/procureflow-backend/pkg/types"
)

type vendorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindByEmailAddress(ctx context.Context, address string) (*models.Vendor, error)
}

type rfpRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.RFP, error)
}

type dispatchRepository interface {
	LatestSentForVendor(ctx context.Context, vendorID uuid.UUID) (*models.RFPVendor, error)
}

type proposalRepository interface {
	Upsert(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error)
}

// Outcome is the always-benign result of processing one inbound delivery.
type Outcome struct {
	Message    string     `json:"message"`
	ProposalID *uuid.UUID `json:"proposalId,omitempty"`
}

// SimulateInput carries an explicitly addressed submission, used for manual
// testing without a real inbox.
type SimulateInput struct {
	RFPID        uuid.UUID
	VendorID     uuid.UUID
	EmailContent string
}

// Service correlates inbound vendor email to proposals.
type Service interface {
	// ProcessInbound runs the best-effort matching pipeline. It never
	// fails: every internal error degrades to a benign outcome so the
	// webhook caller does not retry.
	ProcessInbound(ctx context.Context, email InboundEmail) *Outcome

	// Simulate ingests an explicitly addressed submission and does surface
	// errors, since its caller is a synchronous API client.
	Simulate(ctx context.Context, input SimulateInput) (*models.Proposal, error)
}

type service struct {
	vendors    vendorRepository
	rfps       rfpRepository
	dispatches dispatchRepository
	proposals  proposalRepository
	assistant  ai.Assistant
	hub        events.Broadcaster
	guard      *DedupeGuard
	log        *logger.Logger
}

// ServiceParams collects the matcher dependencies. Guard is optional; a nil
// guard disables duplicate-delivery suppression.
type ServiceParams struct {
	Vendors    vendorRepository
	RFPs       rfpRepository
	Dispatches dispatchRepository
	Proposals  proposalRepository
	Assistant  ai.Assistant
	Hub        events.Broadcaster
	Guard      *DedupeGuard
	Logger     *logger.Logger
}

// NewService builds the inbound matcher.
func NewService(params ServiceParams) (Service, error) {
	if params.Vendors == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if params.RFPs == nil {
		return nil, fmt.Errorf("rfp repository required")
	}
	if params.Dispatches == nil {
		return nil, fmt.Errorf("dispatch repository required")
	}
	if params.Proposals == nil {
		return nil, fmt.Errorf("proposal repository required")
	}
	if params.Assistant == nil {
		return nil, fmt.Errorf("ai assistant required")
	}
	if params.Hub == nil {
		return nil, fmt.Errorf("event broadcaster required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		vendors:    params.Vendors,
		rfps:       params.RFPs,
		dispatches: params.Dispatches,
		proposals:  params.Proposals,
		assistant:  params.Assistant,
		hub:        params.Hub,
		guard:      params.Guard,
		log:        params.Logger,
	}, nil
}

func (s *service) ProcessInbound(ctx context.Context, email InboundEmail) *Outcome {
	ctx = s.log.WithField(ctx, "from", email.From)
	s.log.Info(ctx, "inbound.received")

	messageKey := MessageKey(email.From, email.Subject, email.Content())
	if s.guard != nil {
		duplicate, err := s.guard.CheckAndMark(ctx, messageKey)
		if err != nil {
			s.log.Warn(ctx, "inbound.dedupe.unavailable")
		} else if duplicate {
			s.log.Info(ctx, "inbound.duplicate.skipped")
			return &Outcome{Message: "Duplicate delivery"}
		}
	}

	outcome, err := s.process(ctx, email)
	if err != nil {
		s.log.Error(ctx, "inbound.process.failed", err)
		if s.guard != nil {
			if releaseErr := s.guard.Release(ctx, messageKey); releaseErr != nil {
				s.log.Warn(ctx, "inbound.dedupe.release_failed")
			}
		}
		return &Outcome{Message: "Error processing email"}
	}
	return outcome
}

func (s *service) process(ctx context.Context, email InboundEmail) (*Outcome, error) {
	vendor, err := s.vendors.FindByEmailAddress(ctx, email.SenderAddress())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Info(ctx, "inbound.vendor.unknown")
			return &Outcome{Message: "Unknown vendor"}, nil
		}
		return nil, fmt.Errorf("lookup vendor: %w", err)
	}
	ctx = s.log.WithVendorID(ctx, vendor.ID.String())

	rfpID, matched, err := s.resolveRFPID(ctx, email, vendor.ID)
	if err != nil {
		return nil, err
	}
	if !matched {
		s.log.Info(ctx, "inbound.rfp.unmatched")
		return &Outcome{Message: "Could not match to RFP"}, nil
	}
	ctx = s.log.WithRFPID(ctx, rfpID.String())

	rfp, err := s.rfps.FindByID(ctx, rfpID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Info(ctx, "inbound.rfp.missing")
			return &Outcome{Message: "RFP not found"}, nil
		}
		return nil, fmt.Errorf("load rfp: %w", err)
	}

	proposal, err := s.ingest(ctx, rfp, vendor, email.Content(), email.Subject)
	if err != nil {
		return nil, err
	}

	s.hub.Broadcast(events.EventProposalReceived, events.ProposalReceived{
		ProposalID: proposal.ID.String(),
		RFPID:      rfp.ID.String(),
		VendorID:   vendor.ID.String(),
	})
	s.log.Info(s.log.WithField(ctx, "proposal_id", proposal.ID.String()), "inbound.proposal.saved")

	id := proposal.ID
	return &Outcome{Message: "Proposal received", ProposalID: &id}, nil
}

// resolveRFPID finds the request a reply belongs to: an explicit marker in
// the message wins; otherwise the vendor's most recent SENT dispatch is
// assumed.
func (s *service) resolveRFPID(ctx context.Context, email InboundEmail, vendorID uuid.UUID) (uuid.UUID, bool, error) {
	if token := email.ExtractRFPID(); token != "" {
		id, err := uuid.Parse(token)
		if err != nil {
			// An explicit but malformed marker is treated as pointing at a
			// request that does not exist, not as absent.
			return uuid.Nil, true, nil
		}
		return id, true, nil
	}

	record, err := s.dispatches.LatestSentForVendor(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("lookup latest dispatch: %w", err)
	}
	return record.RFPID, true, nil
}

func (s *service) ingest(ctx context.Context, rfp *models.RFP, vendor *models.Vendor, content, subject string) (*models.Proposal, error) {
	terms, err := s.assistant.ExtractProposal(ctx, content, rfpContext(rfp))
	if err != nil {
		return nil, fmt.Errorf("extract proposal: %w", err)
	}

	proposal := &models.Proposal{
		RFPID:        rfp.ID,
		VendorID:     vendor.ID,
		RawEmail:     content,
		ParsedData:   types.JSONRaw(terms.Raw),
		TotalPrice:   terms.TotalPrice,
		UnitPrices:   terms.UnitPrices,
		DeliveryDays: terms.DeliveryDays,
		Warranty:     terms.Warranty,
		PaymentTerms: terms.PaymentTerms,
		ReceivedAt:   time.Now().UTC(),
	}
	if subject != "" {
		proposal.RawSubject = &subject
	}

	stored, err := s.proposals.Upsert(ctx, proposal)
	if err != nil {
		return nil, fmt.Errorf("upsert proposal: %w", err)
	}
	return stored, nil
}

func (s *service) Simulate(ctx context.Context, input SimulateInput) (*models.Proposal, error) {
	rfp, err := s.rfps.FindByID(ctx, input.RFPID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "RFP or Vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rfp")
	}
	vendor, err := s.vendors.FindByID(ctx, input.VendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "RFP or Vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}

	subject := fmt.Sprintf("Re: RFP - %s", rfp.Title)
	proposal, err := s.ingest(ctx, rfp, vendor, input.EmailContent, subject)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "process simulated response")
	}
	return proposal, nil
}

// rfpContext projects the stored request into the extraction prompt shape.
func rfpContext(rfp *models.RFP) ai.RFPContext {
	items := make([]ai.ContextItem, 0, len(rfp.Items))
	for _, item := range rfp.Items {
		items = append(items, ai.ContextItem{
			Name:           item.Name,
			Description:    item.Description,
			Quantity:       item.Quantity,
			Specifications: item.Specifications,
		})
	}
	return ai.RFPContext{
		Title:          rfp.Title,
		Budget:         rfp.Budget,
		Items:          items,
		DeliveryDays:   rfp.DeliveryDays,
		PaymentTerms:   rfp.PaymentTerms,
		WarrantyMonths: rfp.WarrantyMonths,
	}
}

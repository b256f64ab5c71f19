package inbound

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/internal/ai"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type stubVendorRepo struct {
	vendor     *models.Vendor
	byID       *models.Vendor
	lookupErr  error
	byIDErr    error
	lookedUpBy string
}

func (s *stubVendorRepo) FindByID(context.Context, uuid.UUID) (*models.Vendor, error) {
	if s.byIDErr != nil {
		return nil, s.byIDErr
	}
	if s.byID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byID, nil
}

func (s *stubVendorRepo) FindByEmailAddress(_ context.Context, address string) (*models.Vendor, error) {
	s.lookedUpBy = address
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	if s.vendor == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.vendor, nil
}

type stubRFPRepo struct {
	rfp *models.RFP
}

func (s *stubRFPRepo) FindByID(_ context.Context, id uuid.UUID) (*models.RFP, error) {
	if s.rfp == nil || s.rfp.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.rfp, nil
}

type stubDispatchRepo struct {
	record *models.RFPVendor
}

func (s *stubDispatchRepo) LatestSentForVendor(context.Context, uuid.UUID) (*models.RFPVendor, error) {
	if s.record == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.record, nil
}

type stubProposalRepo struct {
	upsertErr error
	stored    *models.Proposal
}

func (s *stubProposalRepo) Upsert(_ context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	proposal.ID = uuid.New()
	s.stored = proposal
	return proposal, nil
}

type stubAssistant struct {
	terms *ai.ProposalTerms
	err   error

	gotContext ai.RFPContext
}

func (s *stubAssistant) ExtractRFP(context.Context, string) (*ai.RFPDraft, error) {
	return nil, errors.New("not used")
}

func (s *stubAssistant) ExtractProposal(_ context.Context, _ string, rfp ai.RFPContext) (*ai.ProposalTerms, error) {
	s.gotContext = rfp
	if s.err != nil {
		return nil, s.err
	}
	return s.terms, nil
}

func (s *stubAssistant) CompareProposals(context.Context, ai.ComparisonInput) (*ai.ComparisonReport, error) {
	return nil, errors.New("not used")
}

type stubHub struct {
	events []string
	data   []any
}

func (s *stubHub) Broadcast(event string, data any) {
	s.events = append(s.events, event)
	s.data = append(s.data, data)
}

func newTestService(t *testing.T, vendors *stubVendorRepo, rfps *stubRFPRepo, dispatches *stubDispatchRepo, proposals *stubProposalRepo, assistant *stubAssistant, hub *stubHub) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Vendors:    vendors,
		RFPs:       rfps,
		Dispatches: dispatches,
		Proposals:  proposals,
		Assistant:  assistant,
		Hub:        hub,
		Logger:     testLogger(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func sampleTerms() *ai.ProposalTerms {
	price := decimal.NewFromInt(27250)
	days := 25
	return &ai.ProposalTerms{
		TotalPrice:   &price,
		DeliveryDays: &days,
		IsComplete:   true,
		Raw:          []byte(`{"totalPrice":27250}`),
	}
}

func TestProcessInboundUnknownVendor(t *testing.T) {
	vendors := &stubVendorRepo{}
	svc := newTestService(t, vendors, &stubRFPRepo{}, &stubDispatchRepo{}, &stubProposalRepo{}, &stubAssistant{}, &stubHub{})

	outcome := svc.ProcessInbound(context.Background(), InboundEmail{From: "Stranger <nobody@else.test>"})
	if outcome.Message != "Unknown vendor" {
		t.Fatalf("expected unknown vendor outcome, got %q", outcome.Message)
	}
	if outcome.ProposalID != nil {
		t.Fatal("no proposal should be created")
	}
}

func TestProcessInboundExplicitMarkerWins(t *testing.T) {
	rfpID := uuid.New()
	vendor := &models.Vendor{ID: uuid.New(), Name: "Acme", Email: "sales@acme.test"}
	rfp := &models.RFP{ID: rfpID, Title: "Laptops", Status: enums.RFPStatusSent}

	proposals := &stubProposalRepo{}
	hub := &stubHub{}
	assistant := &stubAssistant{terms: sampleTerms()}
	svc := newTestService(t, &stubVendorRepo{vendor: vendor}, &stubRFPRepo{rfp: rfp}, &stubDispatchRepo{}, proposals, assistant, hub)

	outcome := svc.ProcessInbound(context.Background(), InboundEmail{
		From:    "Acme Sales <sales@acme.test>",
		Subject: "Re: Request for Proposal",
		Text:    "Our quote is $27,250.\n\nRFP ID: " + rfpID.String(),
	})

	if outcome.Message != "Proposal received" {
		t.Fatalf("expected proposal received, got %q", outcome.Message)
	}
	if outcome.ProposalID == nil {
		t.Fatal("expected proposal id in outcome")
	}
	if proposals.stored == nil || proposals.stored.RFPID != rfpID {
		t.Fatalf("proposal stored against wrong rfp: %+v", proposals.stored)
	}
	if assistant.gotContext.Title != "Laptops" {
		t.Fatalf("expected rfp context passed to assistant, got %+v", assistant.gotContext)
	}
	if len(hub.events) != 1 || hub.events[0] != "proposal-received" {
		t.Fatalf("expected proposal-received broadcast, got %v", hub.events)
	}
}

func TestProcessInboundFallsBackToLatestDispatch(t *testing.T) {
	rfpID := uuid.New()
	vendor := &models.Vendor{ID: uuid.New(), Name: "Acme", Email: "sales@acme.test"}
	sentAt := time.Now().Add(-time.Hour)

	svc := newTestService(t,
		&stubVendorRepo{vendor: vendor},
		&stubRFPRepo{rfp: &models.RFP{ID: rfpID, Title: "Laptops"}},
		&stubDispatchRepo{record: &models.RFPVendor{RFPID: rfpID, VendorID: vendor.ID, SentAt: &sentAt, Status: enums.DispatchStatusSent}},
		&stubProposalRepo{},
		&stubAssistant{terms: sampleTerms()},
		&stubHub{},
	)

	outcome := svc.ProcessInbound(context.Background(), InboundEmail{
		From: "sales@acme.test",
		Text: "no marker in this reply",
	})
	if outcome.Message != "Proposal received" {
		t.Fatalf("expected fallback match, got %q", outcome.Message)
	}
}

func TestProcessInboundNoMatch(t *testing.T) {
	vendor := &models.Vendor{ID: uuid.New(), Name: "Acme", Email: "sales@acme.test"}
	svc := newTestService(t, &stubVendorRepo{vendor: vendor}, &stubRFPRepo{}, &stubDispatchRepo{}, &stubProposalRepo{}, &stubAssistant{}, &stubHub{})

	outcome := svc.ProcessInbound(context.Background(), InboundEmail{From: "sales@acme.test", Text: "hello"})
	if outcome.Message != "Could not match to RFP" {
		t.Fatalf("expected unmatched outcome, got %q", outcome.Message)
	}
}

func TestProcessInboundNeverFails(t *testing.T) {
	vendor := &models.Vendor{ID: uuid.New(), Name: "Acme", Email: "sales@acme.test"}
	rfpID := uuid.New()
	svc := newTestService(t,
		&stubVendorRepo{vendor: vendor},
		&stubRFPRepo{rfp: &models.RFP{ID: rfpID, Title: "Laptops"}},
		&stubDispatchRepo{},
		&stubProposalRepo{},
		&stubAssistant{err: errors.New("model unavailable")},
		&stubHub{},
	)

	outcome := svc.ProcessInbound(context.Background(), InboundEmail{
		From: "sales@acme.test",
		Text: "RFP ID: " + rfpID.String(),
	})
	if outcome.Message != "Error processing email" {
		t.Fatalf("expected benign error outcome, got %q", outcome.Message)
	}
}

func TestProcessInboundSuppressesDuplicateDelivery(t *testing.T) {
	rfpID := uuid.New()
	vendor := &models.Vendor{ID: uuid.New(), Name: "Acme", Email: "sales@acme.test"}
	guard, err := NewDedupeGuard(&stubDedupeStore{}, time.Hour, "inbound-email")
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}

	svc, err := NewService(ServiceParams{
		Vendors:    &stubVendorRepo{vendor: vendor},
		RFPs:       &stubRFPRepo{rfp: &models.RFP{ID: rfpID, Title: "Laptops"}},
		Dispatches: &stubDispatchRepo{},
		Proposals:  &stubProposalRepo{},
		Assistant:  &stubAssistant{terms: sampleTerms()},
		Hub:        &stubHub{},
		Guard:      guard,
		Logger:     testLogger(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	email := InboundEmail{From: "sales@acme.test", Text: "RFP ID: " + rfpID.String()}
	first := svc.ProcessInbound(context.Background(), email)
	if first.Message != "Proposal received" {
		t.Fatalf("first delivery: %q", first.Message)
	}
	second := svc.ProcessInbound(context.Background(), email)
	if second.Message != "Duplicate delivery" {
		t.Fatalf("second delivery: %q", second.Message)
	}
}

func TestSimulateSurfacesNotFound(t *testing.T) {
	svc := newTestService(t, &stubVendorRepo{}, &stubRFPRepo{}, &stubDispatchRepo{}, &stubProposalRepo{}, &stubAssistant{}, &stubHub{})

	_, err := svc.Simulate(context.Background(), SimulateInput{
		RFPID:        uuid.New(),
		VendorID:     uuid.New(),
		EmailContent: "quote",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSimulateStampsReplySubject(t *testing.T) {
	rfpID := uuid.New()
	vendor := &models.Vendor{ID: uuid.New(), Name: "Acme", Email: "sales@acme.test"}
	proposals := &stubProposalRepo{}

	svc := newTestService(t,
		&stubVendorRepo{byID: vendor},
		&stubRFPRepo{rfp: &models.RFP{ID: rfpID, Title: "Laptops"}},
		&stubDispatchRepo{},
		proposals,
		&stubAssistant{terms: sampleTerms()},
		&stubHub{},
	)

	proposal, err := svc.Simulate(context.Background(), SimulateInput{
		RFPID:        rfpID,
		VendorID:     vendor.ID,
		EmailContent: "Total Price: $27,250",
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if proposal.RawSubject == nil || *proposal.RawSubject != "Re: RFP - Laptops" {
		t.Fatalf("unexpected subject: %v", proposal.RawSubject)
	}
	if proposal.TotalPrice == nil || proposal.TotalPrice.String() != "27250" {
		t.Fatalf("unexpected total price: %v", proposal.TotalPrice)
	}
}

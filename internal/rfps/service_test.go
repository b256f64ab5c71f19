package rfps

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/internal/ai"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/types"
)

type stubRFPRepo struct {
	rfps      []models.RFP
	createErr error
	deleted   bool
	deleteErr error

	created *models.RFP
}

func (s *stubRFPRepo) List(context.Context) ([]models.RFP, error) {
	return s.rfps, nil
}

func (s *stubRFPRepo) FindByID(_ context.Context, id uuid.UUID) (*models.RFP, error) {
	for i := range s.rfps {
		if s.rfps[i].ID == id {
			return &s.rfps[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRFPRepo) FindDetailed(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	return s.FindByID(ctx, id)
}

func (s *stubRFPRepo) Create(_ context.Context, rfp *models.RFP) error {
	if s.createErr != nil {
		return s.createErr
	}
	rfp.ID = uuid.New()
	s.created = rfp
	return nil
}

func (s *stubRFPRepo) Delete(context.Context, uuid.UUID) (bool, error) {
	return s.deleted, s.deleteErr
}

func (s *stubRFPRepo) ProposalCounts(context.Context) (map[uuid.UUID]int64, error) {
	return nil, nil
}

func (s *stubRFPRepo) DispatchCounts(context.Context) (map[uuid.UUID]int64, error) {
	return nil, nil
}

type stubAssistant struct {
	draft *ai.RFPDraft
	err   error

	extractCalls int
}

func (s *stubAssistant) ExtractRFP(context.Context, string) (*ai.RFPDraft, error) {
	s.extractCalls++
	return s.draft, s.err
}

func (s *stubAssistant) ExtractProposal(context.Context, string, ai.RFPContext) (*ai.ProposalTerms, error) {
	return nil, errors.New("not implemented")
}

func (s *stubAssistant) CompareProposals(context.Context, ai.ComparisonInput) (*ai.ComparisonReport, error) {
	return nil, errors.New("not implemented")
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, &stubAssistant{}); err == nil {
		t.Fatal("expected error creating service without repo")
	}
	if _, err := NewService(&stubRFPRepo{}, nil); err == nil {
		t.Fatal("expected error creating service without assistant")
	}
}

func TestServiceCreateRejectsShortInput(t *testing.T) {
	assistant := &stubAssistant{}
	svc, err := NewService(&stubRFPRepo{}, assistant)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.Create(context.Background(), "too short")
	typed := pkgerrors.As(gotErr)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", gotErr)
	}
	if assistant.extractCalls != 0 {
		t.Fatal("assistant should not be called for invalid input")
	}
}

func TestServiceCreatePersistsDraftWithItems(t *testing.T) {
	budget := decimal.NewFromInt(50000)
	deliveryDays := 30
	assistant := &stubAssistant{draft: &ai.RFPDraft{
		Title:        "Office IT Equipment Procurement",
		Description:  "Laptops for the new office",
		Budget:       &budget,
		Currency:     "",
		DeliveryDays: &deliveryDays,
		Items: []ai.ItemDraft{
			{Name: "Business Laptop", Description: "i7", Quantity: 20, Specifications: types.SpecMap{"RAM": "16GB"}},
			{Name: "Docking Station", Quantity: 0},
		},
	}}
	repo := &stubRFPRepo{}
	svc, err := NewService(repo, assistant)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	rfp, err := svc.Create(context.Background(), "Need 20 laptops with 16GB RAM, budget $50,000, 30 day delivery")
	if err != nil {
		t.Fatalf("create rfp: %v", err)
	}
	if rfp.Status != enums.RFPStatusDraft {
		t.Fatalf("expected DRAFT status, got %s", rfp.Status)
	}
	if rfp.Currency != "USD" {
		t.Fatalf("expected USD currency default, got %q", rfp.Currency)
	}
	if len(rfp.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(rfp.Items))
	}
	if rfp.Items[1].Quantity != 1 {
		t.Fatalf("expected quantity default 1, got %d", rfp.Items[1].Quantity)
	}
	if rfp.Items[1].Specifications == nil {
		t.Fatal("expected empty spec map, got nil")
	}
	if repo.created == nil {
		t.Fatal("expected rfp persisted")
	}
	if repo.created.RawInput == "" {
		t.Fatal("expected raw input retained")
	}
}

func TestServiceCreatePropagatesAssistantFailure(t *testing.T) {
	assistant := &stubAssistant{err: pkgerrors.New(pkgerrors.CodeDependency, "model unavailable")}
	svc, err := NewService(&stubRFPRepo{}, assistant)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.Create(context.Background(), "Need 20 laptops with 16GB RAM")
	typed := pkgerrors.As(gotErr)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
}

func TestServiceGetNotFound(t *testing.T) {
	svc, err := NewService(&stubRFPRepo{}, &stubAssistant{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, gotErr := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(gotErr)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", gotErr)
	}
}

func TestServiceDeleteNotFound(t *testing.T) {
	svc, err := NewService(&stubRFPRepo{deleted: false}, &stubAssistant{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	gotErr := svc.Delete(context.Background(), uuid.New())
	typed := pkgerrors.As(gotErr)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", gotErr)
	}
}

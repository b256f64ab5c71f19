package ai

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/types"
)

// Assistant extracts structured procurement data from free-form text and
// scores competing proposals.
type Assistant interface {
	ExtractRFP(ctx context.Context, rawInput string) (*RFPDraft, error)
	ExtractProposal(ctx context.Context, emailContent string, rfp RFPContext) (*ProposalTerms, error)
	CompareProposals(ctx context.Context, input ComparisonInput) (*ComparisonReport, error)
}

// RFPDraft is the structured request extracted from a natural language
// procurement description.
type RFPDraft struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Budget         *decimal.Decimal `json:"budget"`
	Currency       string           `json:"currency"`
	DeliveryDays   *int             `json:"deliveryDays"`
	PaymentTerms   *string          `json:"paymentTerms"`
	WarrantyMonths *int             `json:"warrantyMonths"`
	Items          []ItemDraft      `json:"items"`
}

// ItemDraft is one line item within an extracted request.
type ItemDraft struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Quantity       int           `json:"quantity"`
	Specifications types.SpecMap `json:"specifications"`
}

// RFPContext summarizes a stored request for proposal so the extractor can
// ground vendor quotes against what was asked for.
type RFPContext struct {
	Title          string           `json:"title"`
	Budget         *decimal.Decimal `json:"budget"`
	Items          []ContextItem    `json:"items"`
	DeliveryDays   *int             `json:"deliveryDays"`
	PaymentTerms   *string          `json:"paymentTerms"`
	WarrantyMonths *int             `json:"warrantyMonths"`
}

// ContextItem mirrors a persisted line item inside prompt context.
type ContextItem struct {
	Name           string        `json:"name"`
	Description    *string       `json:"description"`
	Quantity       int           `json:"quantity"`
	Specifications types.SpecMap `json:"specifications"`
}

// ProposalTerms is the structured quote extracted from a vendor reply.
type ProposalTerms struct {
	TotalPrice      *decimal.Decimal     `json:"totalPrice"`
	UnitPrices      types.UnitPriceLines `json:"unitPrices"`
	DeliveryDays    *int                 `json:"deliveryDays"`
	Warranty        *string              `json:"warranty"`
	PaymentTerms    *string              `json:"paymentTerms"`
	AdditionalNotes *string              `json:"additionalNotes"`
	IsComplete      bool                 `json:"isComplete"`

	// Raw keeps the verbatim extracted JSON for audit storage.
	Raw json.RawMessage `json:"-"`
}

// ComparisonInput carries the request and every received quote into the
// scoring prompt.
type ComparisonInput struct {
	RFP       RFPContext         `json:"rfp"`
	Proposals []ProposalSnapshot `json:"proposals"`
}

// ProposalSnapshot is the comparison view of one stored proposal.
type ProposalSnapshot struct {
	VendorID     string               `json:"vendorId"`
	VendorName   string               `json:"vendorName"`
	TotalPrice   *decimal.Decimal     `json:"totalPrice"`
	DeliveryDays *int                 `json:"deliveryDays"`
	Warranty     *string              `json:"warranty"`
	PaymentTerms *string              `json:"paymentTerms"`
	UnitPrices   types.UnitPriceLines `json:"unitPrices"`
	ParsedData   json.RawMessage      `json:"parsedData,omitempty"`
}

// ComparisonReport holds per-vendor evaluations plus an overall
// recommendation.
type ComparisonReport struct {
	Evaluations    []Evaluation   `json:"evaluations"`
	Recommendation Recommendation `json:"recommendation"`
}

// Evaluation scores a single vendor's quote.
type Evaluation struct {
	VendorID   string   `json:"vendorId"`
	VendorName string   `json:"vendorName"`
	Score      int      `json:"score"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Summary    string   `json:"summary"`
}

// Recommendation names the winning vendor with supporting reasoning.
type Recommendation struct {
	RecommendedVendorID   string            `json:"recommendedVendorId"`
	RecommendedVendorName string            `json:"recommendedVendorName"`
	Reasoning             string            `json:"reasoning"`
	ComparisonMatrix      *ComparisonMatrix `json:"comparisonMatrix"`
}

// ComparisonMatrix is a tabular factor-by-vendor breakdown.
type ComparisonMatrix struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

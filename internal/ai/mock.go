package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/types"
)

var (
	budgetPattern  = regexp.MustCompile(`\$?([\d,]+)`)
	laptopQtyRe    = regexp.MustCompile(`(?i)(\d+)\s*laptops?`)
	monitorQtyRe   = regexp.MustCompile(`(?i)(\d+)\s*monitors?`)
	defaultBudget  = decimal.NewFromInt(50000)
	fallbackQuote  = decimal.NewFromInt(42500)
	budgetDiscount = decimal.NewFromFloat(0.85)
)

// MockAssistant produces deterministic extractions without calling a model.
// Useful for local development and for running with an exhausted API quota.
type MockAssistant struct{}

// NewMockAssistant returns the deterministic assistant.
func NewMockAssistant() *MockAssistant {
	return &MockAssistant{}
}

func (m *MockAssistant) ExtractRFP(_ context.Context, rawInput string) (*RFPDraft, error) {
	lower := strings.ToLower(rawInput)

	budget := defaultBudget
	if match := budgetPattern.FindStringSubmatch(rawInput); match != nil {
		if parsed, err := strconv.ParseInt(strings.ReplaceAll(match[1], ",", ""), 10, 64); err == nil {
			budget = decimal.NewFromInt(parsed)
		}
	}

	var items []ItemDraft
	if strings.Contains(lower, "laptop") {
		items = append(items, ItemDraft{
			Name:        "Business Laptop",
			Description: "High-performance laptop for office use",
			Quantity:    quantityOrDefault(laptopQtyRe, rawInput, 20),
			Specifications: types.SpecMap{
				"RAM":       "16GB",
				"Storage":   "512GB SSD",
				"Processor": "Intel Core i7",
			},
		})
	}
	if strings.Contains(lower, "monitor") {
		items = append(items, ItemDraft{
			Name:        "27-inch Monitor",
			Description: "Professional display monitor",
			Quantity:    quantityOrDefault(monitorQtyRe, rawInput, 15),
			Specifications: types.SpecMap{
				"Size":       "27 inch",
				"Resolution": "4K UHD",
				"Panel":      "IPS",
			},
		})
	}
	if len(items) == 0 {
		items = append(items, ItemDraft{
			Name:           "Office Equipment",
			Description:    "General office equipment as specified",
			Quantity:       10,
			Specifications: types.SpecMap{"type": "Standard"},
		})
	}

	deliveryDays := 30
	paymentTerms := "Net 30"
	warrantyMonths := 12
	return &RFPDraft{
		Title:          "Office IT Equipment Procurement",
		Description:    "Procurement of office equipment for new office setup.",
		Budget:         &budget,
		Currency:       "USD",
		DeliveryDays:   &deliveryDays,
		PaymentTerms:   &paymentTerms,
		WarrantyMonths: &warrantyMonths,
		Items:          items,
	}, nil
}

func (m *MockAssistant) ExtractProposal(_ context.Context, _ string, rfp RFPContext) (*ProposalTerms, error) {
	basePrice := fallbackQuote
	if rfp.Budget != nil {
		basePrice = rfp.Budget.Mul(budgetDiscount)
	}

	unitPrices := make(types.UnitPriceLines, 0, len(rfp.Items))
	for _, item := range rfp.Items {
		unitPrice := decimal.NewFromInt(350)
		if strings.Contains(strings.ToLower(item.Name), "laptop") {
			unitPrice = decimal.NewFromInt(1200)
		}
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		unitPrices = append(unitPrices, types.UnitPriceLine{
			ItemName:   item.Name,
			UnitPrice:  &unitPrice,
			Quantity:   item.Quantity,
			TotalPrice: &lineTotal,
		})
	}

	deliveryDays := 25
	warranty := "12 months comprehensive warranty"
	paymentTerms := "Net 30"
	notes := "Free shipping included."
	terms := &ProposalTerms{
		TotalPrice:      &basePrice,
		UnitPrices:      unitPrices,
		DeliveryDays:    &deliveryDays,
		Warranty:        &warranty,
		PaymentTerms:    &paymentTerms,
		AdditionalNotes: &notes,
		IsComplete:      true,
	}

	raw, err := json.Marshal(terms)
	if err != nil {
		return nil, err
	}
	terms.Raw = raw
	return terms, nil
}

func (m *MockAssistant) CompareProposals(_ context.Context, input ComparisonInput) (*ComparisonReport, error) {
	if len(input.Proposals) == 0 {
		return nil, errors.New("no proposals to compare")
	}

	evaluations := make([]Evaluation, 0, len(input.Proposals))
	for i, proposal := range input.Proposals {
		name := proposal.VendorName
		if name == "" {
			name = fmt.Sprintf("Vendor %d", i+1)
		}
		weakness := "Limited support"
		if i == 0 {
			weakness = "Slightly higher price"
		}
		evaluations = append(evaluations, Evaluation{
			VendorID:   proposal.VendorID,
			VendorName: name,
			Score:      85 - i*5,
			Strengths:  []string{"Competitive pricing", "Good warranty", "Fast delivery"},
			Weaknesses: []string{weakness},
			Summary:    fmt.Sprintf("%s offers a solid proposal at $%s.", name, priceOrZero(proposal.TotalPrice)),
		})
	}

	headers := []string{"Factor"}
	priceRow := []string{"Price"}
	deliveryRow := []string{"Delivery"}
	scoreRow := []string{"Score"}
	for i, proposal := range input.Proposals {
		headers = append(headers, evaluations[i].VendorName)
		priceRow = append(priceRow, "$"+priceOrZero(proposal.TotalPrice))
		deliveryRow = append(deliveryRow, fmt.Sprintf("%d days", daysOrDefault(proposal.DeliveryDays, 30)))
		scoreRow = append(scoreRow, fmt.Sprintf("%d/100", evaluations[i].Score))
	}

	return &ComparisonReport{
		Evaluations: evaluations,
		Recommendation: Recommendation{
			RecommendedVendorID:   evaluations[0].VendorID,
			RecommendedVendorName: evaluations[0].VendorName,
			Reasoning:             fmt.Sprintf("%s offers the best combination of price, delivery, and warranty.", evaluations[0].VendorName),
			ComparisonMatrix: &ComparisonMatrix{
				Headers: headers,
				Rows:    [][]string{priceRow, deliveryRow, scoreRow},
			},
		},
	}, nil
}

func quantityOrDefault(pattern *regexp.Regexp, input string, fallback int) int {
	if match := pattern.FindStringSubmatch(input); match != nil {
		if qty, err := strconv.Atoi(match[1]); err == nil {
			return qty
		}
	}
	return fallback
}

func priceOrZero(price *decimal.Decimal) string {
	if price == nil {
		return "0"
	}
	return price.String()
}

func daysOrDefault(days *int, fallback int) int {
	if days == nil {
		return fallback
	}
	return *days
}

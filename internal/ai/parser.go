package ai

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
)

// ExtractJSON strips markdown code fences that models wrap around JSON
// output despite instructions not to.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func parseRFPDraft(raw string) (*RFPDraft, error) {
	cleaned := ExtractJSON(raw)

	var draft RFPDraft
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding extracted request")
	}
	if draft.Currency == "" {
		draft.Currency = "USD"
	}
	for i := range draft.Items {
		if draft.Items[i].Quantity <= 0 {
			draft.Items[i].Quantity = 1
		}
	}
	return &draft, nil
}

func parseProposalTerms(raw string) (*ProposalTerms, error) {
	cleaned := ExtractJSON(raw)

	var terms ProposalTerms
	if err := json.Unmarshal([]byte(cleaned), &terms); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding extracted proposal")
	}
	terms.Raw = json.RawMessage(cleaned)
	return &terms, nil
}

func parseComparisonReport(raw string) (*ComparisonReport, error) {
	cleaned := ExtractJSON(raw)

	var report ComparisonReport
	if err := json.Unmarshal([]byte(cleaned), &report); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding comparison report")
	}
	if len(report.Evaluations) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "comparison report has no evaluations")
	}
	return &report, nil
}

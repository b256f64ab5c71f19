package proposals

import (
	"github.com/procureflow/procureflow-backend/internal/ai"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
)

// ComparisonResult bundles the request, its proposals, and the evaluation
// run over them.
type ComparisonResult struct {
	RFP        *models.RFP          `json:"rfp"`
	Proposals  []models.Proposal    `json:"proposals"`
	Comparison *ai.ComparisonReport `json:"comparison"`
}

// AwardResult confirms the winning vendor for a request.
type AwardResult struct {
	Message  string           `json:"message"`
	Proposal *models.Proposal `json:"proposal"`
}

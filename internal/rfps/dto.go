package rfps

import "github.com/procureflow/procureflow-backend/pkg/db/models"

// RFPSummary is a list row with activity counts.
type RFPSummary struct {
	models.RFP
	ProposalCount int64 `json:"proposalCount"`
	DispatchCount int64 `json:"rfpVendorCount"`
}

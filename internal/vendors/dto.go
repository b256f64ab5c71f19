package vendors

import "github.com/procureflow/procureflow-backend/pkg/db/models"

// VendorSummary is a directory row with activity counts.
type VendorSummary struct {
	models.Vendor
	ProposalCount int64 `json:"proposalCount"`
	DispatchCount int64 `json:"rfpVendorCount"`
}

// VendorDetail is a vendor with its full procurement history.
type VendorDetail struct {
	models.Vendor
	Proposals  []models.Proposal  `json:"proposals"`
	RFPVendors []models.RFPVendor `json:"rfpVendors"`
}

package dispatch

import "github.com/google/uuid"

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// SendOutcome describes one vendor's dispatch attempt.
type SendOutcome struct {
	VendorID   uuid.UUID `json:"vendorId"`
	VendorName string    `json:"vendorName"`
	Status     string    `json:"status"`
	PreviewURL string    `json:"previewUrl,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// PreviewLink points at a capture-inbox preview for one delivery.
type PreviewLink struct {
	Vendor     string `json:"vendor"`
	PreviewURL string `json:"previewUrl"`
}

// SendReport aggregates the whole batch for the caller.
type SendReport struct {
	Message          string        `json:"message"`
	Results          []SendOutcome `json:"results"`
	EmailMode        string        `json:"emailMode"`
	EmailPreviewURLs []PreviewLink `json:"emailPreviewUrls,omitempty"`
	Info             string        `json:"info"`
}

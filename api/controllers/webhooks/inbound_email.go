package webhooks

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/procureflow/procureflow-backend/api/responses"
	"github.com/procureflow/procureflow-backend/api/validators"
	"github.com/procureflow/procureflow-backend/internal/inbound"
	"github.com/procureflow/procureflow-backend/pkg/logger"
)

const maxInboundFormBytes = 10 << 20

type simulateResponseRequest struct {
	RFPID        uuid.UUID `json:"rfpId" validate:"required"`
	VendorID     uuid.UUID `json:"vendorId" validate:"required"`
	EmailContent string    `json:"emailContent" validate:"required"`
}

// InboundEmail accepts a provider's inbound-parse delivery. The provider
// retries on non-2xx, so every outcome including internal failure answers 200.
func InboundEmail(svc inbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxInboundFormBytes); err != nil {
			// Fall back to urlencoded bodies; some providers post either.
			if err := r.ParseForm(); err != nil {
				if logg != nil {
					logg.Error(r.Context(), "webhook.inbound.bad_form", err)
				}
				responses.WriteSuccess(w, map[string]string{"message": "Error processing email"})
				return
			}
		}

		email := inbound.InboundEmail{
			From:    r.FormValue("from"),
			To:      r.FormValue("to"),
			Subject: r.FormValue("subject"),
			Text:    r.FormValue("text"),
			HTML:    r.FormValue("html"),
		}

		outcome := svc.ProcessInbound(r.Context(), email)
		responses.WriteSuccess(w, outcome)
	}
}

// SimulateResponse ingests a vendor reply addressed by explicit ids. Unlike
// the inbound hook its errors surface to the caller.
func SimulateResponse(svc inbound.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req simulateResponseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		proposal, err := svc.Simulate(r.Context(), inbound.SimulateInput{
			RFPID:        req.RFPID,
			VendorID:     req.VendorID,
			EmailContent: req.EmailContent,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message":  "Simulated response processed",
			"proposal": proposal,
		})
	}
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/procureflow/procureflow-backend/api/controllers"
	webhookcontrollers "github.com/procureflow/procureflow-backend/api/controllers/webhooks"
	"github.com/procureflow/procureflow-backend/api/middleware"
	"github.com/procureflow/procureflow-backend/internal/dispatch"
	"github.com/procureflow/procureflow-backend/internal/events"
	"github.com/procureflow/procureflow-backend/internal/inbound"
	"github.com/procureflow/procureflow-backend/internal/proposals"
	"github.com/procureflow/procureflow-backend/internal/rfps"
	"github.com/procureflow/procureflow-backend/internal/vendors"
	"github.com/procureflow/procureflow-backend/pkg/config"
	"github.com/procureflow/procureflow-backend/pkg/logger"
)

// Services bundles everything the router mounts.
type Services struct {
	Vendors   vendors.Service
	RFPs      rfps.Service
	Dispatch  dispatch.Service
	Proposals proposals.Service
	Inbound   inbound.Service
	Hub       *events.Hub

	DB    controllers.Pinger
	Redis controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.FrontendURL),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, svcs.DB, svcs.Redis))
	})

	r.Route("/api/vendors", func(r chi.Router) {
		r.Get("/", controllers.ListVendors(svcs.Vendors, logg))
		r.Post("/", controllers.CreateVendor(svcs.Vendors, logg))
		r.Get("/{id}", controllers.GetVendor(svcs.Vendors, logg))
		r.Put("/{id}", controllers.UpdateVendor(svcs.Vendors, logg))
		r.Delete("/{id}", controllers.DeleteVendor(svcs.Vendors, logg))
	})

	r.Route("/api/rfps", func(r chi.Router) {
		r.Get("/", controllers.ListRFPs(svcs.RFPs, logg))
		r.Post("/", controllers.CreateRFP(svcs.RFPs, logg))
		r.Get("/{id}", controllers.GetRFP(svcs.RFPs, logg))
		r.Post("/{id}/send", controllers.SendRFP(svcs.Dispatch, logg))
		r.Delete("/{id}", controllers.DeleteRFP(svcs.RFPs, logg))
	})

	r.Route("/api/proposals", func(r chi.Router) {
		r.Get("/", controllers.ListProposals(svcs.Proposals, logg))
		r.Get("/compare/{rfpId}", controllers.CompareProposals(svcs.Proposals, logg))
		r.Post("/{rfpId}/award/{vendorId}", controllers.AwardProposal(svcs.Proposals, logg))
		r.Get("/{id}", controllers.GetProposal(svcs.Proposals, logg))
	})

	r.Route("/api/webhooks", func(r chi.Router) {
		r.Post("/inbound-email", webhookcontrollers.InboundEmail(svcs.Inbound, logg))
		r.Post("/simulate-response", webhookcontrollers.SimulateResponse(svcs.Inbound, logg))
	})

	r.Get("/api/events", controllers.Events(svcs.Hub))

	return r
}

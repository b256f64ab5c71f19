package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/procureflow/procureflow-backend/internal/mailer"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	"github.com/procureflow/procureflow-backend/pkg/enums"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
)

type rfpRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.RFP, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, target enums.RFPStatus) error
}

type vendorRepository interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Vendor, error)
}

type dispatchRepository interface {
	MarkSent(ctx context.Context, rfpID, vendorID uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, rfpID, vendorID uuid.UUID) error
}

// Service sends RFPs to vendors and records per-vendor outcomes.
type Service interface {
	Send(ctx context.Context, rfpID uuid.UUID, vendorIDs []uuid.UUID) (*SendReport, error)
}

type service struct {
	rfps    rfpRepository
	vendors vendorRepository
	records dispatchRepository
	sender  mailer.Sender
	log     *logger.Logger
}

// NewService builds a dispatch service with the provided dependencies.
func NewService(rfps rfpRepository, vendors vendorRepository, records dispatchRepository, sender mailer.Sender, log *logger.Logger) (Service, error) {
	if rfps == nil {
		return nil, fmt.Errorf("rfp repository required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if records == nil {
		return nil, fmt.Errorf("dispatch repository required")
	}
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{rfps: rfps, vendors: vendors, records: records, sender: sender, log: log}, nil
}

// Send dispatches the RFP to every resolved vendor. Unknown vendor ids are
// silently skipped; per-vendor failures are recorded and reported without
// aborting the batch. The RFP status advances to SENT regardless of
// individual outcomes.
func (s *service) Send(ctx context.Context, rfpID uuid.UUID, vendorIDs []uuid.UUID) (*SendReport, error) {
	rfp, err := s.rfps.FindByID(ctx, rfpID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "RFP not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rfp")
	}

	vendors, err := s.vendors.FindByIDs(ctx, vendorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve vendors")
	}

	ctx = s.log.WithRFPID(ctx, rfpID.String())

	report := &SendReport{
		Message:   "RFP sent to vendors",
		Results:   make([]SendOutcome, 0, len(vendors)),
		EmailMode: s.sender.Mode(),
	}

	var sendErrs error
	for _, vendor := range vendors {
		outcome := s.sendToVendor(ctx, vendor, *rfp)
		if outcome.Error != "" {
			sendErrs = multierr.Append(sendErrs, fmt.Errorf("vendor %s: %s", vendor.ID, outcome.Error))
		}
		if outcome.PreviewURL != "" {
			report.EmailPreviewURLs = append(report.EmailPreviewURLs, PreviewLink{
				Vendor:     vendor.Name,
				PreviewURL: outcome.PreviewURL,
			})
		}
		report.Results = append(report.Results, outcome)
	}
	if sendErrs != nil {
		s.log.Warn(s.log.WithField(ctx, "failures", len(multierr.Errors(sendErrs))), "dispatch.partial_failure")
	}

	if err := s.rfps.AdvanceStatus(ctx, rfpID, enums.RFPStatusSent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance rfp status")
	}

	if report.EmailMode == mailer.ModeEthereal {
		report.Info = "View sent emails at https://ethereal.email/login"
	} else {
		report.Info = "Emails delivered to real inboxes!"
	}
	return report, nil
}

func (s *service) sendToVendor(ctx context.Context, vendor models.Vendor, rfp models.RFP) SendOutcome {
	ctx = s.log.WithVendorID(ctx, vendor.ID.String())

	result, sendErr := s.sender.SendRFP(ctx, vendor, rfp)
	if sendErr != nil {
		s.log.Error(ctx, "dispatch.send.failed", sendErr)
		if markErr := s.records.MarkFailed(ctx, rfp.ID, vendor.ID); markErr != nil {
			s.log.Error(ctx, "dispatch.mark_failed.error", markErr)
		}
		return SendOutcome{
			VendorID:   vendor.ID,
			VendorName: vendor.Name,
			Status:     OutcomeFailed,
			Error:      sendErr.Error(),
		}
	}

	if markErr := s.records.MarkSent(ctx, rfp.ID, vendor.ID, time.Now().UTC()); markErr != nil {
		s.log.Error(ctx, "dispatch.mark_sent.error", markErr)
	}
	s.log.Info(ctx, "dispatch.send.complete")

	return SendOutcome{
		VendorID:   vendor.ID,
		VendorName: vendor.Name,
		Status:     OutcomeSent,
		PreviewURL: result.PreviewURL,
	}
}

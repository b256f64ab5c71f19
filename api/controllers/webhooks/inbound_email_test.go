package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/procureflow/procureflow-backend/internal/inbound"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
	"github.com/procureflow/procureflow-backend/pkg/types"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type stubInboundService struct {
	gotEmail inbound.InboundEmail
	outcome  *inbound.Outcome

	simulateErr error
	proposal    *models.Proposal
}

func (s *stubInboundService) ProcessInbound(_ context.Context, email inbound.InboundEmail) *inbound.Outcome {
	s.gotEmail = email
	return s.outcome
}

func (s *stubInboundService) Simulate(context.Context, inbound.SimulateInput) (*models.Proposal, error) {
	if s.simulateErr != nil {
		return nil, s.simulateErr
	}
	return s.proposal, nil
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("write field %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestInboundEmailPassesFormFieldsThrough(t *testing.T) {
	svc := &stubInboundService{outcome: &inbound.Outcome{Message: "Proposal received"}}
	handler := InboundEmail(svc, testLogger())

	body, contentType := multipartBody(t, map[string]string{
		"from":    "Acme Sales <sales@acme.test>",
		"to":      "rfp@procurement.com",
		"subject": "Re: Request for Proposal",
		"text":    "Our quote is $27,250",
		"html":    "<p>Our quote is $27,250</p>",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/inbound-email", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if svc.gotEmail.From != "Acme Sales <sales@acme.test>" {
		t.Fatalf("from not forwarded: %q", svc.gotEmail.From)
	}
	if svc.gotEmail.Text != "Our quote is $27,250" {
		t.Fatalf("text not forwarded: %q", svc.gotEmail.Text)
	}

	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data := envelope.Data.(map[string]any)
	if data["message"] != "Proposal received" {
		t.Fatalf("unexpected message: %v", data["message"])
	}
}

func TestInboundEmailAnswersOKOnGarbageBody(t *testing.T) {
	svc := &stubInboundService{outcome: &inbound.Outcome{Message: "Unknown vendor"}}
	handler := InboundEmail(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/inbound-email", strings.NewReader("%%%not-a-form"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("the inbound hook must never signal retry, got %d", w.Code)
	}
}

func TestSimulateResponseCreated(t *testing.T) {
	proposalID := uuid.New()
	svc := &stubInboundService{proposal: &models.Proposal{ID: proposalID}}
	handler := SimulateResponse(svc, testLogger())

	payload := map[string]string{
		"rfpId":        uuid.NewString(),
		"vendorId":     uuid.NewString(),
		"emailContent": "Total Price: $27,250",
	}
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/simulate-response", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	var envelope types.SuccessEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data := envelope.Data.(map[string]any)
	if data["message"] != "Simulated response processed" {
		t.Fatalf("unexpected message: %v", data["message"])
	}
}

func TestSimulateResponseSurfacesNotFound(t *testing.T) {
	svc := &stubInboundService{simulateErr: pkgerrors.New(pkgerrors.CodeNotFound, "RFP or Vendor not found")}
	handler := SimulateResponse(svc, testLogger())

	payload := map[string]string{
		"rfpId":        uuid.NewString(),
		"vendorId":     uuid.NewString(),
		"emailContent": "quote",
	}
	raw, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/simulate-response", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSimulateResponseRejectsMissingFields(t *testing.T) {
	handler := SimulateResponse(&stubInboundService{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/simulate-response", strings.NewReader(`{"rfpId":""}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

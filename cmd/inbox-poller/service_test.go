package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/procureflow/procureflow-backend/pkg/config"
	"github.com/procureflow/procureflow-backend/pkg/logger"
	"github.com/procureflow/procureflow-backend/pkg/metrics"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type stubMailbox struct {
	messages []Message
	listErr  error

	read []string
}

func (s *stubMailbox) ListUnread(context.Context) ([]Message, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.messages, nil
}

func (s *stubMailbox) MarkRead(_ context.Context, id string) error {
	s.read = append(s.read, id)
	return nil
}

type stubDirectory struct {
	vendors map[string]string
}

func (s *stubDirectory) VendorIDByEmail(_ context.Context, email string) (string, error) {
	if id, ok := s.vendors[email]; ok {
		return id, nil
	}
	return "", errors.New("vendor not found")
}

type forwardedReply struct {
	rfpID    string
	vendorID string
}

type stubForwarder struct {
	err       error
	forwarded []forwardedReply
}

func (s *stubForwarder) Forward(_ context.Context, rfpID, vendorID, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.forwarded = append(s.forwarded, forwardedReply{rfpID: rfpID, vendorID: vendorID})
	return nil
}

func newTestService(t *testing.T, inbox *stubMailbox, directory *stubDirectory, forward *stubForwarder) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:  config.PollerConfig{},
		Logger:  testLogger(),
		Mailbox: inbox,
		Vendors: directory,
		Forward: forward,
		Metrics: metrics.NewPollerMetrics(nil),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestPollForwardsMatchingReplies(t *testing.T) {
	inbox := &stubMailbox{messages: []Message{
		{
			ID:      "msg-1",
			From:    "Acme Sales <sales@acme.test>",
			Subject: "Re: Request for Proposal: Laptops",
			Body:    "Our quote is $27,250\n\nRFP ID: 0b6a4c3e-8f51-4a8c-a6bb-0f60a1d6c001",
		},
		{
			ID:      "msg-2",
			From:    "Newsletter <news@example.test>",
			Subject: "Weekly digest",
			Body:    "nothing relevant",
		},
	}}
	directory := &stubDirectory{vendors: map[string]string{"sales@acme.test": "vendor-1"}}
	forward := &stubForwarder{}

	svc := newTestService(t, inbox, directory, forward)

	forwarded, err := svc.Poll(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if forwarded != 1 {
		t.Fatalf("expected one forwarded reply, got %d", forwarded)
	}
	if len(forward.forwarded) != 1 {
		t.Fatalf("expected one forward call, got %d", len(forward.forwarded))
	}
	got := forward.forwarded[0]
	if got.rfpID != "0b6a4c3e-8f51-4a8c-a6bb-0f60a1d6c001" {
		t.Fatalf("unexpected rfp id: %s", got.rfpID)
	}
	if got.vendorID != "vendor-1" {
		t.Fatalf("unexpected vendor id: %s", got.vendorID)
	}
	if len(inbox.read) != 1 || inbox.read[0] != "msg-1" {
		t.Fatalf("only the forwarded message should be marked read, got %v", inbox.read)
	}
}

func TestPollSkipsRepliesWithoutMarker(t *testing.T) {
	inbox := &stubMailbox{messages: []Message{{
		ID:      "msg-1",
		From:    "sales@acme.test",
		Subject: "Re: Request for Proposal: Laptops",
		Body:    "quote attached, no marker",
	}}}
	forward := &stubForwarder{}

	svc := newTestService(t, inbox, &stubDirectory{}, forward)

	forwarded, err := svc.Poll(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if forwarded != 0 {
		t.Fatalf("expected nothing forwarded, got %d", forwarded)
	}
	if len(inbox.read) != 0 {
		t.Fatalf("skipped messages must stay unread, got %v", inbox.read)
	}
}

func TestPollContinuesPastUnknownVendor(t *testing.T) {
	inbox := &stubMailbox{messages: []Message{
		{
			ID:      "msg-1",
			From:    "stranger@else.test",
			Subject: "Re: Request for Proposal",
			Body:    "RFP ID: 0b6a4c3e-8f51-4a8c-a6bb-0f60a1d6c001",
		},
		{
			ID:      "msg-2",
			From:    "sales@acme.test",
			Subject: "Re: Request for Proposal",
			Body:    "RFP ID: 0b6a4c3e-8f51-4a8c-a6bb-0f60a1d6c002",
		},
	}}
	directory := &stubDirectory{vendors: map[string]string{"sales@acme.test": "vendor-1"}}
	forward := &stubForwarder{}

	svc := newTestService(t, inbox, directory, forward)

	forwarded, err := svc.Poll(context.Background())
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if forwarded != 1 {
		t.Fatalf("expected the known vendor's reply forwarded, got %d", forwarded)
	}
}

func TestPollPropagatesMailboxError(t *testing.T) {
	inbox := &stubMailbox{listErr: errors.New("gmail unavailable")}
	svc := newTestService(t, inbox, &stubDirectory{}, &stubForwarder{})

	if _, err := svc.Poll(context.Background()); err == nil {
		t.Fatal("expected mailbox error to surface")
	}
}

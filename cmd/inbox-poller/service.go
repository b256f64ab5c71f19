package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/procureflow/procureflow-backend/pkg/config"
	"github.com/procureflow/procureflow-backend/pkg/logger"
	"github.com/procureflow/procureflow-backend/pkg/metrics"
	"github.com/procureflow/procureflow-backend/pkg/types"
)

var (
	rfpIDPattern     = regexp.MustCompile(`(?i)RFP ID[:\s-]*([a-f0-9-]+)`)
	fromEmailPattern = regexp.MustCompile(`<(.+)>`)
)

// Message is one inbox message in the shape the poller inspects.
type Message struct {
	ID      string
	From    string
	Subject string
	Body    string
}

// mailbox lists unread messages and acknowledges processed ones.
type mailbox interface {
	ListUnread(ctx context.Context) ([]Message, error)
	MarkRead(ctx context.Context, id string) error
}

// vendorDirectory resolves a sender address to a vendor id.
type vendorDirectory interface {
	VendorIDByEmail(ctx context.Context, email string) (string, error)
}

// forwarder hands a matched reply to the intake webhook.
type forwarder interface {
	Forward(ctx context.Context, rfpID, vendorID, body string) error
}

type ServiceParams struct {
	Config  config.PollerConfig
	Logger  *logger.Logger
	Mailbox mailbox
	Vendors vendorDirectory
	Forward forwarder
	Metrics *metrics.PollerMetrics
	Label   string
}

// Service is the Gmail polling loop: it scans unread mail for RFP replies
// and forwards each one to the backend webhook.
type Service struct {
	cfg     config.PollerConfig
	logg    *logger.Logger
	mailbox mailbox
	vendors vendorDirectory
	forward forwarder
	metrics *metrics.PollerMetrics
	label   string
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Mailbox == nil {
		return nil, errors.New("mailbox is required")
	}
	if params.Vendors == nil {
		return nil, errors.New("vendor directory is required")
	}
	if params.Forward == nil {
		return nil, errors.New("forwarder is required")
	}
	label := params.Label
	if label == "" {
		label = "gmail"
	}
	return &Service{
		cfg:     params.Config,
		logg:    params.Logger,
		mailbox: params.Mailbox,
		vendors: params.Vendors,
		forward: params.Forward,
		metrics: params.Metrics,
		label:   label,
	}, nil
}

// Run polls immediately and then on every tick until the context ends.
func (s *Service) Run(ctx context.Context) {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.pollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	start := time.Now()
	forwarded, err := s.Poll(ctx)
	s.metrics.ObserveDuration(s.label, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(s.label)
		s.logg.Error(ctx, "poller.cycle.failed", err)
		return
	}
	s.metrics.IncSuccess(s.label)
	ctx = s.logg.WithField(ctx, "forwarded", forwarded)
	s.logg.Info(ctx, "poller.cycle.complete")
}

// Poll runs one scan over the unread messages. It returns how many replies
// were forwarded; per-message problems are logged and skipped so one bad
// message cannot stall the mailbox.
func (s *Service) Poll(ctx context.Context) (int, error) {
	messages, err := s.mailbox.ListUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unread: %w", err)
	}

	forwarded := 0
	for _, msg := range messages {
		if !s.isRFPReply(msg) {
			continue
		}
		mctx := s.logg.WithField(ctx, "message_id", msg.ID)
		if err := s.handleMessage(mctx, msg); err != nil {
			s.logg.Error(mctx, "poller.message.skipped", err)
			continue
		}
		forwarded++
		s.metrics.IncForwarded(s.label)
		if err := s.mailbox.MarkRead(ctx, msg.ID); err != nil {
			s.logg.Error(mctx, "poller.mark_read.failed", err)
		}
	}
	return forwarded, nil
}

// isRFPReply applies the same filter as the intake pipeline: subject carries
// the outgoing subject line, or the body carries the trailing id marker.
func (s *Service) isRFPReply(msg Message) bool {
	return strings.Contains(msg.Subject, "Request for Proposal") ||
		strings.Contains(msg.Body, "RFP ID:")
}

func (s *Service) handleMessage(ctx context.Context, msg Message) error {
	match := rfpIDPattern.FindStringSubmatch(msg.Body)
	if match == nil {
		return errors.New("no rfp id marker in body")
	}
	rfpID := match[1]

	email := msg.From
	if m := fromEmailPattern.FindStringSubmatch(msg.From); m != nil {
		email = m[1]
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("no sender address")
	}

	vendorID, err := s.vendors.VendorIDByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("resolve vendor %s: %w", email, err)
	}

	if err := s.forward.Forward(ctx, rfpID, vendorID, msg.Body); err != nil {
		return fmt.Errorf("forward reply: %w", err)
	}
	return nil
}

// backendClient talks to the API over its public JSON surface.
type backendClient struct {
	baseURL string
	client  *http.Client
}

func newBackendClient(baseURL string) *backendClient {
	return &backendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type vendorRecord struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *backendClient) VendorIDByEmail(ctx context.Context, email string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/vendors", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("list vendors: status %d", resp.StatusCode)
	}

	var envelope struct {
		Data []vendorRecord `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode vendors: %w", err)
	}
	for _, vendor := range envelope.Data {
		if strings.EqualFold(vendor.Email, email) {
			return vendor.ID, nil
		}
	}
	return "", fmt.Errorf("vendor not found for %s", email)
}

func (c *backendClient) Forward(ctx context.Context, rfpID, vendorID, body string) error {
	payload, err := json.Marshal(map[string]string{
		"rfpId":        rfpID,
		"vendorId":     vendorID,
		"emailContent": body,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/webhooks/simulate-response", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		var envelope types.ErrorEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error.Message != "" {
			return fmt.Errorf("simulate-response: %s (status %d)", envelope.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("simulate-response: status %d", resp.StatusCode)
	}
	return nil
}

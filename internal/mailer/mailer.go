package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/procureflow/procureflow-backend/pkg/config"
	"github.com/procureflow/procureflow-backend/pkg/db/models"
	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
)

const (
	ModeEthereal = "ethereal"
	ModeSMTP     = "smtp"
)

// SendResult reports the outcome of one delivery.
type SendResult struct {
	MessageID  string
	PreviewURL string
	Mode       string
}

// Sender delivers a rendered request-for-proposal to a single vendor.
type Sender interface {
	SendRFP(ctx context.Context, vendor models.Vendor, rfp models.RFP) (*SendResult, error)
	Mode() string
}

// SMTPSender sends mail over a plain SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
	log *logger.Logger

	// send is swapped out in tests.
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender builds a sender from SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig, log *logger.Logger) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mailer: smtp host is required")
	}
	if log == nil {
		return nil, fmt.Errorf("mailer: logger is required")
	}
	sender := &SMTPSender{cfg: cfg, log: log}
	sender.send = sender.sendWithDeadline
	return sender, nil
}

// sendWithDeadline speaks the same protocol sequence as smtp.SendMail but
// bounds the whole conversation with the configured timeout, so a hung relay
// fails the dispatch instead of stalling it.
func (s *SMTPSender) sendWithDeadline(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		conn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.cfg.Host}); err != nil {
			return err
		}
	}
	if auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// Mode reports whether deliveries land in a capture inbox or a real relay.
func (s *SMTPSender) Mode() string {
	if s.cfg.TestMode {
		return ModeEthereal
	}
	return ModeSMTP
}

// SendRFP renders and delivers the request to the vendor's address.
func (s *SMTPSender) SendRFP(ctx context.Context, vendor models.Vendor, rfp models.RFP) (*SendResult, error) {
	subject, text, html := RenderRFPEmail(vendor, rfp)

	messageID := fmt.Sprintf("%s@%s", uuid.NewString(), s.cfg.Host)
	msg := buildMessage(s.cfg.From, vendor.Email, subject, messageID, text, html)

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	if err := s.send(addr, auth, envelopeAddress(s.cfg.From), []string{vendor.Email}, msg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending rfp email")
	}

	result := &SendResult{MessageID: messageID, Mode: s.Mode()}
	if s.cfg.TestMode {
		result.PreviewURL = fmt.Sprintf("https://ethereal.email/message/%s", messageID)
	}

	ctx = s.log.WithFields(ctx, map[string]any{
		"to":         vendor.Email,
		"message_id": messageID,
		"mode":       result.Mode,
	})
	s.log.Info(ctx, "mailer.rfp.sent")
	return result, nil
}

// buildMessage assembles a multipart/alternative MIME message with text and
// HTML bodies.
func buildMessage(from, to, subject, messageID, text, html string) []byte {
	boundary := strings.ReplaceAll(uuid.NewString(), "-", "")

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Message-ID: <%s>\r\n", messageID)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}

// envelopeAddress extracts the bare address from a display-name form like
// `RFP System <rfp@procurement.com>`.
func envelopeAddress(from string) string {
	if start := strings.Index(from, "<"); start != -1 {
		if end := strings.Index(from[start:], ">"); end != -1 {
			return from[start+1 : start+end]
		}
	}
	return strings.TrimSpace(from)
}

package inbound

import (
	"regexp"
	"strings"
)

var (
	angleAddrPattern = regexp.MustCompile(`<(.+)>`)
	rfpIDPattern     = regexp.MustCompile(`(?i)RFP[:\s-]*ID[:\s-]*([a-f0-9-]+)`)
)

// InboundEmail is the parsed envelope of one inbound delivery, as posted by
// an inbound-parse webhook.
type InboundEmail struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
	HTML    string `json:"html"`
}

// SenderAddress extracts the bare address from the From header, which may
// carry a display name around it.
func (e InboundEmail) SenderAddress() string {
	if match := angleAddrPattern.FindStringSubmatch(e.From); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(e.From)
}

// Content returns the plain-text body, falling back to HTML when no text
// part was delivered.
func (e InboundEmail) Content() string {
	if e.Text != "" {
		return e.Text
	}
	return e.HTML
}

// ExtractRFPID pulls an explicit request identifier from the subject or the
// body. Outbound messages end with a marker line ("RFP ID: <uuid>") that
// survives in most reply quotes.
func (e InboundEmail) ExtractRFPID() string {
	if match := rfpIDPattern.FindStringSubmatch(e.Subject); match != nil {
		return match[1]
	}
	if match := rfpIDPattern.FindStringSubmatch(e.Text); match != nil {
		return match[1]
	}
	return ""
}

package mailer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/procureflow/procureflow-backend/pkg/db/models"
)

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// RenderRFPEmail renders the outbound request-for-proposal message for one
// vendor. The plain-text body uses markdown-style bold markers which the
// HTML variant converts to strong tags.
func RenderRFPEmail(vendor models.Vendor, rfp models.RFP) (subject, text, html string) {
	subject = fmt.Sprintf("Request for Proposal: %s", rfp.Title)

	greeting := vendor.Name
	if vendor.ContactPerson != nil && *vendor.ContactPerson != "" {
		greeting = *vendor.ContactPerson
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", greeting)
	b.WriteString("We are requesting a proposal for the following procurement:\n\n")
	fmt.Fprintf(&b, "**%s**\n\n", rfp.Title)
	if rfp.Description != nil && *rfp.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", *rfp.Description)
	}

	b.WriteString("**Items Required:**\n")
	for _, item := range rfp.Items {
		fmt.Fprintf(&b, "• %s (Qty: %d)", item.Name, item.Quantity)
		if item.Description != nil && *item.Description != "" {
			fmt.Fprintf(&b, " - %s", *item.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if specs := renderSpecifications(rfp.Items); specs != "" {
		fmt.Fprintf(&b, "**Specifications:**\n%s\n\n", specs)
	}

	b.WriteString("**Requirements:**\n")
	if rfp.Budget != nil {
		currency := rfp.Currency
		if currency == "" {
			currency = "USD"
		}
		fmt.Fprintf(&b, "• Budget: $%s %s\n", formatMoney(*rfp.Budget), currency)
	}
	if rfp.DeliveryDays != nil {
		fmt.Fprintf(&b, "• Delivery: Within %d days\n", *rfp.DeliveryDays)
	}
	if rfp.PaymentTerms != nil && *rfp.PaymentTerms != "" {
		fmt.Fprintf(&b, "• Payment Terms: %s\n", *rfp.PaymentTerms)
	}
	if rfp.WarrantyMonths != nil {
		fmt.Fprintf(&b, "• Warranty Required: %d months minimum\n", *rfp.WarrantyMonths)
	}
	b.WriteString("\n")

	b.WriteString("Please reply to this email with your proposal including:\n")
	b.WriteString("1. Unit prices for each item\n")
	b.WriteString("2. Total price\n")
	b.WriteString("3. Delivery timeline\n")
	b.WriteString("4. Warranty terms\n")
	b.WriteString("5. Payment terms\n\n")
	b.WriteString("Best regards,\nProcurement Team\n\n")
	b.WriteString("---\n")
	fmt.Fprintf(&b, "RFP ID: %s", rfp.ID)

	text = strings.TrimSpace(b.String())
	html = textToHTML(text)
	return subject, text, html
}

func renderSpecifications(items []models.RFPItem) string {
	var blocks []string
	for _, item := range items {
		if len(item.Specifications) == 0 {
			continue
		}
		keys := make([]string, 0, len(item.Specifications))
		for key := range item.Specifications {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		lines := make([]string, 0, len(keys))
		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("  - %s: %s", key, item.Specifications[key]))
		}
		blocks = append(blocks, fmt.Sprintf("%s:\n%s", item.Name, strings.Join(lines, "\n")))
	}
	return strings.Join(blocks, "\n\n")
}

// formatMoney renders a decimal with thousands separators, dropping the
// fractional part when it is zero.
func formatMoney(amount decimal.Decimal) string {
	str := amount.String()
	negative := strings.HasPrefix(str, "-")
	str = strings.TrimPrefix(str, "-")

	intPart := str
	fracPart := ""
	if idx := strings.Index(str, "."); idx != -1 {
		intPart, fracPart = str[:idx], str[idx+1:]
	}

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	out := grouped.String()
	if fracPart != "" {
		out += "." + fracPart
	}
	if negative {
		out = "-" + out
	}
	return out
}

func textToHTML(text string) string {
	html := boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
	return strings.ReplaceAll(html, "\n", "<br>")
}

package ai

import "fmt"

func buildRFPPrompt(rawInput string) string {
	return fmt.Sprintf(`You are an AI assistant that converts natural language procurement requests into structured RFP (Request for Proposal) data.

Extract the following information and return ONLY valid JSON (no markdown, no code blocks):
- title: A concise title for the RFP
- description: Brief description of what is being procured
- budget: Total budget as a number (null if not specified)
- currency: Currency code (default "USD")
- deliveryDays: Number of days for delivery (null if not specified)
- paymentTerms: Payment terms as string (e.g., "Net 30")
- warrantyMonths: Warranty period in months (null if not specified)
- items: Array of items, each with:
  - name: Item name
  - description: Item description
  - quantity: Number of units
  - specifications: Object with key-value pairs for specs

Be precise with numbers. If something is not mentioned, use null.

User request: %s

Return ONLY the JSON object, no other text:`, rawInput)
}

func buildProposalPrompt(emailContent, rfpContextJSON string) string {
	return fmt.Sprintf(`You are an AI assistant that extracts structured proposal data from vendor email responses.

The original RFP requested:
%s

Extract the following from the vendor's email and return ONLY valid JSON (no markdown, no code blocks):
- totalPrice: Total quoted price as a number (null if not clear)
- unitPrices: Array of {itemName, unitPrice, quantity, totalPrice} for each quoted item
- deliveryDays: Proposed delivery timeline in days (null if not specified)
- warranty: Warranty terms as string
- paymentTerms: Payment terms as string
- additionalNotes: Any other important terms or conditions
- isComplete: Boolean - does the response address all RFP requirements?

Be precise with numbers. Extract exactly what is stated.

Vendor email content:
%s

Return ONLY the JSON object, no other text:`, rfpContextJSON, emailContent)
}

func buildComparisonPrompt(contextJSON string) string {
	return fmt.Sprintf(`You are an AI assistant that helps evaluate and compare vendor proposals for an RFP.

Analyze each proposal and provide:
1. A score from 0-100 for each proposal based on:
   - Price competitiveness (40%%)
   - Meeting RFP requirements (30%%)
   - Delivery timeline (15%%)
   - Warranty and terms (15%%)

2. For each proposal, identify strengths, weaknesses, and a summary.

3. Provide an overall recommendation.

RFP and Proposals data:
%s

Return ONLY valid JSON (no markdown, no code blocks) in this format:
{
  "evaluations": [
    {
      "vendorId": "...",
      "vendorName": "...",
      "score": 85,
      "strengths": ["..."],
      "weaknesses": ["..."],
      "summary": "..."
    }
  ],
  "recommendation": {
    "recommendedVendorId": "...",
    "recommendedVendorName": "...",
    "reasoning": "...",
    "comparisonMatrix": {
      "headers": ["Factor", "Vendor1", "Vendor2"],
      "rows": [["Price", "$X", "$Y"]]
    }
  }
}

Return ONLY the JSON object, no other text:`, contextJSON)
}

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/procureflow/procureflow-backend/pkg/errors"
	"github.com/procureflow/procureflow-backend/pkg/logger"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type assistant struct {
	generator contentGenerator
	log       *logger.Logger
	timeout   time.Duration
}

// NewAssistant builds an Assistant on top of a content generator, usually
// the Gemini client.
func NewAssistant(generator contentGenerator, log *logger.Logger, timeout time.Duration) (Assistant, error) {
	if generator == nil {
		return nil, errors.New("ai assistant: generator is required")
	}
	if log == nil {
		return nil, errors.New("ai assistant: logger is required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &assistant{generator: generator, log: log, timeout: timeout}, nil
}

func (a *assistant) ExtractRFP(ctx context.Context, rawInput string) (*RFPDraft, error) {
	raw, err := a.generate(ctx, buildRFPPrompt(rawInput))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "extracting request from input")
	}
	return parseRFPDraft(raw)
}

func (a *assistant) ExtractProposal(ctx context.Context, emailContent string, rfp RFPContext) (*ProposalTerms, error) {
	contextJSON, err := json.MarshalIndent(rfp, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshaling request context")
	}

	raw, err := a.generate(ctx, buildProposalPrompt(emailContent, string(contextJSON)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "extracting proposal from email")
	}
	return parseProposalTerms(raw)
}

func (a *assistant) CompareProposals(ctx context.Context, input ComparisonInput) (*ComparisonReport, error) {
	contextJSON, err := json.MarshalIndent(input, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshaling comparison context")
	}

	raw, err := a.generate(ctx, buildComparisonPrompt(string(contextJSON)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "comparing proposals")
	}
	return parseComparisonReport(raw)
}

func (a *assistant) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	raw, err := a.generator.GenerateContent(ctx, prompt)
	ctx = a.log.WithFields(ctx, map[string]any{
		"prompt_length":  len(prompt),
		"duration_ms":    time.Since(started).Milliseconds(),
		"response_bytes": len(raw),
	})
	if err != nil {
		a.log.Error(ctx, "ai.generate.failed", err)
		return "", err
	}
	a.log.Debug(ctx, "ai.generate.complete")
	return raw, nil
}

package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/metrics"
	"github.com/kapu/name-bender-go/internal/prompt"
	"github.com/kapu/name-bender-go/internal/util"
	"github.com/kapu/name-bender-go/pkg/errors"
)

const (
	MsgGenerateFailed     = "Failed to generate domain names from AI. Please try again."
	MsgAlternativesFailed = "Failed to generate alternatives from AI. Please try again."
)

// TextModel is what the generator needs from the model manager.
type TextModel interface {
	GenerateJSON(ctx context.Context, prompt string, preset ModelPreset, dest any, opts *GenerateOptions) (*GenerateMetadata, error)
	GenerateText(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error)
}

type domainListResponse struct {
	Domains []string `json:"domains"`
}

// Generator turns descriptions into normalized candidate names.
type Generator struct {
	model   TextModel
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewGenerator(model TextModel, m *metrics.Metrics, logger *zap.Logger) *Generator {
	return &Generator{
		model:   model,
		metrics: m,
		logger:  logger,
	}
}

// Generate asks for a fresh batch of names for description, avoiding
// exclude. Any failure surfaces as one GenerationError.
func (g *Generator) Generate(ctx context.Context, description string, exclude []string) ([]string, error) {
	description = util.TruncateString(strings.TrimSpace(description), constants.AIInputLimits.MaxPromptLength)
	p := prompt.BuildDomainNamePrompt(prompt.DomainNamePromptVars{
		Description:   description,
		Count:         constants.GenerationConfig.IdeasPerRequest,
		ExistingNames: exclude,
	})

	names, err := g.generateList(ctx, "generate", p, prompt.DomainNameSystemInstruction)
	if err != nil {
		return nil, errors.NewGenerationError(MsgGenerateFailed, "generate", err)
	}
	return names, nil
}

// GenerateAlternatives asks for replacements of a taken name.
func (g *Generator) GenerateAlternatives(ctx context.Context, name string) ([]string, error) {
	names, err := g.generateList(ctx, "alternatives",
		prompt.BuildAlternativesPrompt(name),
		prompt.BuildAlternativesSystemInstruction(constants.GenerationConfig.AlternativesPerName),
	)
	if err != nil {
		return nil, errors.NewGenerationError(MsgAlternativesFailed, "alternatives", err)
	}
	return names, nil
}

// GenerateQuote never fails: any error yields the fixed fallback quote.
func (g *Generator) GenerateQuote(ctx context.Context, description string) string {
	ctx, cancel := context.WithTimeout(ctx, constants.GenerationConfig.RequestTimeout)
	defer cancel()

	text, _, err := g.model.GenerateText(ctx, prompt.BuildQuotePrompt(strings.TrimSpace(description)), PresetBalanced, &GenerateOptions{
		SystemInstruction: prompt.QuoteSystemInstruction,
	})
	if err != nil {
		g.metrics.IncrementGeneration("quote", "error")
		g.logger.Warn("Quote generation failed, using fallback", zap.Error(err))
		return prompt.FallbackQuote
	}

	quote := formatQuote(text)
	if quote == "" {
		g.metrics.IncrementGeneration("quote", "error")
		return prompt.FallbackQuote
	}
	g.metrics.IncrementGeneration("quote", "ok")
	return quote
}

func (g *Generator) generateList(ctx context.Context, operation, p, systemInstruction string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.GenerationConfig.RequestTimeout)
	defer cancel()

	var resp domainListResponse
	metadata, err := g.model.GenerateJSON(ctx, p, PresetCreative, &resp, &GenerateOptions{
		SystemInstruction: systemInstruction,
		ResponseSchema:    domainListSchema,
	})
	if err != nil {
		g.metrics.IncrementGeneration(operation, "error")
		g.logger.Error("Name generation failed", zap.String("operation", operation), zap.Error(err))
		return nil, err
	}

	names := util.NormalizeNames(resp.Domains)
	g.metrics.IncrementGeneration(operation, "ok")
	g.logger.Debug("Names generated",
		zap.String("operation", operation),
		zap.String("provider", metadata.Provider),
		zap.Bool("fallback", metadata.UsedFallback),
		zap.Int("count", len(names)),
	)
	return names, nil
}

// formatQuote keeps the first non-empty line as the quote and the next one
// as the attribution, joined by a single line break.
func formatQuote(text string) string {
	lines := make([]string, 0, 2)
	for _, line := range strings.Split(StripCodeFence(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
		if len(lines) == 2 {
			break
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

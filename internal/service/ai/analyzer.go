package ai

import (
	"context"
	"strings"

	"github.com/kapu/emotion-map-go/internal/constants"
	"github.com/kapu/emotion-map-go/internal/domain"
	"github.com/kapu/emotion-map-go/internal/prompt"
	"github.com/kapu/emotion-map-go/internal/util"
	apperrors "github.com/kapu/emotion-map-go/pkg/errors"
	"go.uber.org/zap"
)

// TextGenerator is the narrow generation surface the analyzer depends on.
// ModelManager satisfies it in production.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, preset ModelPreset, opts *GenerateOptions) (string, *GenerateMetadata, error)
}

// KeyResolver supplies the process-wide fallback API key, consulted at call
// time only when the caller does not provide a key of its own.
type KeyResolver func() string

const providerFailureFallback = "emotional map generation failed"

// EmotionalMapAnalyzer turns a situation description plus light demographic
// context into a structured emotional map via the model provider. Each call is
// independent: no cache, no retries, a single outstanding request.
type EmotionalMapAnalyzer struct {
	generator  TextGenerator
	resolveKey KeyResolver
	logger     *zap.Logger
}

func NewEmotionalMapAnalyzer(generator TextGenerator, resolveKey KeyResolver, logger *zap.Logger) *EmotionalMapAnalyzer {
	return &EmotionalMapAnalyzer{
		generator:  generator,
		resolveKey: resolveKey,
		logger:     logger,
	}
}

// Analyze produces the emotional map for one input. An explicit apiKey wins
// over the resolver; with neither available the call fails before any network
// activity. An empty situation is deliberately passed through to the model.
func (a *EmotionalMapAnalyzer) Analyze(ctx context.Context, input *domain.UserInput, apiKey string) (*domain.EmotionalMapAnalysis, *GenerateMetadata, error) {
	explicitKey := strings.TrimSpace(apiKey)
	key := explicitKey
	if key == "" && a.resolveKey != nil {
		key = strings.TrimSpace(a.resolveKey())
	}
	if key == "" {
		return nil, nil, apperrors.NewMissingCredentialsError("no API key supplied and none configured")
	}

	promptText := prompt.BuildAnalysisPrompt(prompt.AnalysisPromptVars{
		Situation: input.Situation,
		Age:       input.Age,
		Country:   input.Country,
		Language:  input.Language,
	})

	opts := &GenerateOptions{
		JSONMode:          true,
		SystemInstruction: prompt.AnalysisSystemInstruction,
		ResponseSchema:    AnalysisSchema(),
		ResponseFormat:    AnalysisResponseFormat(),
		// Only an explicit caller key forces a per-call client; the resolver
		// key is the same one the shared client was built with.
		APIKey: explicitKey,
	}

	text, metadata, err := a.generator.Generate(ctx, promptText, PresetBalanced, opts)
	if err != nil {
		a.logger.Error("Emotional map generation failed", zap.Error(err))
		message := strings.TrimSpace(err.Error())
		if message == "" {
			message = providerFailureFallback
		}
		return nil, nil, apperrors.NewProviderError(message, providerName(metadata), err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, nil, apperrors.NewEmptyResponseError("model returned no text", providerName(metadata))
	}

	var analysis domain.EmotionalMapAnalysis
	if err := DecodeJSONResponse(text, &analysis); err != nil {
		a.logger.Error("Failed to parse analysis response",
			zap.String("provider", providerName(metadata)),
			zap.Error(err),
			zap.String("response_preview", util.TruncateString(text, constants.AILimits.MaxResponsePreview)),
		)
		return nil, nil, apperrors.NewMalformedResponseError("model response is not valid JSON", err)
	}

	// svg_flowchart is deprecated; the zero value already guarantees "" when
	// the model omits it.

	a.logger.Info("Emotional map generated",
		zap.String("provider", providerName(metadata)),
		zap.String("model", modelName(metadata)),
		zap.Int("core_emotions", len(analysis.CoreEmotions)),
		zap.Int("transitions", len(analysis.EmotionalTransitions)),
	)

	return &analysis, metadata, nil
}

func providerName(metadata *GenerateMetadata) string {
	if metadata == nil {
		return "unknown"
	}
	return metadata.Provider
}

func modelName(metadata *GenerateMetadata) string {
	if metadata == nil {
		return "unknown"
	}
	return metadata.Model
}

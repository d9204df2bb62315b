package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/ai"
	"github.com/spigell/fedjobs/internal/ai/gemini"
	"github.com/spigell/fedjobs/internal/filtering"
	"github.com/spigell/fedjobs/internal/logger"
	"github.com/spigell/fedjobs/internal/secrets"
)

const providerGemini = "gemini"

// prepareAI returns the ai_fit step configuration and, when the step is
// enabled and usable, its matcher. The configuration is returned even on
// error so the step reports why it was skipped.
func prepareAI(ctx context.Context, config *AIConfig, log *zap.Logger) (*filtering.AIFitFilterConfig, ai.Matcher, error) {
	if config == nil || !config.Enabled {
		return &filtering.AIFitFilterConfig{Enabled: false}, nil, nil
	}

	aiConfig := &filtering.AIFitFilterConfig{
		Enabled:         config.Enabled,
		Provider:        config.Provider,
		MinimumFitScore: config.MinimumFitScore,
	}

	if config.Gemini == nil {
		return aiConfig, nil, fmt.Errorf("gemini configuration is required when ai filter is enabled")
	}

	aiConfig.Gemini = &filtering.AIGeminiConfig{
		Model:        config.Gemini.Model,
		MaxRetries:   config.Gemini.MaxRetries,
		MaxLogLength: config.Gemini.MaxLogLength,
	}

	matcher, err := newAIMatcher(ctx, config, log)
	if err != nil {
		return aiConfig, nil, fmt.Errorf("building ai matcher: %w", err)
	}

	return aiConfig, matcher, nil
}

func newAIMatcher(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Matcher, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != providerGemini {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithAI(log, providerGemini, cfg.Gemini.Model).
		With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	matcherLogger := logger.WithAI(log, providerGemini, generator.Model()).
		With(zap.Float64("minimum_fit_score", minScore))

	matcher := gemini.NewMatcher(generator, minScore, cfg.Gemini.MaxLogLength, matcherLogger)
	if p := cfg.Prompt; p != nil {
		matcher.SetPromptOverrides(gemini.PromptOverrides{
			ExtraCriteria:    p.ExtraCriteria,
			DealBreakers:     p.DealBreakers,
			Tone:             p.Tone,
			UserInstructions: p.UserInstructions,
		})
	}

	return matcher, nil
}

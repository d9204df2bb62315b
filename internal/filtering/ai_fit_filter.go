package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/ai"
	"github.com/spigell/fedjobs/internal/listing"
	"github.com/spigell/fedjobs/internal/matching"
)

type aiFitFilter struct {
	enabled bool
	reason  string
	config  *AIFitFilterConfig
	deps    *AIFitFilterDeps
}

type AIFitFilterDeps struct {
	Logger      *zap.Logger
	Matcher     ai.Matcher
	Profile     matching.Profile
	ExcludeFile string
	Now         func() time.Time
}

type AIFitFilterConfig struct {
	Enabled         bool
	Provider        string
	MinimumFitScore float64
	Gemini          *AIGeminiConfig
}

type AIGeminiConfig struct {
	Model        string
	MaxRetries   int
	MaxLogLength int
}

// NewAIFit creates the AI-based filtering step.
func NewAIFit(cfg *AIFitFilterConfig, deps *AIFitFilterDeps) Filter {
	if cfg == nil {
		cfg = &AIFitFilterConfig{}
	}
	return &aiFitFilter{
		enabled: cfg.Enabled,
		deps:    deps,
		config:  cfg,
	}
}

func (f *aiFitFilter) Name() string { return "ai_fit" }

func (f *aiFitFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *aiFitFilter) IsEnabled() bool { return f.enabled }

func (f *aiFitFilter) Validate() error {
	if f.deps == nil || f.deps.Matcher == nil {
		return fmt.Errorf("deps are not initialized: filter is not usable")
	}
	if f.deps.Logger == nil {
		f.deps.Logger = zap.NewNop()
	}
	if f.deps.Now == nil {
		f.deps.Now = time.Now
	}

	if f.config.Gemini == nil {
		return fmt.Errorf("gemini configuration is required when ai filter is enabled")
	}
	if strings.TrimSpace(f.config.Gemini.Model) == "" {
		return fmt.Errorf("gemini model is required when ai filter is enabled")
	}
	return nil
}

func (f *aiFitFilter) Apply(ctx context.Context, r *matching.Results) (*matching.Results, Step, error) {
	initial := r.Len()

	f.applyMatcher(ctx, r)

	left := r.Len()
	return r, Step{Initial: initial, Dropped: initial - left, Left: left}, nil
}

func (f *aiFitFilter) applyMatcher(ctx context.Context, r *matching.Results) {
	initial := r.Len()
	approved := make([]matching.MatchResult, 0, initial)

	for _, item := range r.Items {
		key := item.Listing.Key()

		assessment, err := f.deps.Matcher.Evaluate(ctx, f.deps.Profile, item.Listing)
		if err != nil {
			f.deps.Logger.Warn("AI evaluation failed",
				zap.String("listing", key),
				zap.Error(err),
			)
			item.AI = &matching.AIAssessment{Error: err.Error()}
			approved = append(approved, item)
			continue
		}

		item.AI = assessment.Result()

		if !item.AI.Fit {
			f.deps.Logger.Info("listing rejected by AI provider",
				zap.String("listing", key),
				zap.Float64("ai_score", assessment.Score),
				zap.String("reason", assessment.Reason),
			)

			if err := f.appendToExcludeFile(item.Listing, assessment.Reason); err != nil {
				f.deps.Logger.Warn("failed to append listing to exclude file",
					zap.String("listing", key),
					zap.Error(err),
				)
			}
			continue
		}

		f.deps.Logger.Info("listing approved by AI",
			zap.String("listing", key),
			zap.Float64("ai_score", assessment.Score),
		)

		approved = append(approved, item)
	}

	r.Items = approved

	f.deps.Logger.Info("AI filtering completed",
		zap.Int("initial_listings", initial),
		zap.Int("approved_listings", len(approved)),
	)
}

func (f *aiFitFilter) appendToExcludeFile(l listing.Listing, reason string) error {
	path := strings.TrimSpace(f.deps.ExcludeFile)
	if path == "" {
		return nil
	}

	excluded, err := listing.GetExcludedFromFile(path)
	if err != nil {
		return fmt.Errorf("load excluded listings: %w", err)
	}

	excluded.Append(listing.ToExcluded([]listing.Listing{l}, listing.ExcludeActorAI, reason, f.deps.Now()))

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("write excluded listings: %w", err)
	}

	f.deps.Logger.Info("listing appended to exclude file",
		zap.String("listing", l.Key()),
		zap.String("exclude_file", path),
	)

	return nil
}

func (f *aiFitFilter) Status() Status {
	details := map[string]string{}
	if f.config != nil && f.config.Enabled {
		details["minimum_fit_score"] = fmt.Sprintf("%.2f", f.config.MinimumFitScore)
		if f.config.Gemini != nil {
			details["model"] = f.config.Gemini.Model
			details["max_retries"] = strconv.Itoa(f.config.Gemini.MaxRetries)
			details["max_log_length"] = strconv.Itoa(f.config.Gemini.MaxLogLength)
		}
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

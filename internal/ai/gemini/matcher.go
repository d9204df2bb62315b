package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/fedjobs/internal/ai"
	"github.com/spigell/fedjobs/internal/listing"
	"github.com/spigell/fedjobs/internal/matching"
	"github.com/spigell/fedjobs/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// PromptOverrides are user preferences rendered into the system prompt.
type PromptOverrides struct {
	ExtraCriteria    string
	DealBreakers     string
	Tone             string
	UserInstructions string
}

type Matcher struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
	overrides PromptOverrides
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength     = 200
	defaultTone             = "Friendly"
	maxUserInstructionRunes = 500
)

func NewMatcher(generator contentGenerator, minScore float64, maxLogLength int, logger *zap.Logger) *Matcher {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		generator: generator,
		minScore:  minScore,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (m *Matcher) SetPromptOverrides(overrides PromptOverrides) {
	m.overrides = overrides
}

type profilePayload struct {
	Address          string   `json:"address"`
	Skills           []string `json:"skills,omitempty"`
	Education        string   `json:"education,omitempty"`
	MaxDistanceMiles float64  `json:"max_distance_miles"`
}

func (m *Matcher) Evaluate(ctx context.Context, profile matching.Profile, l listing.Listing) (*ai.FitAssessment, error) {
	if strings.TrimSpace(l.Title) == "" {
		return nil, fmt.Errorf("listing title is required")
	}

	profileJSON, err := json.MarshalIndent(profilePayload{
		Address:          profile.Address(),
		Skills:           profile.Skills(),
		Education:        profile.EducationField(),
		MaxDistanceMiles: profile.MaxDistanceMiles(),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile payload: %w", err)
	}

	l.Coordinates = nil
	listingJSON, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal listing payload: %w", err)
	}

	system := buildSystemPrompt(m.overrides)
	message := buildMessage(string(profileJSON), string(listingJSON))

	m.logger.Debug("gemini generate content request",
		zap.String("listing", l.Key()),
		zap.Int("prompt_length", utf8.RuneCountInString(system)+utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, m.maxLogLen)),
	)

	raw, err := m.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("gemini generate content response",
		zap.String("listing", l.Key()),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, m.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if m.minScore > 0 && assessment.Score < m.minScore {
		m.logger.Debug("set fit to false by score threshold",
			zap.String("listing", l.Key()),
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", m.minScore),
		)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildSystemPrompt(o PromptOverrides) string {
	tone := sanitizeLine(o.Tone)
	if tone == "" {
		tone = defaultTone
	}

	replacer := strings.NewReplacer(
		"{{EXTRA_CRITERIA}}", orNone(sanitizeLine(o.ExtraCriteria)),
		"{{DEAL_BREAKERS}}", orNone(sanitizeLine(o.DealBreakers)),
		"{{TONE}}", tone,
		"{{USER_INSTRUCTIONS}}", sanitizeInstructions(o.UserInstructions),
	)
	return replacer.Replace(promptTemplate)
}

func buildMessage(profileJSON, listingJSON string) string {
	return "[Inputs]\nProfile:\n" + profileJSON + "\n\nListing:\n" + listingJSON + "\n\nJSON Response:"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// sanitizeLine collapses whitespace and replaces square brackets so user text
// cannot open a new prompt section.
func sanitizeLine(s string) string {
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// sanitizeInstructions renders free-form instructions as an indented list,
// one entry per non-empty line, capped at maxUserInstructionRunes.
func sanitizeInstructions(s string) string {
	var lines []string
	budget := maxUserInstructionRunes

	for _, line := range strings.Split(s, "\n") {
		line = sanitizeLine(line)
		if line == "" || budget <= 0 {
			continue
		}
		if runes := []rune(line); len(runes) > budget {
			line = string(runes[:budget])
		}
		budget -= utf8.RuneCountInString(line)
		lines = append(lines, "  - "+line)
	}

	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func parseResponse(raw string) (*ai.FitAssessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}

	return &ai.FitAssessment{
		Fit:     coerceBool(data["fit"]),
		Score:   score,
		Reason:  coerceString(data["reason"]),
		Message: coerceString(data["message"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

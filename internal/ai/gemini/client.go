package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/fedjobs/internal/retry"
)

const (
	defaultModel = "gemini-2.5-flash"

	defaultRetryDelay = 2 * time.Second
	maxRetryDelay     = 30 * time.Second
	// Quota errors asking to wait longer than this are not retried.
	maxQuotaWait = 10 * time.Second
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	chats  chatCreator
	model  string
	policy retry.Policy
	logger *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		chats: genaiChats{chats: client.Chats},
		model: model,
		policy: retry.Policy{
			MaxAttempts: max(maxRetries, 1),
			BaseDelay:   defaultRetryDelay,
			MaxDelay:    maxRetryDelay,
			Retryable:   isRetryable,
		},
		logger: logger,
	}, nil
}

// GenerateContent starts a fresh chat with the system instruction, sends the
// message and returns the textual reply. Transient API errors are retried.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	policy := g.policy
	if policy.Retryable == nil {
		policy.Retryable = isRetryable
	}
	policy.Notify = func(err error, attempt int, delay time.Duration) {
		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	return retry.Get(ctx, policy, func(ctx context.Context) (string, error) {
		return g.send(ctx, system, message)
	})
}

func (g *Generator) send(ctx context.Context, system, message string) (string, error) {
	var config *genai.GenerateContentConfig
	if system = strings.TrimSpace(system); system != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		}
	}

	chat, err := g.chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini api returned empty response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

var quotaDelayPattern = regexp.MustCompile(`(?i)retry (?:after|in) ([0-9]+(?:\.[0-9]+)?)\s*s`)

func isRetryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return retry.IsRetryable(err)
	}

	if apiErr.Code == http.StatusTooManyRequests {
		if delay, ok := quotaDelay(apiErr.Message); ok && delay > maxQuotaWait {
			return false
		}
	}

	return retry.IsRetryableStatus(apiErr.Code)
}

// quotaDelay extracts the wait a quota error asks for.
func quotaDelay(message string) (time.Duration, bool) {
	m := quotaDelayPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

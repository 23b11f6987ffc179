// Package generation wraps the hosted language model behind the
// domain.Generator contract: grounded Q&A over retrieved chunks plus the
// full-transcript analysis modes.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"vidsage/internal/config"
	"vidsage/internal/domain"
	"vidsage/internal/observability"
)

const rateLimitRetryWait = 60 * time.Second

// Client implements domain.Generator against OpenRouter.
type Client struct {
	client  openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a generation client (DI constructor).
func NewClient(cfg *config.OpenRouterConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenRouter API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	}

	return &Client{
		client:  openai.NewClient(opts...),
		model:   cfg.GenerationModel,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, nil
}

// Answer produces a grounded answer from retrieved chunks. Answers the model
// flags as absent from the transcript fail with domain.ErrNotCovered.
func (c *Client) Answer(
	ctx context.Context,
	video *domain.Transcript,
	chunks []domain.ScoredChunk,
	question, language string,
	history []domain.Turn,
) (string, error) {
	prompt := AnswerPrompt(video, chunks, question, language, history)

	answer, err := c.complete(ctx, prompt, 800, 0.1)
	if err != nil {
		return "", err
	}

	if IsNotCovered(answer) {
		return "", domain.ErrNotCovered
	}
	return answer, nil
}

// Summary generates the structured per-language video summary.
func (c *Client) Summary(ctx context.Context, video *domain.Transcript, language string) (string, error) {
	return c.complete(ctx, SummaryPrompt(video, language), 1500, 0.3)
}

// DeepDive generates a thematic analysis of the video.
func (c *Client) DeepDive(ctx context.Context, video *domain.Transcript, language string) (string, error) {
	return c.complete(ctx, DeepDivePrompt(video, language), 2000, 0.3)
}

// ActionPoints extracts concrete action items from the video.
func (c *Client) ActionPoints(ctx context.Context, video *domain.Transcript, language string) (string, error) {
	return c.complete(ctx, ActionPointsPrompt(video, language), 1500, 0.3)
}

// Simplified explains the video, or a topic within it, in simple terms.
func (c *Client) Simplified(ctx context.Context, video *domain.Transcript, language, topic string) (string, error) {
	return c.complete(ctx, SimplifiedPrompt(video, language, topic), 1000, 0.3)
}

// complete sends one chat completion, retrying once when the provider is at
// capacity.
func (c *Client) complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	logger := observability.FromContext(ctx)

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			logger.Warn("generation rate limited, waiting before retry")
			select {
			case <-time.After(rateLimitRetryWait):
			case <-ctx.Done():
				return "", fmt.Errorf("generation: %w", domain.ErrTimeout)
			}
		}

		text, err := c.call(ctx, prompt, maxTokens, temperature)
		if err != nil {
			if errors.Is(err, domain.ErrRateLimited) && attempt == 0 {
				continue
			}
			logger.Error("generation failed", observability.Error(err))
			return "", err
		}
		return text, nil
	}

	return "", fmt.Errorf("generation exhausted retries: %w", domain.ErrRateLimited)
}

func (c *Client) call(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", mapAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion: %w", domain.ErrModel)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// mapAPIError maps provider failures onto the domain taxonomy.
func mapAPIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "overloaded"):
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline"):
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrModel, err)
	}
}

// Package transcript fetches timestamped transcripts through an
// OpenAI-compatible gateway: the multimodal model is asked to watch the video
// and return a structured JSON transcript.
package transcript

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

const extractionPrompt = `You are a professional transcriptionist.
Watch the YouTube video at the provided URL and return a COMPLETE spoken transcript in JSON format.

JSON Structure:
{
  "title": "Video Title",
  "duration": "MM:SS",
  "description": "Short summary",
  "language_original": "Language",
  "transcript": [
    {"timestamp": "0:00", "start_seconds": 0, "text": "Verbatim speech..."},
    {"timestamp": "0:30", "start_seconds": 30, "text": "More speech..."}
  ]
}

Rules:
- Entry every 25-40 seconds.
- Verbatim speech only.
- Return ONLY raw JSON. No markdown backticks.`

// Provider implements domain.TranscriptProvider against OpenRouter.
type Provider struct {
	client     openai.Client
	model      string
	timeout    time.Duration
	maxRetries int
}

// NewProvider creates a transcript provider (DI constructor).
func NewProvider(cfg *config.OpenRouterConfig) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenRouter API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	}

	return &Provider{
		client:     openai.NewClient(opts...),
		model:      cfg.TranscriptionModel,
		timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Fetch retrieves the transcript for a video. Rate limits are retried with
// backoff; all failures carry a domain error tag.
func (p *Provider) Fetch(ctx context.Context, videoID string) (*domain.Transcript, error) {
	logger := observability.FromContext(ctx)
	logger.Info("fetching transcript",
		observability.String("video_id", videoID),
		observability.String("model", p.model))

	prompt := fmt.Sprintf("%s\n\nURL: %s", extractionPrompt, WatchURL(videoID))

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 10 * time.Second
			logger.Warn("transcript fetch rate limited, backing off",
				observability.Int("attempt", attempt),
				observability.Duration("backoff", backoff))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, fmt.Errorf("transcript fetch for %s: %w", videoID, domain.ErrTimeout)
			}
		}

		raw, err := p.complete(ctx, prompt)
		if err != nil {
			lastErr = err
			if errors.Is(err, domain.ErrRateLimited) {
				continue
			}
			return nil, fmt.Errorf("transcript fetch for %s: %w", videoID, err)
		}

		transcript, parseErr := ParseReply(videoID, raw)
		if parseErr != nil {
			return nil, fmt.Errorf("transcript fetch for %s: %w", videoID, classifyReply(raw, parseErr))
		}

		logger.Info("transcript fetched",
			observability.String("video_id", videoID),
			observability.String("title", transcript.Title),
			observability.Int("segments", len(transcript.Segments)))
		return transcript, nil
	}

	return nil, fmt.Errorf("transcript fetch for %s exhausted retries: %w", videoID, lastErr)
}

func (p *Provider) complete(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		return "", classifyAPIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion: %w", domain.ErrModel)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyAPIError maps transport failures onto the domain taxonomy.
func classifyAPIError(err error) error {
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

// classifyReply inspects an unparseable model reply for known refusal
// reasons before falling back to the parse error.
func classifyReply(raw string, parseErr error) error {
	msg := strings.ToLower(raw)
	switch {
	case strings.Contains(msg, "age restricted"), strings.Contains(msg, "age-restricted"):
		return domain.ErrAgeRestricted
	case strings.Contains(msg, "unavailable"), strings.Contains(msg, "private video"),
		strings.Contains(msg, "video does not exist"):
		return domain.ErrVideoUnavailable
	case strings.Contains(msg, "no captions"), strings.Contains(msg, "no speech"):
		return domain.ErrNoCaptions
	default:
		return parseErr
	}
}

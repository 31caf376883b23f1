// Package gemini implements the multimodal Provider: the raw image is
// sent to Google Gemini together with the extraction instruction, no
// OCR step involved.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"invoice-parser/internal/common"
	"invoice-parser/internal/llm"
)

// Config holds the Gemini coordinates, supplied at construction time.
type Config struct {
	APIKey string
	Model  string
}

// Client sends the image inline to Gemini. An optional fallback
// provider (an OCR+text-mode path) may be configured; it is invoked
// only for recoverable failures — client initialization errors,
// generation/transport errors, empty responses — never for a missing
// API key, which is a configuration fault the caller must fix.
type Client struct {
	cfg      Config
	fallback llm.Provider
	logger   *slog.Logger
}

func New(cfg Config, fallback llm.Provider, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = common.DefaultGeminiModel
	}
	return &Client{cfg: cfg, fallback: fallback, logger: logger}
}

func (c *Client) Call(ctx context.Context, image []byte, opts common.Options) (string, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = c.cfg.APIKey
	}
	if apiKey == "" {
		return "", common.NewConfigError("google API key not provided (option or GOOGLE_API_KEY)", nil)
	}

	model := opts.Model
	if model == "" {
		model = c.cfg.Model
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = common.DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := genai.NewClient(callCtx, option.WithAPIKey(apiKey))
	if err != nil {
		return c.recover(ctx, image, opts, fmt.Errorf("creating gemini client: %w", err))
	}
	defer client.Close()

	// genai.ImageData wants the format suffix, not the full MIME type.
	format := strings.TrimPrefix(opts.MIMEType, "image/")
	if format == "" {
		format = "png"
	}

	c.logger.Info("gemini.call", "model", model, "mime", opts.MIMEType, "image_bytes", len(image))

	resp, err := client.GenerativeModel(model).GenerateContent(callCtx,
		genai.ImageData(format, image),
		genai.Text(llm.BuildImagePrompt()),
	)
	if err != nil {
		return c.recover(ctx, image, opts, fmt.Errorf("generating content: %w", err))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return c.recover(ctx, image, opts, fmt.Errorf("no response from gemini"))
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

// recover applies the fallback policy. Without a configured fallback
// the original failure propagates as a transport error.
func (c *Client) recover(ctx context.Context, image []byte, opts common.Options, cause error) (string, error) {
	if c.fallback == nil {
		return "", common.WrapStage(common.StageTransport, "gemini", cause)
	}
	c.logger.Warn("gemini.fallback", "cause", cause)
	return c.fallback.Call(ctx, image, opts)
}

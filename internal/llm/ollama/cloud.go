package ollama

import (
	"context"
	"log/slog"

	"invoice-parser/internal/common"
	"invoice-parser/internal/llm"
)

// Cloud talks to a hosted ollama-compatible backend. The base URL is
// required — a missing one fails before any OCR or network I/O, so the
// caller sees a configuration error instead of an opaque downstream
// failure. The bearer token is optional.
type Cloud struct {
	cfg    Config
	rec    llm.TextRecognizer
	logger *slog.Logger
}

func NewCloud(cfg Config, rec llm.TextRecognizer, logger *slog.Logger) *Cloud {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloud{cfg: cfg, rec: rec, logger: logger}
}

func (c *Cloud) Call(ctx context.Context, image []byte, opts common.Options) (string, error) {
	baseURL := c.cfg.baseURL(opts)
	if baseURL == "" {
		return "", common.NewConfigError("ollama cloud base URL not provided (option or OLLAMA_CLOUD_URL)", nil)
	}

	text, err := runOCR(ctx, c.rec, image, opts, c.logger)
	if err != nil {
		return "", err
	}

	c.logger.Info("ollama.cloud.call",
		"model", c.cfg.model(opts, common.DefaultModel),
		"has_api_key", c.cfg.apiKey(opts) != "",
		"text_bytes", len(text),
	)
	return generate(ctx, baseURL, c.cfg.apiKey(opts), c.cfg.model(opts, common.DefaultModel),
		llm.BuildTextPrompt(text), nil, opts.Timeout, c.logger)
}

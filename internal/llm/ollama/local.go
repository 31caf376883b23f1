package ollama

import (
	"context"
	"log/slog"

	"invoice-parser/internal/common"
	"invoice-parser/internal/llm"
)

// Local talks to an unauthenticated ollama instance, by default on
// http://localhost:11434. It runs OCR first and sends the recognized
// text in a text-mode prompt.
type Local struct {
	cfg    Config
	rec    llm.TextRecognizer
	logger *slog.Logger
}

func NewLocal(cfg Config, rec llm.TextRecognizer, logger *slog.Logger) *Local {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = common.DefaultLocalBaseURL
	}
	return &Local{cfg: cfg, rec: rec, logger: logger}
}

func (c *Local) Call(ctx context.Context, image []byte, opts common.Options) (string, error) {
	text, err := runOCR(ctx, c.rec, image, opts, c.logger)
	if err != nil {
		return "", err
	}

	c.logger.Info("ollama.local.call", "model", c.cfg.model(opts, common.DefaultModel), "text_bytes", len(text))
	return generate(ctx, c.cfg.baseURL(opts), "", c.cfg.model(opts, common.DefaultModel),
		llm.BuildTextPrompt(text), nil, opts.Timeout, c.logger)
}

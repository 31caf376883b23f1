package ollama

import (
	"context"
	"encoding/base64"
	"log/slog"

	"invoice-parser/internal/common"
	"invoice-parser/internal/llm"
)

// Legacy is the single-shot path: OCR and extraction combined in one
// vision-model call. The image goes to the backend as base64 and the
// broad prompt lets the model pick the invoice or label/device shape.
type Legacy struct {
	cfg    Config
	logger *slog.Logger
}

func NewLegacy(cfg Config, logger *slog.Logger) *Legacy {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = common.DefaultLocalBaseURL
	}
	return &Legacy{cfg: cfg, logger: logger}
}

func (c *Legacy) Call(ctx context.Context, image []byte, opts common.Options) (string, error) {
	model := c.cfg.model(opts, common.DefaultLegacyModel)
	c.logger.Info("ollama.legacy.call", "model", model, "image_bytes", len(image))

	b64 := base64.StdEncoding.EncodeToString(image)
	return generate(ctx, c.cfg.baseURL(opts), "", model,
		llm.BuildLegacyPrompt(), []string{b64}, opts.Timeout, c.logger)
}

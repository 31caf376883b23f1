// Package pipeline orchestrates one extraction: image buffer in,
// structured document out. It dispatches to the chosen provider
// adapter, normalizes the model's free-form response, and tags every
// failure with the stage that produced it.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"invoice-parser/internal/common"
	"invoice-parser/internal/llm"
	"invoice-parser/internal/llm/gemini"
	"invoice-parser/internal/llm/ollama"
	"invoice-parser/internal/ocr"
)

// Provider names accepted by Extract.
const (
	ProviderLocal      = "local"
	ProviderCloud      = "cloud"
	ProviderMultimodal = "multimodal"
	ProviderGemini     = "gemini" // alias for multimodal
	ProviderLegacy     = "legacy"
)

type entry struct {
	provider    llm.Provider
	legacyShape bool
}

// Pipeline owns the provider registry. All entries are constructed
// once from the loaded configuration; everything per-request flows
// through Options.
type Pipeline struct {
	cfg       *common.Config
	providers map[string]entry
	legacy    llm.Provider
	logger    *slog.Logger
}

func New(cfg *common.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	rec := ocr.NewRecognizer(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		TessdataDir: cfg.OCR.TessdataDir,
		Language:    cfg.OCR.Language,
	}, logger)

	local := ollama.NewLocal(ollama.Config{BaseURL: cfg.LLM.LocalBaseURL}, rec, logger)
	cloud := ollama.NewCloud(ollama.Config{
		BaseURL: cfg.LLM.CloudBaseURL,
		APIKey:  cfg.LLM.CloudAPIKey,
	}, rec, logger)
	legacy := ollama.NewLegacy(ollama.Config{BaseURL: cfg.LLM.LocalBaseURL}, logger)

	var geminiFallback llm.Provider
	if cfg.LLM.GeminiFallback {
		geminiFallback = local
	}
	multimodal := gemini.New(gemini.Config{APIKey: cfg.LLM.GoogleAPIKey}, geminiFallback, logger)

	p := &Pipeline{
		cfg:    cfg,
		legacy: legacy,
		logger: logger,
		providers: map[string]entry{
			ProviderLocal:      {provider: local},
			ProviderCloud:      {provider: cloud},
			ProviderMultimodal: {provider: multimodal},
			ProviderGemini:     {provider: multimodal},
			ProviderLegacy:     {provider: legacy, legacyShape: true},
		},
	}
	return p
}

// Register adds or replaces a provider under the given name. The
// registry is the single auditable list of supported backends;
// legacyShape marks providers whose results may use the label/device
// variant instead of the invoice schema.
func (p *Pipeline) Register(name string, prov llm.Provider, legacyShape bool) {
	p.providers[name] = entry{provider: prov, legacyShape: legacyShape}
	if name == ProviderLegacy {
		p.legacy = prov
	}
}

// Extract runs the full chain for one request. Unknown provider names
// and empty buffers fail before any adapter work happens.
func (p *Pipeline) Extract(ctx context.Context, image []byte, provider string, opts common.Options) (llm.Document, error) {
	rid := uuid.New().String()
	start := time.Now()

	if len(image) == 0 {
		return llm.Document{}, common.NewPreconditionError("empty image buffer", common.ErrNoImage)
	}
	e, ok := p.providers[provider]
	if !ok {
		return llm.Document{}, common.NewConfigError(fmt.Sprintf("unknown provider %q", provider), common.ErrUnknownProvider)
	}

	resolved := common.ResolveOptions(opts, p.cfg)

	p.logger.Info("extract.start",
		"req_id", rid,
		"provider", provider,
		"image_bytes", len(image),
		"language", resolved.Language,
	)

	content, err := e.provider.Call(ctx, image, resolved)
	if err != nil {
		p.logger.Error("extract.provider_error",
			"req_id", rid, "provider", provider, "stage", common.StageOf(err), "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Document{}, err
	}

	raw, err := llm.ExtractJSON(content)
	if err != nil {
		p.logger.Error("extract.normalize_error",
			"req_id", rid, "provider", provider, "error", err, "content_bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Document{}, common.WrapStage(common.StageNormalization, "normalize response", err)
	}

	doc := llm.Document{Provider: provider}
	if e.legacyShape {
		label, norm, err := llm.DecodeLegacy(raw)
		if err != nil {
			return llm.Document{}, common.WrapStage(common.StageNormalization, "decode legacy result", err)
		}
		doc.Label = label
		doc.Raw = norm
	} else {
		invoice, norm, err := llm.DecodeInvoice(raw)
		if err != nil {
			return llm.Document{}, common.WrapStage(common.StageNormalization, "decode invoice result", err)
		}
		doc.Invoice = invoice
		doc.Raw = norm
	}

	p.logger.Info("extract.ok",
		"req_id", rid,
		"provider", provider,
		"json_bytes", len(doc.Raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// ExtractText runs the legacy single-shot provider and returns the
// model's raw textual content without JSON normalization.
func (p *Pipeline) ExtractText(ctx context.Context, image []byte, opts common.Options) (string, error) {
	if len(image) == 0 {
		return "", common.NewPreconditionError("empty image buffer", common.ErrNoImage)
	}
	return p.legacy.Call(ctx, image, common.ResolveOptions(opts, p.cfg))
}

// Package ollama implements the Provider contract against the ollama
// /api/generate HTTP API: a local unauthenticated backend, a cloud
// backend with bearer auth, and the legacy single-shot vision path.
package ollama

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"invoice-parser/internal/common"
	"invoice-parser/internal/llm"
	"invoice-parser/internal/ocr"
)

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Stream bool     `json:"stream"`
	Images []string `json:"images,omitempty"`
}

// generate POSTs the request body to <base>/api/generate and returns
// the model's textual content. The base URL's trailing slash is
// stripped before path concatenation. The call is bounded by timeout.
func generate(ctx context.Context, baseURL, apiKey, model, prompt string, images []string, timeout time.Duration, logger *slog.Logger) (string, error) {
	url := strings.TrimRight(baseURL, "/") + "/api/generate"

	var headers map[string]string
	if apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + apiKey}
	}

	if timeout <= 0 {
		timeout = common.DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body := generateRequest{Model: model, Prompt: prompt, Stream: false, Images: images}
	raw, _, err := llm.SendJSON(callCtx, &http.Client{Timeout: timeout}, url, body, headers, logger)
	if err != nil {
		return "", common.WrapStage(common.StageTransport, "ollama generate", err)
	}
	return llm.DecodeResponseContent(raw), nil
}

// runOCR turns the image buffer into text via the shared recognizer,
// wiring verbose progress into the structured log.
func runOCR(ctx context.Context, rec llm.TextRecognizer, image []byte, opts common.Options, logger *slog.Logger) (string, error) {
	text, err := rec.Recognize(ctx, image, ocr.RecognizeOptions{
		Language: opts.Language,
		Enhance:  opts.Enhance,
		Verbose:  opts.Verbose,
		Progress: func(status string) {
			logger.Info("ocr.progress", "status", status)
		},
	})
	if err != nil {
		return "", common.WrapStage(common.StageRecognition, "recognize text", err)
	}
	return text, nil
}

package ollama

import (
	"invoice-parser/internal/common"
)

// Config holds the service coordinates for an ollama-compatible
// backend, supplied at construction time. Per-request options can
// still override the base URL and model.
type Config struct {
	BaseURL string // e.g. http://localhost:11434; required for Cloud
	APIKey  string // optional bearer token (Cloud only)
	Model   string // default model when the request does not name one
}

func (c Config) baseURL(opts common.Options) string {
	if opts.BaseURL != "" {
		return opts.BaseURL
	}
	return c.BaseURL
}

func (c Config) apiKey(opts common.Options) string {
	if opts.APIKey != "" {
		return opts.APIKey
	}
	return c.APIKey
}

func (c Config) model(opts common.Options, fallback string) string {
	if opts.Model != "" {
		return opts.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return fallback
}

package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Built-in defaults. Anything here can be overridden by environment or
// by an explicit per-request option (option > environment > default).
const (
	DefaultLocalBaseURL = "http://localhost:11434"
	DefaultModel        = "gemma3"
	DefaultLegacyModel  = "deepseek-ocr"
	DefaultGeminiModel  = "gemini-2.5-flash"
	DefaultLanguage     = "eng"
	DefaultMIMEType     = "image/png"
	DefaultTimeout      = 120 * time.Second
)

// Config holds all application configuration, loaded from the
// environment exactly once. Adapters never read env themselves.
type Config struct {
	Server ServerConfig
	OCR    OCRConfig
	LLM    LLMConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr      string
	StaticDir string
}

// OCRConfig holds recognizer configuration.
type OCRConfig struct {
	Tesseract   string
	TessdataDir string
	Language    string
}

// LLMConfig holds inference backend coordinates and credentials.
type LLMConfig struct {
	LocalBaseURL string
	CloudBaseURL string
	CloudAPIKey  string
	GoogleAPIKey string
	Timeout      time.Duration

	// GeminiFallback enables the OCR+text-mode fallback when the
	// multimodal call fails recoverably. Off unless set explicitly.
	GeminiFallback bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":" + getEnv("PORT", "3000"),
			StaticDir: getEnv("STATIC_DIR", "public"),
		},
		OCR: OCRConfig{
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			Language:    getEnv("OCR_LANGUAGE", DefaultLanguage),
		},
		LLM: LLMConfig{
			LocalBaseURL: getEnv("OLLAMA_LOCAL_URL", DefaultLocalBaseURL),
			CloudBaseURL: getEnv("OLLAMA_CLOUD_URL", ""),
			CloudAPIKey:  getEnv("OLLAMA_API_KEY", ""),
			GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
			Timeout:      getEnvAsDuration("LLM_TIMEOUT", DefaultTimeout),

			GeminiFallback: getEnvAsBool("GEMINI_FALLBACK", false),
		},
	}
}

// Options is the per-request configuration bag. A zero value means
// "not set"; ResolveOptions fills the gaps.
type Options struct {
	Model    string
	Language string
	BaseURL  string
	APIKey   string
	MIMEType string
	Timeout  time.Duration
	Verbose  bool
	Enhance  bool
}

// ResolveOptions merges explicit per-request options with the loaded
// configuration and built-in defaults, producing an immutable value
// that is passed explicitly through the call chain. BaseURL and APIKey
// stay empty here when neither option nor environment provides them;
// adapters that require them fail fast at call time.
func ResolveOptions(opts Options, cfg *Config) Options {
	out := opts
	// Model is left empty when unset: each provider has its own default.
	if out.Language == "" {
		out.Language = cfg.OCR.Language
	}
	if out.Language == "" {
		out.Language = DefaultLanguage
	}
	if out.MIMEType == "" {
		out.MIMEType = DefaultMIMEType
	}
	if out.Timeout <= 0 {
		out.Timeout = cfg.LLM.Timeout
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	out.BaseURL = strings.TrimSpace(out.BaseURL)
	out.APIKey = strings.TrimSpace(out.APIKey)
	return out
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

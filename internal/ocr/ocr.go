package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config controls how the recognizer invokes tesseract.
type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language    string // default "eng"
	TessdataDir string

	PSM int // e.g., 6 is good for a uniform block of text
	OEM int // 1 = LSTM; leave 0 to use the engine default
}

// RecognizeOptions are per-call overrides.
type RecognizeOptions struct {
	Language string
	Enhance  bool
	Verbose  bool
	// Progress receives status lines when Verbose is set. It must never
	// influence control flow; a nil sink is fine.
	Progress func(status string)
}

// Recognizer converts an image buffer into plain text via tesseract.
// The binary reads the image from stdin, so no temp files are needed
// and concurrent calls are independent.
type Recognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRecognizer(cfg Config, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Recognizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize runs OCR on the buffer and returns normalized text. An
// empty string is a valid result (blank or unreadable image); errors
// are reserved for buffers the engine cannot process at all.
func (r *Recognizer) Recognize(ctx context.Context, image []byte, opts RecognizeOptions) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("empty image buffer")
	}
	start := time.Now()

	lang := opts.Language
	if lang == "" {
		lang = r.cfg.Language
	}
	progress := func(status string) {
		if opts.Verbose && opts.Progress != nil {
			opts.Progress(status)
		}
	}

	if opts.Enhance {
		progress("preprocess")
		enhanced, err := Enhance(image)
		if err != nil {
			// Preprocessing is best-effort; fall back to the raw buffer.
			r.logger.Warn("ocr preprocess failed, using raw image", "error", err)
		} else {
			image = enhanced
		}
	}

	progress("recognize")
	args := []string{"-", "stdout", "-l", lang}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", r.cfg.PSM))
	}
	if r.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", r.cfg.OEM))
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}

	out, errb, err := r.runner.Run(ctx, bytes.NewReader(image), r.cfg.Tesseract, args...)
	if err != nil {
		r.logger.Error("tesseract failed", "language", lang, "stderr_bytes", len(errb), "error", err)
		return "", fmt.Errorf("tesseract: %w", err)
	}

	txt := Normalize(string(out))
	progress("done")

	r.logger.Debug("ocr extracted text",
		"language", lang,
		"image_bytes", len(image),
		"text_bytes", len(txt),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return txt, nil
}

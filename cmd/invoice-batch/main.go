// invoice-batch runs the extraction pipeline over a directory of
// images and writes the results to an XLSX workbook.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"invoice-parser/constants"
	"invoice-parser/internal/common"
	"invoice-parser/internal/export"
	"invoice-parser/internal/pipeline"
)

func main() {
	var (
		dir      = flag.String("dir", ".", "directory of invoice images")
		out      = flag.String("out", "invoices.xlsx", "output workbook path")
		provider = flag.String("provider", pipeline.ProviderLocal, "provider: local | cloud | multimodal | legacy")
		model    = flag.String("model", "", "model name override")
		language = flag.String("language", "", "OCR language override")
		enhance  = flag.Bool("enhance", false, "preprocess images before OCR")
		verbose  = flag.Bool("verbose", false, "report OCR progress")
	)
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	p := pipeline.New(cfg, logger)
	opts := common.Options{
		Model:    *model,
		Language: *language,
		Enhance:  *enhance,
		Verbose:  *verbose,
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("read directory failed", "dir", *dir, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var results []export.Result
	start := time.Now()

	for _, entry := range entries {
		if entry.IsDir() || !constants.IsAllowedExt(filepath.Ext(entry.Name())) {
			continue
		}
		path := filepath.Join(*dir, entry.Name())

		image, err := os.ReadFile(path)
		if err != nil {
			results = append(results, export.Result{File: entry.Name(), Err: err})
			continue
		}

		doc, err := p.Extract(ctx, image, *provider, opts)
		if err != nil {
			logger.Warn("extraction failed", "file", entry.Name(), "error", err)
			results = append(results, export.Result{File: entry.Name(), Err: err})
			continue
		}
		results = append(results, export.Result{File: entry.Name(), Invoice: doc.Invoice})
	}

	if len(results) == 0 {
		logger.Error("no image files found", "dir", *dir)
		os.Exit(1)
	}

	book, err := export.NewService(logger).WriteInvoicesXLSX(results)
	if err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, book, 0o644); err != nil {
		logger.Error("write output failed", "path", *out, "error", err)
		os.Exit(1)
	}

	logger.Info("batch done",
		"files", len(results),
		"out", *out,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

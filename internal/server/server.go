// Package server exposes the extraction pipeline over HTTP: multipart
// uploads in, extracted JSON out.
package server

import (
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"invoice-parser/constants"
	"invoice-parser/internal/common"
	"invoice-parser/internal/pipeline"
)

type Server struct {
	cfg      *common.Config
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
	ready    atomic.Bool
}

func New(cfg *common.Config, p *pipeline.Pipeline, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, pipeline: p, logger: logger}
}

// SetReady flips the readiness gate. Until it is set, /extract-text
// answers 503 so clients retry instead of queuing on a cold backend.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = constants.MaxUploadBytes

	if st, err := os.Stat(s.cfg.Server.StaticDir); err == nil && st.IsDir() {
		r.Static("/static", s.cfg.Server.StaticDir)
		r.StaticFile("/", s.cfg.Server.StaticDir+"/index.html")
	}

	r.POST("/parse", s.handleParse(pipeline.ProviderLocal))
	r.POST("/parse/ollama-local", s.handleParse(pipeline.ProviderLocal))
	r.POST("/parse/ollama-cloud", s.handleParse(pipeline.ProviderCloud))
	r.POST("/parse/gemini", s.handleParse(pipeline.ProviderMultimodal))
	r.POST("/parse/legacy", s.handleParse(pipeline.ProviderLegacy))
	r.POST("/extract-text", s.handleExtractText)

	return r
}

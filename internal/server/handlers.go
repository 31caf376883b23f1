package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-parser/constants"
	"invoice-parser/internal/common"
)

// handleParse returns the handler for one provider route. The image
// arrives in the multipart field "invoice"; per-request options come
// from the remaining form fields.
func (s *Server) handleParse(provider string) gin.HandlerFunc {
	return func(c *gin.Context) {
		image, mimeType, ok := s.readUpload(c, "invoice")
		if !ok {
			return
		}

		opts := optionsFromForm(c)
		if opts.MIMEType == "" {
			opts.MIMEType = mimeType
		}

		doc, err := s.pipeline.Extract(c.Request.Context(), image, provider, opts)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json", doc.Raw)
	}
}

// handleExtractText runs the legacy single-shot text extraction. The
// image arrives in the multipart field "image".
func (s *Server) handleExtractText(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is not ready yet, please try again in a moment"})
		return
	}

	image, mimeType, ok := s.readUpload(c, "image")
	if !ok {
		return
	}

	opts := optionsFromForm(c)
	if opts.MIMEType == "" {
		opts.MIMEType = mimeType
	}

	text, err := s.pipeline.ExtractText(c.Request.Context(), image, opts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"extractedText": text})
}

// readUpload pulls the uploaded image out of the multipart form,
// enforcing the size cap and the image/* type gate. On failure it
// writes the 400 response itself and returns ok=false.
func (s *Server) readUpload(c *gin.Context, field string) ([]byte, string, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded in field `" + field + "`"})
		return nil, "", false
	}
	if fh.Size > constants.MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return nil, "", false
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType != "" && !strings.HasPrefix(mimeType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image files are allowed"})
		return nil, "", false
	}

	buf, err := readAll(fh)
	if err != nil {
		s.logger.Error("upload read failed", "field", field, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return nil, "", false
	}
	return buf, mimeType, true
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// optionsFromForm merges recognized form fields into per-request
// options. Unknown fields are ignored.
func optionsFromForm(c *gin.Context) common.Options {
	opts := common.Options{
		Model:    c.PostForm("model"),
		Language: c.PostForm("language"),
		BaseURL:  c.PostForm("baseUrl"),
		APIKey:   c.PostForm("apiKey"),
		MIMEType: c.PostForm("mimeType"),
	}
	if v := c.PostForm("timeout"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			opts.Timeout = d
		} else if secs, err := strconv.Atoi(v); err == nil {
			opts.Timeout = time.Duration(secs) * time.Second
		}
	}
	if v := c.PostForm("verbose"); v != "" {
		opts.Verbose, _ = strconv.ParseBool(v)
	}
	if v := c.PostForm("enhance"); v != "" {
		opts.Enhance, _ = strconv.ParseBool(v)
	}
	return opts
}

// writeError maps stage-tagged pipeline errors onto HTTP statuses:
// client faults (precondition, configuration) are 400, everything else
// is a processing failure.
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch common.StageOf(err) {
	case common.StagePrecondition, common.StageConfig:
		status = http.StatusBadRequest
	}
	s.logger.Error("request failed", "stage", common.StageOf(err), "status", status, "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}

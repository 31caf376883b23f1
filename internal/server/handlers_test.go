package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"invoice-parser/internal/common"
	"invoice-parser/internal/pipeline"
)

type stubProvider struct {
	content string
	err     error
	opts    common.Options
	calls   int
}

func (s *stubProvider) Call(_ context.Context, _ []byte, opts common.Options) (string, error) {
	s.calls++
	s.opts = opts
	return s.content, s.err
}

func multipartBody(field, filename, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(h)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(data)
	Expect(err).NotTo(HaveOccurred())
	for k, v := range fields {
		Expect(w.WriteField(k, v)).To(Succeed())
	}
	Expect(w.Close()).To(Succeed())
	return body, w.FormDataContentType()
}

var _ = Describe("Server", func() {
	var (
		cfg    *common.Config
		p      *pipeline.Pipeline
		srv    *Server
		router *gin.Engine
		stub   *stubProvider
		rr     *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		cfg = &common.Config{
			Server: common.ServerConfig{StaticDir: "does-not-exist"},
			OCR:    common.OCRConfig{Language: common.DefaultLanguage},
			LLM:    common.LLMConfig{LocalBaseURL: common.DefaultLocalBaseURL, Timeout: common.DefaultTimeout},
		}
		p = pipeline.New(cfg, nil)
		stub = &stubProvider{content: `{"invoice_number":"123","total_amount":"45.00"}`}
		p.Register(pipeline.ProviderLocal, stub, false)
		srv = New(cfg, p, nil)
		srv.SetReady(true)
		router = srv.Router()
		rr = httptest.NewRecorder()
	})

	Describe("POST /parse", func() {
		It("should return 400 when no file is uploaded", func() {
			req := httptest.NewRequest(http.MethodPost, "/parse", nil)
			router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(rr.Body.String()).To(ContainSubstring("no file uploaded in field `invoice`"))
		})

		It("should return 400 for a non-image upload", func() {
			body, ct := multipartBody("invoice", "doc.pdf", "application/pdf", []byte("%PDF"), nil)
			req := httptest.NewRequest(http.MethodPost, "/parse", body)
			req.Header.Set("Content-Type", ct)
			router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(rr.Body.String()).To(ContainSubstring("only image files are allowed"))
		})

		It("should return the extracted document as JSON", func() {
			body, ct := multipartBody("invoice", "inv.png", "image/png", []byte("img-bytes"), nil)
			req := httptest.NewRequest(http.MethodPost, "/parse", body)
			req.Header.Set("Content-Type", ct)
			router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusOK))
			var m map[string]any
			Expect(json.Unmarshal(rr.Body.Bytes(), &m)).To(Succeed())
			Expect(m).To(HaveKeyWithValue("invoice_number", "123"))
			Expect(m).To(HaveKeyWithValue("total_amount", "45.00"))
			Expect(m).To(HaveKeyWithValue("vendor_name", ""))
			Expect(m["line_items"]).To(BeEmpty())
		})

		It("should pass form options through to the provider", func() {
			body, ct := multipartBody("invoice", "inv.png", "image/png", []byte("img"), map[string]string{
				"model":    "llama3.2",
				"language": "deu",
				"timeout":  "30s",
			})
			req := httptest.NewRequest(http.MethodPost, "/parse", body)
			req.Header.Set("Content-Type", ct)
			router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusOK))
			Expect(stub.opts.Model).To(Equal("llama3.2"))
			Expect(stub.opts.Language).To(Equal("deu"))
			Expect(stub.opts.Timeout.Seconds()).To(Equal(30.0))
		})

		It("should default the MIME type from the uploaded file", func() {
			body, ct := multipartBody("invoice", "inv.jpg", "image/jpeg", []byte("img"), nil)
			req := httptest.NewRequest(http.MethodPost, "/parse", body)
			req.Header.Set("Content-Type", ct)
			router.ServeHTTP(rr, req)

			Expect(stub.opts.MIMEType).To(Equal("image/jpeg"))
		})
	})

	Describe("POST /parse/ollama-cloud", func() {
		It("should report a missing base URL as a client fault", func() {
			body, ct := multipartBody("invoice", "inv.png", "image/png", []byte("img"), nil)
			req := httptest.NewRequest(http.MethodPost, "/parse/ollama-cloud", body)
			req.Header.Set("Content-Type", ct)
			router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(rr.Body.String()).To(ContainSubstring("base URL"))
		})
	})

	Describe("POST /extract-text", func() {
		BeforeEach(func() {
			p.Register(pipeline.ProviderLegacy, &stubProvider{content: "MODEL X200\nSERIAL 991"}, true)
			router = srv.Router()
		})

		It("should return 503 before the server is ready", func() {
			srv.SetReady(false)
			body, ct := multipartBody("image", "label.png", "image/png", []byte("img"), nil)
			req := httptest.NewRequest(http.MethodPost, "/extract-text", body)
			req.Header.Set("Content-Type", ct)
			router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusServiceUnavailable))
		})

		It("should return 400 when no file is uploaded", func() {
			req := httptest.NewRequest(http.MethodPost, "/extract-text", nil)
			router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusBadRequest))
			Expect(rr.Body.String()).To(ContainSubstring("no file uploaded in field `image`"))
		})

		It("should return the extracted text", func() {
			body, ct := multipartBody("image", "label.png", "image/png", []byte("img"), nil)
			req := httptest.NewRequest(http.MethodPost, "/extract-text", body)
			req.Header.Set("Content-Type", ct)
			router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusOK))
			var resp map[string]string
			Expect(json.Unmarshal(rr.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp).To(HaveKeyWithValue("extractedText", "MODEL X200\nSERIAL 991"))
		})
	})

	Describe("processing failures", func() {
		It("should map provider transport errors to 500", func() {
			stub.err = common.WrapStage(common.StageTransport, "backend down", context.DeadlineExceeded)
			body, ct := multipartBody("invoice", "inv.png", "image/png", []byte("img"), nil)
			req := httptest.NewRequest(http.MethodPost, "/parse", body)
			req.Header.Set("Content-Type", ct)
			router.ServeHTTP(rr, req)

			Expect(rr.Code).To(Equal(http.StatusInternalServerError))
			Expect(rr.Body.String()).To(ContainSubstring("error"))
		})
	})
})

package common_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"invoice-parser/internal/common"
)

var _ = Describe("ResolveOptions", func() {
	var cfg *common.Config

	BeforeEach(func() {
		cfg = &common.Config{
			OCR: common.OCRConfig{Language: "deu"},
			LLM: common.LLMConfig{Timeout: 45 * time.Second},
		}
	})

	It("should prefer explicit options over configuration", func() {
		out := common.ResolveOptions(common.Options{
			Language: "fra",
			Timeout:  5 * time.Second,
		}, cfg)

		Expect(out.Language).To(Equal("fra"))
		Expect(out.Timeout).To(Equal(5 * time.Second))
	})

	It("should fall back to configuration when options are unset", func() {
		out := common.ResolveOptions(common.Options{}, cfg)

		Expect(out.Language).To(Equal("deu"))
		Expect(out.Timeout).To(Equal(45 * time.Second))
	})

	It("should fall back to built-in defaults when configuration is empty", func() {
		out := common.ResolveOptions(common.Options{}, &common.Config{})

		Expect(out.Language).To(Equal(common.DefaultLanguage))
		Expect(out.MIMEType).To(Equal(common.DefaultMIMEType))
		Expect(out.Timeout).To(Equal(common.DefaultTimeout))
	})

	It("should leave the model empty for provider-specific defaulting", func() {
		out := common.ResolveOptions(common.Options{}, cfg)
		Expect(out.Model).To(BeEmpty())
	})

	It("should leave base URL and API key empty when nothing provides them", func() {
		out := common.ResolveOptions(common.Options{}, cfg)
		Expect(out.BaseURL).To(BeEmpty())
		Expect(out.APIKey).To(BeEmpty())
	})

	It("should trim whitespace from base URL and API key", func() {
		out := common.ResolveOptions(common.Options{
			BaseURL: "  https://ollama.example.com ",
			APIKey:  " secret\n",
		}, cfg)

		Expect(out.BaseURL).To(Equal("https://ollama.example.com"))
		Expect(out.APIKey).To(Equal("secret"))
	})
})

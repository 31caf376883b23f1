package gemini_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"invoice-parser/internal/common"
	"invoice-parser/internal/llm/gemini"
)

type fallbackProvider struct {
	content string
	err     error
	calls   int
	image   []byte
}

func (f *fallbackProvider) Call(_ context.Context, image []byte, _ common.Options) (string, error) {
	f.calls++
	f.image = image
	return f.content, f.err
}

var _ = Describe("Client", func() {
	var (
		fallback *fallbackProvider
		image    []byte
		opts     common.Options
	)

	BeforeEach(func() {
		fallback = &fallbackProvider{content: `{"invoice_number":"F-1"}`}
		image = []byte("image-bytes")
		opts = common.Options{MIMEType: "image/png", Timeout: time.Second}
	})

	Context("when no API key is available", func() {
		It("should fail fast with a configuration error", func() {
			client := gemini.New(gemini.Config{}, nil, nil)

			_, err := client.Call(context.Background(), image, opts)

			Expect(err).To(HaveOccurred())
			Expect(common.StageOf(err)).To(Equal(common.StageConfig))
			Expect(err.Error()).To(ContainSubstring("google API key not provided"))
		})

		It("should never invoke the fallback for a missing key", func() {
			client := gemini.New(gemini.Config{}, fallback, nil)

			_, err := client.Call(context.Background(), image, opts)

			Expect(err).To(HaveOccurred())
			Expect(fallback.calls).To(BeZero())
		})
	})

	Context("when the generation call fails", func() {
		// A cancelled context makes the upstream call fail without
		// touching the network, which is exactly the recoverable
		// failure class the fallback policy covers.
		var cancelled context.Context

		BeforeEach(func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			cancelled = ctx
		})

		It("should surface a transport error without a fallback", func() {
			client := gemini.New(gemini.Config{APIKey: "test-key"}, nil, nil)

			_, err := client.Call(cancelled, image, opts)

			Expect(err).To(HaveOccurred())
			Expect(common.StageOf(err)).To(Equal(common.StageTransport))
		})

		It("should hand the same image to the configured fallback", func() {
			client := gemini.New(gemini.Config{APIKey: "test-key"}, fallback, nil)

			content, err := client.Call(cancelled, image, opts)

			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal(`{"invoice_number":"F-1"}`))
			Expect(fallback.calls).To(Equal(1))
			Expect(fallback.image).To(Equal(image))
		})

		It("should propagate a fallback failure as-is", func() {
			fallback.err = common.NewConfigError("ollama base URL not provided", nil)
			client := gemini.New(gemini.Config{APIKey: "test-key"}, fallback, nil)

			_, err := client.Call(cancelled, image, opts)

			Expect(err).To(HaveOccurred())
			Expect(common.StageOf(err)).To(Equal(common.StageConfig))
		})
	})
})

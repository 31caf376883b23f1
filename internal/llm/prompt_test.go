package llm

import (
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BuildTextPrompt", func() {
	var prompt string

	BeforeEach(func() {
		prompt = BuildTextPrompt("Invoice #123, Total: 45.00")
	})

	It("should embed the recognized text", func() {
		Expect(prompt).To(ContainSubstring("Invoice Text:\nInvoice #123, Total: 45.00"))
	})

	It("should end with the JSON cue", func() {
		Expect(strings.HasSuffix(prompt, "JSON:")).To(BeTrue())
	})

	It("should enumerate every schema field", func() {
		for field := range BuildInvoiceJSONSchema()["properties"].(map[string]any) {
			Expect(prompt).To(ContainSubstring(`"` + field + `"`))
		}
	})

	It("should forbid markdown and fabrication", func() {
		Expect(prompt).To(ContainSubstring("No markdown"))
		Expect(prompt).To(ContainSubstring("Do NOT hallucinate"))
		Expect(prompt).To(ContainSubstring("Empty string if missing"))
	})
})

var _ = Describe("BuildImagePrompt", func() {
	It("should direct the model at the attached image", func() {
		Expect(BuildImagePrompt()).To(ContainSubstring("Invoice image attached"))
	})

	It("should keep the schema identical to text mode", func() {
		textPrompt := BuildTextPrompt("")
		for field := range BuildInvoiceJSONSchema()["properties"].(map[string]any) {
			Expect(BuildImagePrompt()).To(ContainSubstring(`"` + field + `"`))
			Expect(textPrompt).To(ContainSubstring(`"` + field + `"`))
		}
	})
})

var _ = Describe("BuildLegacyPrompt", func() {
	It("should cover both output shapes", func() {
		prompt := BuildLegacyPrompt()
		Expect(prompt).To(ContainSubstring(`"invoice_number"`))
		Expect(prompt).To(ContainSubstring(`"type": "label" | "device"`))
		Expect(prompt).To(ContainSubstring(`"key_fields"`))
	})
})

var _ = Describe("ValidateInvoiceJSON", func() {
	It("should accept a normalized invoice document", func() {
		doc, err := json.Marshal(&InvoiceFields{LineItems: []LineItem{}})
		Expect(err).NotTo(HaveOccurred())
		Expect(ValidateInvoiceJSON(doc)).To(Succeed())
	})

	It("should reject unknown keys", func() {
		doc := []byte(`{
			"invoice_number":"","invoice_date":"","vendor_name":"","vendor_gst":"",
			"customer_name":"","customer_gst":"","subtotal":"","gst_amount":"",
			"total_amount":"","line_items":[],"surprise":"1"
		}`)
		Expect(ValidateInvoiceJSON(doc)).NotTo(Succeed())
	})

	It("should reject non-string amounts", func() {
		doc := []byte(`{
			"invoice_number":"","invoice_date":"","vendor_name":"","vendor_gst":"",
			"customer_name":"","customer_gst":"","subtotal":"","gst_amount":"",
			"total_amount":45.0,"line_items":[]
		}`)
		Expect(ValidateInvoiceJSON(doc)).NotTo(Succeed())
	})
})

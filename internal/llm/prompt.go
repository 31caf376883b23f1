package llm

// invoicePrompt is the fixed extraction instruction. It enumerates
// every schema field with an empty-string placeholder so the model's
// completion naturally fills the same shape, and forbids fabrication.
const invoicePrompt = `You are an invoice data extraction engine.

Extract invoice data as VALID JSON ONLY.

Schema:
{
  "invoice_number": "",
  "invoice_date": "",
  "vendor_name": "",
  "vendor_gst": "",
  "customer_name": "",
  "customer_gst": "",
  "subtotal": "",
  "gst_amount": "",
  "total_amount": "",
  "line_items": [
    {
      "description": "",
      "quantity": "",
      "unit_price": "",
      "amount": ""
    }
  ]
}

Rules:
- Output ONLY JSON
- No markdown
- No explanation
- Empty string if missing
- Do NOT hallucinate any values
- Preserve all numbers exactly as seen`

// legacyPrompt is the broad combined OCR+extraction instruction used
// by the single-shot provider. The model picks the invoice or the
// label/device output shape on its own.
const legacyPrompt = `You are an OCR and document-understanding expert. Extract every piece of readable text from the provided image with maximum accuracy.

The image may be an invoice, label, electronic device, or appliance.
Your output format must adapt as follows:

1. If the image is an INVOICE, return a clean JSON object with fields:

{
  "invoice_number": "",
  "invoice_date": "",
  "vendor_name": "",
  "vendor_gst": "",
  "customer_name": "",
  "customer_gst": "",
  "subtotal": "",
  "gst_amount": "",
  "total_amount": "",
  "line_items": [
    {
      "description": "",
      "quantity": "",
      "unit_price": "",
      "amount": ""
    }
  ]
}

2. For LABELS or ELECTRONIC DEVICES/APPLIANCES, return:

{
  "type": "label" | "device",
  "text": "<all extracted text>",
  "key_fields": {
    "model": "",
    "serial": "",
    "power_rating": "",
    "manufacturer": ""
  }
}

Rules:
- Extract all visible text, even if small or repeated.
- Maintain line breaks where possible.
- If any field is missing in the image, return "" (empty string).
- Do NOT hallucinate any values.
- Preserve all numbers exactly as seen.
- Output ONLY JSON. No markdown. No explanation.

Now extract the text following the above rules.`

// BuildTextPrompt embeds recognized text into the extraction template.
// The trailing "JSON:" cue biases the model toward JSON-only output.
func BuildTextPrompt(text string) string {
	return invoicePrompt + "\n\nInvoice Text:\n" + text + "\n\nJSON:"
}

// BuildImagePrompt instructs the model to analyze an attached image
// instead of embedded text.
func BuildImagePrompt() string {
	return invoicePrompt + "\n\nInvoice image attached. Extract invoice fields and return VALID JSON ONLY."
}

// BuildLegacyPrompt returns the combined single-shot instruction.
func BuildLegacyPrompt() string {
	return legacyPrompt
}

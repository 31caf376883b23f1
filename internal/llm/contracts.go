package llm

import (
	"context"
	"encoding/json"

	"invoice-parser/internal/common"
	"invoice-parser/internal/ocr"
)

// InvoiceFields is the fixed extraction target. Every field is a
// string copied verbatim from the document; a field the model could
// not find stays "". The JSON tags mirror the prompt schema exactly —
// prompt and parser must never drift apart.
type InvoiceFields struct {
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   string     `json:"invoice_date"`
	VendorName    string     `json:"vendor_name"`
	VendorGST     string     `json:"vendor_gst"`
	CustomerName  string     `json:"customer_name"`
	CustomerGST   string     `json:"customer_gst"`
	Subtotal      string     `json:"subtotal"`
	GSTAmount     string     `json:"gst_amount"`
	TotalAmount   string     `json:"total_amount"`
	LineItems     []LineItem `json:"line_items"`
}

type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

// LabelOrDevice is the alternate shape the legacy single-shot provider
// may return for label or appliance photos.
type LabelOrDevice struct {
	Type      string         `json:"type"` // "label" | "device"
	Text      string         `json:"text"`
	KeyFields LabelKeyFields `json:"key_fields"`
}

type LabelKeyFields struct {
	Model        string `json:"model"`
	Serial       string `json:"serial"`
	PowerRating  string `json:"power_rating"`
	Manufacturer string `json:"manufacturer"`
}

// Document is the structured result of one extraction. Raw always
// holds the normalized JSON object; Invoice or Label is set when the
// corresponding shape decoded.
type Document struct {
	Provider string          `json:"-"`
	Raw      json.RawMessage `json:"-"`
	Invoice  *InvoiceFields  `json:"-"`
	Label    *LabelOrDevice  `json:"-"`
}

// Provider is the adapter contract every inference backend implements.
// Call returns the model's raw textual content; normalization into a
// Document is the orchestrator's job.
type Provider interface {
	Call(ctx context.Context, image []byte, opts common.Options) (string, error)
}

// TextRecognizer is the OCR boundary consumed by text-mode providers.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte, opts ocr.RecognizeOptions) (string, error)
}

package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset)
// as a generic map. The property set is identical to the prompt
// template and to InvoiceFields — all three must stay in lock-step.
func BuildInvoiceJSONSchema() map[string]any {
	lineItem := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"quantity":    map[string]any{"type": "string"},
			"unit_price":  map[string]any{"type": "string"},
			"amount":      map[string]any{"type": "string"},
		},
		"required": []string{"description", "quantity", "unit_price", "amount"},
	}

	props := map[string]any{
		"invoice_number": map[string]any{"type": "string"},
		"invoice_date":   map[string]any{"type": "string"},
		"vendor_name":    map[string]any{"type": "string"},
		"vendor_gst":     map[string]any{"type": "string"},
		"customer_name":  map[string]any{"type": "string"},
		"customer_gst":   map[string]any{"type": "string"},
		"subtotal":       map[string]any{"type": "string"},
		"gst_amount":     map[string]any{"type": "string"},
		"total_amount":   map[string]any{"type": "string"},
		"line_items":     map[string]any{"type": "array", "items": lineItem},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required": []string{
			"invoice_number", "invoice_date", "vendor_name", "vendor_gst",
			"customer_name", "customer_gst", "subtotal", "gst_amount",
			"total_amount", "line_items",
		},
	}
}

var (
	invoiceSchemaOnce sync.Once
	invoiceSchema     *jsonschema.Schema
	invoiceSchemaErr  error
)

// ValidateInvoiceJSON validates data against the invoice schema. The
// compiled schema is cached; it never changes at runtime.
func ValidateInvoiceJSON(data []byte) error {
	invoiceSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildInvoiceJSONSchema())
		if err != nil {
			invoiceSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("invoice.json", bytes.NewReader(b)); err != nil {
			invoiceSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		invoiceSchema, invoiceSchemaErr = compiler.Compile("invoice.json")
	})
	if invoiceSchemaErr != nil {
		return invoiceSchemaErr
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := invoiceSchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

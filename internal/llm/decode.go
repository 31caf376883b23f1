package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Normalization errors. Callers distinguish the two: ErrNoJSON means
// the model produced no structured content at all, ErrMalformedJSON
// means content was present but unparsable even after recovery.
var (
	ErrNoJSON        = errors.New("no JSON object found in model response")
	ErrMalformedJSON = errors.New("failed to parse JSON from model response")
)

// ExtractJSON recovers the JSON object embedded in free-form model
// output. Strategy, bounded by design: parse from the first opening
// brace to the end; if that fails (trailing commentary, stray tokens),
// truncate at the last closing brace and re-parse. No deeper brace
// balancing or semantic repair is attempted.
func ExtractJSON(content string) (json.RawMessage, error) {
	idx := strings.Index(content, "{")
	if idx == -1 {
		return nil, ErrNoJSON
	}
	jsonText := content[idx:]
	if json.Valid([]byte(jsonText)) {
		return json.RawMessage(jsonText), nil
	}
	if last := strings.LastIndex(jsonText, "}"); last != -1 {
		candidate := jsonText[:last+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}
	return nil, ErrMalformedJSON
}

// DecodeResponseContent extracts the model's textual content from a
// provider response body. Known shapes are tried in priority order:
// a chat body {message:{content}}, a generate body {response}, a bare
// JSON string, and finally the body itself (root-level fields).
func DecodeResponseContent(body []byte) string {
	var chat struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &chat); err == nil && chat.Message.Content != "" {
		return chat.Message.Content
	}

	var gen struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &gen); err == nil && gen.Response != "" {
		return gen.Response
	}

	var s string
	if err := json.Unmarshal(body, &s); err == nil {
		return s
	}
	return string(body)
}

// DecodeInvoice decodes a normalized JSON object into InvoiceFields and
// re-serializes it so every schema field is present — absent fields as
// "", absent line items as []. The result is schema-validated before
// being returned; a shape mismatch (e.g. numeric quantity) fails here
// rather than leaking a partial result.
func DecodeInvoice(raw json.RawMessage) (*InvoiceFields, json.RawMessage, error) {
	var f InvoiceFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("invoice shape mismatch: %w", err)
	}
	if f.LineItems == nil {
		f.LineItems = []LineItem{}
	}
	norm, err := json.Marshal(&f)
	if err != nil {
		return nil, nil, fmt.Errorf("encode invoice: %w", err)
	}
	if err := ValidateInvoiceJSON(norm); err != nil {
		return nil, nil, err
	}
	return &f, norm, nil
}

// DecodeLegacy interprets a legacy single-shot result: objects tagged
// with a "type" discriminator decode as LabelOrDevice, everything else
// passes through untouched (the broad invoice shape is model-defined).
func DecodeLegacy(raw json.RawMessage) (*LabelOrDevice, json.RawMessage, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, nil, fmt.Errorf("legacy shape: %w", err)
	}
	if probe.Type != "label" && probe.Type != "device" {
		return nil, raw, nil
	}
	var l LabelOrDevice
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, nil, fmt.Errorf("label/device shape mismatch: %w", err)
	}
	return &l, raw, nil
}

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// RawLine is one product line as the provider returned it, after structural
// validation but before normalization. Optional fields stay nil when absent.
type RawLine struct {
	ProductName   string   `json:"product_name"`
	CatalogNumber string   `json:"catalog_number"`
	Barcode       *string  `json:"barcode,omitempty"`
	Quantity      float64  `json:"quantity"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	SalePrice     *float64 `json:"sale_price,omitempty"`
	LineTotal     float64  `json:"line_total"`
	Description   *string  `json:"description,omitempty"`
	ShortName     *string  `json:"short_name,omitempty"`
}

// RawHeader is the invoice-level data as returned by the provider. The date
// is a free-form string; normalization decides whether it parses.
type RawHeader struct {
	SupplierName  *string  `json:"supplier_name,omitempty"`
	InvoiceNumber *string  `json:"invoice_number,omitempty"`
	TotalAmount   *float64 `json:"total_amount,omitempty"`
	InvoiceDate   *string  `json:"invoice_date,omitempty"`
	PaymentMethod *string  `json:"payment_method,omitempty"`
}

// RawInvoice is a full product-extraction response: optional header plus the
// flat list of line items.
type RawInvoice struct {
	Header *RawHeader `json:"header,omitempty"`
	Lines  []RawLine  `json:"line_items"`
}

// buildLineSchema returns the JSON-Schema map for one product line. The
// schema map doubles as the declarative field contract: header and line
// validation share one generic validator below.
func buildLineSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"product_name":   map[string]any{"type": "string"},
			"catalog_number": map[string]any{"type": "string"},
			"barcode":        map[string]any{"type": "string"},
			"quantity":       map[string]any{"type": "number"},
			"purchase_price": map[string]any{"type": "number"},
			"sale_price":     map[string]any{"type": "number"},
			"line_total":     map[string]any{"type": "number"},
			"description":    map[string]any{"type": "string"},
			"short_name":     map[string]any{"type": "string"},
		},
		"required": []string{"product_name", "catalog_number", "quantity", "line_total"},
	}
}

// buildHeaderSchema returns the JSON-Schema map for invoice header data.
// Every field is optional; validation is structural only.
func buildHeaderSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"supplier_name":  map[string]any{"type": "string"},
			"invoice_number": map[string]any{"type": "string"},
			"total_amount":   map[string]any{"type": "number"},
			"invoice_date":   map[string]any{"type": "string"},
			"payment_method": map[string]any{"type": "string"},
		},
	}
}

// buildInvoiceSchema composes header and line schemas into the full
// product-extraction response contract.
func buildInvoiceSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"header": buildHeaderSchema(),
			"line_items": map[string]any{
				"type":  "array",
				"items": buildLineSchema(),
			},
		},
		"required": []string{"line_items"},
	}
}

var (
	lineSchema    = mustCompile("line.json", buildLineSchema())
	headerSchema  = mustCompile("header.json", buildHeaderSchema())
	invoiceSchema = mustCompile("invoice.json", buildInvoiceSchema())
)

func mustCompile(name string, schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("extract: marshal schema %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("extract: add schema %s: %v", name, err))
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("extract: compile schema %s: %v", name, err))
	}
	return schema
}

// validateObject runs one compiled schema against a raw provider response.
// A null or non-object response yields *ShapeError; a well-formed object
// that violates the schema yields *SchemaError.
func validateObject(schema *jsonschema.Schema, raw json.RawMessage) error {
	var v any
	if len(raw) == 0 {
		return &ShapeError{Detail: "empty response"}
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return &ShapeError{Detail: "response is not valid JSON"}
	}
	obj, ok := v.(map[string]any)
	if !ok || obj == nil {
		return &ShapeError{Detail: "response is not a JSON object"}
	}
	if err := schema.Validate(v); err != nil {
		return newSchemaError(err)
	}
	return nil
}

// ValidateLine validates and decodes one raw product line.
func ValidateLine(raw json.RawMessage) (*RawLine, error) {
	if err := validateObject(lineSchema, raw); err != nil {
		return nil, err
	}
	var line RawLine
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, fmt.Errorf("decoding line: %w", err)
	}
	return &line, nil
}

// ValidateHeader validates and decodes raw invoice header data.
func ValidateHeader(raw json.RawMessage) (*RawHeader, error) {
	if err := validateObject(headerSchema, raw); err != nil {
		return nil, err
	}
	var header RawHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}
	return &header, nil
}

// ValidateInvoice validates and decodes a full product-extraction response.
func ValidateInvoice(raw json.RawMessage) (*RawInvoice, error) {
	if err := validateObject(invoiceSchema, raw); err != nil {
		return nil, err
	}
	var invoice RawInvoice
	if err := json.Unmarshal(raw, &invoice); err != nil {
		return nil, fmt.Errorf("decoding invoice: %w", err)
	}
	return &invoice, nil
}

// ValidateLineFunc adapts ValidateLine for the retry controller.
func ValidateLineFunc(raw json.RawMessage) error {
	_, err := ValidateLine(raw)
	return err
}

// ValidateHeaderFunc adapts ValidateHeader for the retry controller.
func ValidateHeaderFunc(raw json.RawMessage) error {
	_, err := ValidateHeader(raw)
	return err
}

// ValidateInvoiceFunc adapts ValidateInvoice for the retry controller.
func ValidateInvoiceFunc(raw json.RawMessage) error {
	_, err := ValidateInvoice(raw)
	return err
}

func newSchemaError(err error) *SchemaError {
	se := &SchemaError{Err: err}
	var ve *jsonschema.ValidationError
	if ok := asValidationError(err, &ve); ok {
		fields := map[string]bool{}
		collectFieldPaths(ve, fields)
		for f := range fields {
			se.Fields = append(se.Fields, f)
		}
		sort.Strings(se.Fields)
	}
	return se
}

func asValidationError(err error, target **jsonschema.ValidationError) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if ok {
		*target = ve
	}
	return ok
}

// collectFieldPaths walks the validation error tree and records the deepest
// failing instance locations.
func collectFieldPaths(ve *jsonschema.ValidationError, out map[string]bool) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		out[loc] = true
		return
	}
	for _, cause := range ve.Causes {
		collectFieldPaths(cause, out)
	}
}

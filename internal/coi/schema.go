package coi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildResultJSONSchema returns the JSON-Schema (draft 2020-12 subset) for an
// ExtractionResult arriving from outside the process. Field values may be null
// (the absent marker); reports are optional. The expiration date may be any
// string: whether it parses is decided by the expiry gate.
func BuildResultJSONSchema() map[string]any {
	outcomes := []string{
		string(OutcomeMatched), string(OutcomeAbsent),
		string(OutcomeMalformed), string(OutcomeUnavailable),
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			FieldGeneralAggregate: map[string]any{"type": []string{"number", "null"}, "minimum": 0},
			FieldExpirationDate:   map[string]any{"type": []string{"string", "null"}},
			FieldPremium:          map[string]any{"type": []string{"number", "null"}, "minimum": 0},
			"extraction_success":  map[string]any{"type": "boolean"},
			"fields": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"outcome":  map[string]any{"type": "string", "enum": outcomes},
						"strategy": map[string]any{"type": "string"},
						"raw":      map[string]any{"type": "string"},
					},
					"required": []string{"outcome"},
				},
			},
		},
		"required": []string{"extraction_success"},
	}
}

var (
	resultSchemaOnce sync.Once
	resultSchema     *jsonschema.Schema
	resultSchemaErr  error
)

func compiledResultSchema() (*jsonschema.Schema, error) {
	resultSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildResultJSONSchema())
		if err != nil {
			resultSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("extraction_result.json", bytes.NewReader(b)); err != nil {
			resultSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		resultSchema, resultSchemaErr = compiler.Compile("extraction_result.json")
	})
	return resultSchema, resultSchemaErr
}

// DecodeResult validates data against the result schema and decodes it.
func DecodeResult(data []byte) (ExtractionResult, error) {
	schema, err := compiledResultSchema()
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return ExtractionResult{}, fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return ExtractionResult{}, fmt.Errorf("json does not match schema: %w", err)
	}
	var r ExtractionResult
	if err := json.Unmarshal(data, &r); err != nil {
		return ExtractionResult{}, fmt.Errorf("decode result: %w", err)
	}
	return r, nil
}

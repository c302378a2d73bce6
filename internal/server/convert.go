package server

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// decodeStruct copies a request struct into a typed Go value via JSON.
func decodeStruct(in *structpb.Struct, v any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := json.Marshal(in.AsMap())
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// toStruct converts any JSON-marshalable value into a response struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return structpb.NewStruct(m)
}

// rawField returns the JSON encoding of one field of in, or nil when absent.
func rawField(in *structpb.Struct, name string) ([]byte, error) {
	v, ok := in.GetFields()[name]
	if !ok {
		return nil, nil
	}
	return json.Marshal(v.AsInterface())
}

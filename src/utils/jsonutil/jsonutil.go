package jsonutil

import "encoding/json"

// Convert re-marshals an arbitrarily-shaped value into T. Used to promote
// loosely-typed payloads (maps, RawMessage) into typed structs.
func Convert[T any](v any) (T, error) {
	var out T
	b, err := json.Marshal(v)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the {data: ...} wrapper some backend deployments use.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// DecodeEnvelope decodes a response body that is either {"data": v} or v
// itself. An empty body or a null payload leaves the zero value.
func DecodeEnvelope[T any](body []byte) (T, error) {
	var out T
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return out, nil
	}

	if body[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(body, &probe); err != nil {
			return out, fmt.Errorf("decoding response: %w", err)
		}
		if inner, ok := probe["data"]; ok {
			inner = bytes.TrimSpace(inner)
			if len(inner) == 0 || bytes.Equal(inner, []byte("null")) {
				return out, nil
			}
			if err := json.Unmarshal(inner, &out); err != nil {
				return out, fmt.Errorf("decoding response data: %w", err)
			}
			return out, nil
		}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("decoding response: %w", err)
	}
	return out, nil
}

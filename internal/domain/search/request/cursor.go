package request

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor is the sort values of the last hit of a page, passed back as search_after.
// Values stay raw so long sort keys keep their precision.
type Cursor []json.RawMessage

// EncodeCursor turns the raw sort array of a hit into an opaque token.
func EncodeCursor(sortValues json.RawMessage) (string, error) {
	var c Cursor
	if err := json.Unmarshal(sortValues, &c); err != nil {
		return "", fmt.Errorf("sort values: %w", err)
	}
	if len(c) == 0 {
		return "", fmt.Errorf("sort values are empty")
	}
	return base64.RawURLEncoding.EncodeToString(sortValues), nil
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(token string) (Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	if len(c) == 0 {
		return nil, fmt.Errorf("invalid cursor: no sort values")
	}
	return c, nil
}

package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrInvalidCursor marks a cursor that failed to decode. It is a
// bad-request-class error: a tampered cursor must never be treated as
// "start of set".
var ErrInvalidCursor = errors.New("invalid cursor")

// EncodeCursor serializes a tuple of key-column values into an opaque
// cursor string. The tuple is JSON-encoded, URI-escaped and then
// base64-encoded. The URI-escape step is required so that non-ASCII values
// (Korean nicknames, for one) survive the round trip intact.
func EncodeCursor(values []any) (string, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return base64.StdEncoding.EncodeToString([]byte(url.QueryEscape(string(raw)))), nil
}

// DecodeCursor is the exact inverse of EncodeCursor.
func DecodeCursor(cursor string) ([]any, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	unescaped, err := url.QueryUnescape(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var values []any
	if err := json.Unmarshal([]byte(unescaped), &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	return values, nil
}

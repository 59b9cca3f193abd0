package auth

import (
	"fmt"
	"strings"

	"github.com/roflsunriz/VBBB-sub002/internal/codec"
)

// encodeForm builds an x-www-form-urlencoded body from fields, preserving
// field order, using enc as the target charset for each value.
func encodeForm(fields [][2]string, enc codec.Encoding) (string, error) {
	parts := make([]string, 0, len(fields))
	for _, kv := range fields {
		key, value := kv[0], kv[1]
		encKey, err := codec.FormURLEncode(key, enc)
		if err != nil {
			return "", fmt.Errorf("auth: encode form key %q: %w", key, err)
		}
		encValue, err := codec.FormURLEncode(value, enc)
		if err != nil {
			return "", fmt.Errorf("auth: encode form value for %q: %w", key, err)
		}
		parts = append(parts, encKey+"="+encValue)
	}
	return strings.Join(parts, "&"), nil
}

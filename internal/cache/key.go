package cache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const keyDelimiter = ":"

// Key derives a fixed-length cache key from args. Argument order matters.
// The digest is not meant for security purposes.
func Key(args ...any) string {
	return PrefixedKey("", args...)
}

// PrefixedKey is Key namespaced by prefix. An empty prefix is the same as Key.
func PrefixedKey(prefix string, args ...any) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprint(arg)
	}

	data := strings.Join(parts, keyDelimiter)
	if prefix != "" {
		data = prefix + keyDelimiter + data
	}

	return fmt.Sprintf("%016x", xxhash.Sum64String(data))
}

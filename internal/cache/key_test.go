package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Deterministic(t *testing.T) {
	assert.Equal(t, PrefixedKey("p", "x", "y"), PrefixedKey("p", "x", "y"))
	assert.Equal(t, Key(42, "v1"), Key(42, "v1"))
}

func TestKey_OrderSensitive(t *testing.T) {
	assert.NotEqual(t, Key("x", "y"), Key("y", "x"))
}

func TestKey_PrefixNamespaces(t *testing.T) {
	assert.NotEqual(t, Key("x"), PrefixedKey("p", "x"))
	assert.NotEqual(t, PrefixedKey("a", "x"), PrefixedKey("b", "x"))
	assert.Equal(t, Key("x"), PrefixedKey("", "x"))
}

func TestKey_FixedLengthHex(t *testing.T) {
	keys := []string{
		Key(),
		Key("a"),
		PrefixedKey("resume", 123, ""),
		Key(struct{ A, B int }{1, 2}, 3.5, nil, true),
	}

	for _, k := range keys {
		assert.Len(t, k, 16)
		assert.Regexp(t, "^[0-9a-f]{16}$", k)
	}
}

func TestKey_StringFormOfArguments(t *testing.T) {
	// Arguments are compared by their string form.
	assert.Equal(t, Key(1), Key("1"))
	assert.NotEqual(t, Key(1), Key(2))
}

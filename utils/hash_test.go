package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestDataHashDeterministic(t *testing.T) {
    assert.Equal(t, DataHash("a", "b"), DataHash("a", "b"))
    assert.NotEqual(t, DataHash("a", "b"), DataHash("b", "a"))
    assert.Len(t, DataHash("a"), 64)
}

func TestDataHashFieldBoundaries(t *testing.T) {
    // Concatenation alone would collide these.
    assert.NotEqual(t, DataHash("ab", "c"), DataHash("a", "bc"))
}

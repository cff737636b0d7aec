package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeltaU64(t *testing.T) {
	assert.Equal(t, uint64(5), DeltaU64(10, 5))
	assert.Equal(t, uint64(0), DeltaU64(5, 10), "decrease clamps to 0, not wraps")
	assert.Equal(t, uint64(0), DeltaU64(5, 5))
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 2.0, SafeDiv(10, 5))
	assert.Equal(t, 0.0, SafeDiv(10, 0))
	assert.Equal(t, 0.0, SafeDiv(10, 1e-20))
}

func TestClampMin0(t *testing.T) {
	assert.Equal(t, 0, ClampMin0(-3))
	assert.Equal(t, 0, ClampMin0(0))
	assert.Equal(t, 4, ClampMin0(4))
}

func TestFinite(t *testing.T) {
	assert.True(t, Finite(1.5))
	assert.False(t, Finite(math.NaN()))
	assert.False(t, Finite(math.Inf(1)))
	assert.False(t, Finite(math.Inf(-1)))
}

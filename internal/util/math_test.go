package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeast(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, Least(3))
	assert.Equal(t, 1, Least(3, 1, 2))
	assert.Equal(t, uint64(4), Least(uint64(9), 4, 7))
}

func TestDivCeil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(0), DivCeil(uint64(0), 8))
	assert.Equal(t, uint64(1), DivCeil(uint64(1), 8))
	assert.Equal(t, uint64(1), DivCeil(uint64(8), 8))
	assert.Equal(t, uint64(2), DivCeil(uint64(9), 8))
	assert.Equal(t, uint32(4), DivCeil(uint32(4096), 1024))
}

func TestClamps(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(7), Uint64(7))
	assert.Equal(t, uint64(0), Uint64(-7))

	assert.Equal(t, int64(7), Int64(7))
	assert.Equal(t, int64(math.MaxInt64), Int64(math.MaxUint64))
}

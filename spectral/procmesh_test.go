package spectral

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSize2D(t *testing.T) {
	testCases := []struct {
		name     string
		size     int
		expected [2]int
	}{
		{"single", 1, [2]int{1, 1}},
		{"prime", 7, [2]int{7, 1}},
		{"square", 64, [2]int{8, 8}},
		{"rectangular", 12, [2]int{4, 3}},
		{"two", 2, [2]int{2, 1}},
		{"six", 6, [2]int{3, 2}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitSize2D(tc.size)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.size, got[0]*got[1])
		})
	}
}

func TestNewProcessMesh(t *testing.T) {
	t.Run("AutoSplit", func(t *testing.T) {
		pm, err := NewProcessMesh(nil, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, pm.Size())
	})

	t.Run("ExplicitShape", func(t *testing.T) {
		pm, err := NewProcessMesh(&[2]int{2, 3}, 6)
		require.NoError(t, err)
		assert.Equal(t, [2]int{2, 3}, pm.Np)
	})

	t.Run("ProductMismatch", func(t *testing.T) {
		_, err := NewProcessMesh(&[2]int{2, 2}, 6)
		require.Error(t, err)
	})

	t.Run("NonPositiveExtent", func(t *testing.T) {
		_, err := NewProcessMesh(&[2]int{0, 6}, 6)
		require.Error(t, err)
	})
}

func TestParseDataType(t *testing.T) {
	for _, tok := range []string{"f4", "single", "float32"} {
		dt, err := ParseDataType(tok)
		require.NoError(t, err)
		assert.Equal(t, Float32, dt)
	}
	for _, tok := range []string{"f8", "double", "float64"} {
		dt, err := ParseDataType(tok)
		require.NoError(t, err)
		assert.Equal(t, Float64, dt)
	}
	for _, tok := range []string{"f2", "f16", "", "int64"} {
		_, err := ParseDataType(tok)
		require.Error(t, err, "token %q", tok)
	}

	assert.Equal(t, int64(4), SizeOfType(Float32))
	assert.Equal(t, int64(8), SizeOfType(Float64))
}

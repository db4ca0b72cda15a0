package datagen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_generateBounds(t *testing.T) {
	cols, err := Generate(200, 3, 0.5, 1)
	require.NoError(t, err)
	require.Equal(t, 3, len(cols))
	maxValue := uint32(100)
	for _, col := range cols {
		require.Equal(t, 200, len(col))
		for _, v := range col {
			assert.LessOrEqual(t, v, maxValue)
		}
	}
}

func Test_generateReproducible(t *testing.T) {
	a, err := Generate(100, 2, 1.0, 42)
	require.NoError(t, err)
	b, err := Generate(100, 2, 1.0, 42)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Generate(100, 2, 1.0, 43)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func Test_generateInvalidCardinality(t *testing.T) {
	_, err := Generate(10, 1, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidCardinality)
	_, err = Generate(10, 1, -0.5, 1)
	assert.ErrorIs(t, err, ErrInvalidCardinality)
	_, err = Generate(10, 1, 1.5, 1)
	assert.ErrorIs(t, err, ErrInvalidCardinality)
}

func Test_generateInvalidShape(t *testing.T) {
	_, err := Generate(0, 1, 0.5, 1)
	assert.Error(t, err)
	_, err = Generate(10, 0, 0.5, 1)
	assert.Error(t, err)
}

func Test_parquetRoundTrip(t *testing.T) {
	cols, err := Generate(64, 4, 0.8, 9)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "dataset.parquet")
	require.NoError(t, WriteParquet(path, cols))

	got, err := ReadParquet(path)
	require.NoError(t, err)
	assert.Equal(t, cols, got)
}

func Test_writeParquetRejectsBadShape(t *testing.T) {
	assert.Error(t, WriteParquet("unused", nil))
}

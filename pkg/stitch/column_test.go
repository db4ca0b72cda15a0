package stitch

import (
	"bytes"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keyBytes is the independent view of the comparator contract: the raw
// in-memory bytes of the key words, concatenated in stitch order.
func keyBytes(vals ...uint32) []byte {
	buf := make([]byte, 0, len(vals)*wordSize)
	for i := range vals {
		b := (*[4]byte)(unsafe.Pointer(&vals[i]))
		buf = append(buf, b[:]...)
	}
	return buf
}

func identity(n int) []uint32 {
	indices := make([]uint32, n)
	for i := range indices {
		indices[i] = uint32(i)
	}
	return indices
}

func Test_stitchLayout(t *testing.T) {
	cols := []RawColumn{
		{1, 2, 3},
		{4, 5, 6},
	}
	indices := []uint32{2, 0, 1}
	col := Stitch(cols, indices)
	defer col.Close()

	require.Equal(t, 3, col.NumValues())
	require.Equal(t, 2, col.CompareFactor())
	require.Equal(t, 3*(2+1), col.BufferWords())

	for i, rowID := range indices {
		tuple := col.tuplePtr(i)
		assert.Equal(t, rowID, col.rowID(tuple))
		got := bytes.Clone(
			unsafe.Slice((*byte)(keyPtr(tuple)), col.keySize()))
		assert.Equal(t, keyBytes(cols[0][rowID], cols[1][rowID]), got)
	}
}

func Test_stitchEmpty(t *testing.T) {
	col := Stitch(nil, nil)
	defer col.Close()
	assert.Equal(t, 0, col.NumValues())
	assert.Equal(t, 1, col.CompareFactor())
	assert.Equal(t, 0, col.BufferWords())

	col2 := Stitch([]RawColumn{{1, 2}}, nil)
	defer col2.Close()
	assert.Equal(t, 0, col2.NumValues())

	col3 := Stitch(nil, []uint32{0, 1})
	defer col3.Close()
	assert.Equal(t, 0, col3.NumValues())
}

func Test_cloneDuplicates(t *testing.T) {
	cols := []RawColumn{{7, 7, 9}}
	col := Stitch(cols, identity(3))
	defer col.Close()

	dup := col.Clone()
	defer dup.Close()
	require.Equal(t, col.NumValues(), dup.NumValues())
	require.Equal(t, col.CompareFactor(), dup.CompareFactor())
	require.NotEqual(t, col.data, dup.data)

	// mutating the clone leaves the source untouched
	require.NoError(t, dup.Sort())
	assert.Equal(t, identity(3), col.IndexOnly())
}

func Test_moveTransfers(t *testing.T) {
	cols := []RawColumn{{3, 1, 2}}
	col := Stitch(cols, identity(3))

	buf := col.data
	moved := col.Move()
	defer moved.Close()

	assert.False(t, PointerValidForTest(col))
	assert.Equal(t, 0, col.NumValues())
	assert.Equal(t, 1, col.CompareFactor())
	assert.Equal(t, buf, moved.data)
	assert.Equal(t, 3, moved.NumValues())

	// closing the drained source must not free the moved buffer
	col.Close()
	assert.Equal(t, []uint32{0, 1, 2}, moved.IndexOnly())
}

// PointerValidForTest exposes buffer presence for ownership tests.
func PointerValidForTest(col *Column) bool {
	return col.data != nil
}

func Test_indexOnly(t *testing.T) {
	cols := []RawColumn{{5, 5, 5, 5}}
	indices := []uint32{3, 1, 0, 2}
	col := Stitch(cols, indices)
	defer col.Close()
	assert.Equal(t, indices, col.IndexOnly())
}

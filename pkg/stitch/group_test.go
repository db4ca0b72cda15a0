package stitch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTiles(t *testing.T, groups []SortingGroup, n int) {
	t.Helper()
	next := 0
	for _, g := range groups {
		require.Equal(t, next, g.Start)
		require.Greater(t, g.Length, 0)
		next = g.Start + g.Length
	}
	require.Equal(t, n, next)
}

func Test_freshExtractionNoDuplicates(t *testing.T) {
	// two columns, no duplicate pairs, already in order
	cols := []RawColumn{
		{1, 2, 3},
		{4, 5, 6},
	}
	col := Stitch(cols, identity(3))
	defer col.Close()
	require.NoError(t, col.Sort())

	state := col.GroupsAndIndex()
	assert.Equal(t, identity(3), state.Indices)
	assert.Equal(t, []SortingGroup{{0, 1}, {1, 1}, {2, 1}}, state.Groups)
	requireTiles(t, state.Groups, 3)
}

func Test_freshExtractionDuplicates(t *testing.T) {
	// distinct (c0,c1) pairs: (1,3),(1,4),(2,3),(2,4),(4,4)
	cols := []RawColumn{
		{2, 1, 4, 1, 4, 2},
		{3, 3, 4, 4, 4, 4},
	}
	col := Stitch(cols, identity(6))
	defer col.Close()
	require.NoError(t, col.Sort())

	state := col.GroupsAndIndex()
	requireTiles(t, state.Groups, 6)
	require.Equal(t, 5, len(state.Groups))

	// every row listed exactly once
	seen := make(map[uint32]bool)
	for _, idx := range state.Indices {
		require.False(t, seen[idx])
		seen[idx] = true
	}
	require.Equal(t, 6, len(seen))

	// the (4,4) pair appears twice, so exactly one group of length 2
	lengths := make(map[int]int)
	for _, g := range state.Groups {
		lengths[g.Length]++
	}
	assert.Equal(t, 4, lengths[1])
	assert.Equal(t, 1, lengths[2])
}

func Test_freshExtractionSingleGroup(t *testing.T) {
	cols := []RawColumn{{7, 7, 7, 7}}
	col := Stitch(cols, identity(4))
	defer col.Close()
	require.NoError(t, col.Sort())
	state := col.GroupsAndIndex()
	assert.Equal(t, []SortingGroup{{0, 4}}, state.Groups)
}

func Test_refineSubdividesOnlyInsideGroups(t *testing.T) {
	c0 := RawColumn{1, 1, 1, 1, 2, 2}
	c1 := RawColumn{5, 5, 3, 3, 3, 9}

	first := Stitch([]RawColumn{c0}, identity(6))
	require.NoError(t, first.Sort())
	state := first.GroupsAndIndex()
	first.Close()
	require.Equal(t, []SortingGroup{{0, 4}, {4, 2}}, state.Groups)

	second := Stitch([]RawColumn{c1}, state.Indices)
	defer second.Close()
	require.NoError(t, second.SortGroups(state.Groups))
	refined := second.RefineGroups(state.Groups)

	requireTiles(t, refined.Groups, 6)
	// refinement: each new group sits inside exactly one old group
	for _, ng := range refined.Groups {
		contained := false
		for _, og := range state.Groups {
			if ng.Start >= og.Start && ng.Start+ng.Length <= og.Start+og.Length {
				contained = true
				break
			}
		}
		require.True(t, contained)
	}
	// c0=1 rows split on c1 into {3,3} and {5,5}; c0=2 rows into {3} and {9}
	assert.Equal(t,
		[]SortingGroup{{0, 2}, {2, 2}, {4, 1}, {5, 1}},
		refined.Groups)
}

func Test_refineSingletonPassThrough(t *testing.T) {
	c0 := RawColumn{3, 1, 2}
	first := Stitch([]RawColumn{c0}, identity(3))
	require.NoError(t, first.Sort())
	state := first.GroupsAndIndex()
	first.Close()
	require.Equal(t, 3, state.SingletonCount())

	c1 := RawColumn{9, 9, 9}
	second := Stitch([]RawColumn{c1}, state.Indices)
	defer second.Close()
	require.NoError(t, second.SortGroups(state.Groups))
	refined := second.RefineGroups(state.Groups)

	// singletons pass through untouched even though all c1 keys are equal
	assert.Equal(t, state.Groups, refined.Groups)
	assert.Equal(t, state.Indices, refined.Indices)
}

func Test_refineClosesGroupTail(t *testing.T) {
	// equal run right at the tail of an input group
	c0 := RawColumn{1, 1, 1, 1}
	c1 := RawColumn{2, 5, 5, 5}

	first := Stitch([]RawColumn{c0}, identity(4))
	require.NoError(t, first.Sort())
	state := first.GroupsAndIndex()
	first.Close()

	second := Stitch([]RawColumn{c1}, state.Indices)
	defer second.Close()
	require.NoError(t, second.SortGroups(state.Groups))
	refined := second.RefineGroups(state.Groups)

	requireTiles(t, refined.Groups, 4)
	assert.Equal(t, []SortingGroup{{0, 1}, {1, 3}}, refined.Groups)
}

func Test_refineRejectsNonTilingGroups(t *testing.T) {
	c0 := RawColumn{1, 1, 2, 2}
	col := Stitch([]RawColumn{c0}, identity(4))
	defer col.Close()
	require.NoError(t, col.Sort())

	// a gap between input groups violates the tiling invariant
	assert.Panics(t, func() {
		col.RefineGroups([]SortingGroup{{0, 1}, {2, 2}})
	})
}

func Test_groupRoundTrip(t *testing.T) {
	cols := randColumns(t, 128, 2, 7, 42)
	col := Stitch(cols, identity(128))
	defer col.Close()
	require.NoError(t, col.Sort())

	state := col.GroupsAndIndex()
	requireTiles(t, state.Groups, 128)

	// re-running extraction on the sorted column cannot produce more groups,
	// and every group is internally key-equal
	again := col.GroupsAndIndex()
	require.LessOrEqual(t, len(again.Groups), len(state.Groups))
	for _, g := range again.Groups {
		base := keyBytesAt(col, g.Start)
		for i := g.Start + 1; i < g.Start+g.Length; i++ {
			require.Equal(t, 0, bytes.Compare(base, keyBytesAt(col, i)))
		}
	}
}

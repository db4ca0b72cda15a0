package stitch

import (
	"errors"
	"sort"
	"unsafe"

	"github.com/daviszhen/stitch/pkg/util"
)

// MaxCompareFactor is the widest tuple the sort is specialized for.
const MaxCompareFactor = 8

// ErrUnsupportedWidth is returned when compareFactor exceeds the
// specialized set instead of silently skipping the sort.
var ErrUnsupportedWidth = errors.New("unsupported compare factor")

// One concrete tuple type per width so the element size the sorter swaps
// is fixed at compile time, the moral equivalent of Tuple<W> expansion.
type tuple1 struct {
	rowID uint32
	keys  [1]uint32
}

type tuple2 struct {
	rowID uint32
	keys  [2]uint32
}

type tuple3 struct {
	rowID uint32
	keys  [3]uint32
}

type tuple4 struct {
	rowID uint32
	keys  [4]uint32
}

type tuple5 struct {
	rowID uint32
	keys  [5]uint32
}

type tuple6 struct {
	rowID uint32
	keys  [6]uint32
}

type tuple7 struct {
	rowID uint32
	keys  [7]uint32
}

type tuple8 struct {
	rowID uint32
	keys  [8]uint32
}

// sortTuples reorders count tuples starting at base. Keys compare as the
// raw bytes of the key words, the same relation group extraction uses.
func sortTuples[T any](base unsafe.Pointer, count int, keySize int) {
	tuples := util.PointerToSlice[T](base, count)
	sort.Slice(tuples, func(i, j int) bool {
		l := keyPtr(unsafe.Pointer(&tuples[i]))
		r := keyPtr(unsafe.Pointer(&tuples[j]))
		return util.PointerMemcmp(l, r, keySize) < 0
	})
}

func (col *Column) sortRange(start, count int) error {
	base := col.tuplePtr(start)
	keySize := col.keySize()
	switch col.compareFactor {
	case 1:
		sortTuples[tuple1](base, count, keySize)
	case 2:
		sortTuples[tuple2](base, count, keySize)
	case 3:
		sortTuples[tuple3](base, count, keySize)
	case 4:
		sortTuples[tuple4](base, count, keySize)
	case 5:
		sortTuples[tuple5](base, count, keySize)
	case 6:
		sortTuples[tuple6](base, count, keySize)
	case 7:
		sortTuples[tuple7](base, count, keySize)
	case 8:
		sortTuples[tuple8](base, count, keySize)
	default:
		return ErrUnsupportedWidth
	}
	return nil
}

// Sort orders the whole tuple array by key bytes.
func (col *Column) Sort() error {
	return col.sortRange(0, col.numValues)
}

// SortGroups orders tuples only inside each group's slice; singleton groups
// are skipped. Used for every round after the first, where rows may only
// move within the run they already tied in.
func (col *Column) SortGroups(groups []SortingGroup) error {
	for _, g := range groups {
		if g.Length == 1 {
			continue
		}
		if err := col.sortRange(g.Start, g.Length); err != nil {
			return err
		}
	}
	return nil
}

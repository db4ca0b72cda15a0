// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stitch

import (
	"unsafe"

	"github.com/daviszhen/stitch/pkg/util"
)

const wordSize = int(unsafe.Sizeof(uint32(0)))

// Column is the working set of one round: numValues tuples of
// compareFactor+1 words each, laid out back to back in a single
// cgo-allocated buffer. Word 0 of a tuple is the row id, words
// 1..compareFactor are the key values in stitch order.
//
// The buffer is owned exclusively by the Column. Clone duplicates it,
// Move transfers it, Close releases it.
type Column struct {
	data          unsafe.Pointer
	numValues     int
	compareFactor int
}

func NewColumn() *Column {
	return &Column{compareFactor: 1}
}

// Stitch materializes (rowID, cols[0][rowID], ..., cols[W-1][rowID]) tuples
// in permutation order. Empty inputs yield an empty column. indices are not
// bounds-checked against the raw columns; the executor only ever supplies
// permutations of [0, N).
func Stitch(cols []RawColumn, indices []uint32) *Column {
	result := NewColumn()
	if util.Empty(cols) || util.Empty(indices) {
		return result
	}
	result.compareFactor = len(cols)
	result.numValues = len(indices)

	tupleSize := (result.compareFactor + 1) * wordSize
	result.data = util.CMalloc(result.numValues * tupleSize)

	currTuple := result.data
	for i := 0; i < len(indices); i++ {
		util.Store[uint32](indices[i], currTuple)
		for col := 0; col < len(cols); col++ {
			util.Store[uint32](
				cols[col][indices[i]],
				util.PointerAdd(currTuple, (col+1)*wordSize))
		}
		currTuple = util.PointerAdd(currTuple, tupleSize)
	}
	return result
}

func (col *Column) NumValues() int {
	return col.numValues
}

func (col *Column) CompareFactor() int {
	return col.compareFactor
}

// BufferWords is the buffer length in 32-bit words: numValues *
// (compareFactor + 1), zero for an empty column.
func (col *Column) BufferWords() int {
	if !util.PointerValid(col.data) {
		return 0
	}
	return col.numValues * (col.compareFactor + 1)
}

func (col *Column) tupleSize() int {
	return (col.compareFactor + 1) * wordSize
}

func (col *Column) keySize() int {
	return col.compareFactor * wordSize
}

func (col *Column) tuplePtr(i int) unsafe.Pointer {
	return util.PointerAdd(col.data, i*col.tupleSize())
}

func (col *Column) rowID(tuple unsafe.Pointer) uint32 {
	return util.Load[uint32](tuple)
}

func keyPtr(tuple unsafe.Pointer) unsafe.Pointer {
	return util.PointerAdd(tuple, wordSize)
}

// Clone duplicates the buffer.
func (col *Column) Clone() *Column {
	ret := &Column{
		numValues:     col.numValues,
		compareFactor: col.compareFactor,
	}
	if util.PointerValid(col.data) {
		sz := col.numValues * col.tupleSize()
		ret.data = util.CMalloc(sz)
		util.CMemcpy(ret.data, col.data, sz)
	}
	return ret
}

// Move transfers buffer ownership to the returned column and leaves the
// receiver empty.
func (col *Column) Move() *Column {
	ret := &Column{
		data:          col.data,
		numValues:     col.numValues,
		compareFactor: col.compareFactor,
	}
	col.data = nil
	col.numValues = 0
	col.compareFactor = 1
	return ret
}

func (col *Column) Close() {
	if util.PointerValid(col.data) {
		util.CFree(col.data)
		col.data = nil
	}
	col.numValues = 0
	col.compareFactor = 1
}

// IndexOnly reads back just the permutation, for the last round where group
// boundaries are no longer needed.
func (col *Column) IndexOnly() []uint32 {
	result := make([]uint32, col.numValues)
	currTuple := col.data
	for i := 0; i < col.numValues; i++ {
		result[i] = col.rowID(currTuple)
		currTuple = util.PointerAdd(currTuple, col.tupleSize())
	}
	return result
}

// GroupsAndIndex walks the sorted tuples once and cuts a group boundary at
// every adjacent key inequality. The groups tile [0, numValues) exactly.
func (col *Column) GroupsAndIndex() *SortingState {
	state := &SortingState{}
	state.Indices = make([]uint32, col.numValues)
	if col.numValues == 0 {
		return state
	}
	start := 0
	currTuple := col.data
	for i := 0; i < col.numValues-1; i++ {
		state.Indices[i] = col.rowID(currTuple)
		nextTuple := util.PointerAdd(currTuple, col.tupleSize())
		if util.PointerMemcmp(keyPtr(currTuple), keyPtr(nextTuple), col.keySize()) != 0 {
			state.Groups = append(state.Groups, SortingGroup{start, i - start + 1})
			start = i + 1
		}
		currTuple = nextTuple
	}
	state.Indices[col.numValues-1] = col.rowID(currTuple)
	state.Groups = append(state.Groups, SortingGroup{start, col.numValues - start})
	last := util.Back(state.Groups)
	util.AssertFunc(last.Start+last.Length == col.numValues)
	return state
}

// RefineGroups re-scans each input group and subdivides it wherever
// adjacent tuples differ in their key bytes. Singleton groups pass through
// without a compare. The result is a refinement of the input partition and
// still tiles [0, numValues).
func (col *Column) RefineGroups(groups []SortingGroup) *SortingState {
	state := &SortingState{}
	state.Indices = make([]uint32, col.numValues)
	covered := 0
	for _, g := range groups {
		// input groups must tile [0, numValues) in order
		util.AssertFunc(g.Start == covered)
		covered = g.Start + g.Length
		if g.Length == 1 {
			state.Indices[g.Start] = col.rowID(col.tuplePtr(g.Start))
			state.Groups = append(state.Groups, SortingGroup{g.Start, 1})
			continue
		}
		end := g.Start + g.Length
		start := g.Start
		currTuple := col.tuplePtr(g.Start)
		for i := g.Start; i < end; i++ {
			state.Indices[i] = col.rowID(currTuple)
			nextTuple := util.PointerAdd(currTuple, col.tupleSize())
			if i+1 < end &&
				util.PointerMemcmp(keyPtr(currTuple), keyPtr(nextTuple), col.keySize()) != 0 {
				state.Groups = append(state.Groups, SortingGroup{start, i - start + 1})
				start = i + 1
			}
			currTuple = nextTuple
		}
		state.Groups = append(state.Groups, SortingGroup{start, end - start})
	}
	util.AssertFunc(covered == col.numValues)
	return state
}

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

package bench

import (
	"fmt"
	"strings"

	"github.com/huandu/go-clone"
	"github.com/xlab/treeprint"
)

// StitchPlan is an ordered list of rounds; each round lists the raw-column
// indices stitched together in that round.
type StitchPlan [][]int

// Validate rejects the InvalidPlan conditions: no rounds, an empty round,
// or a column index outside [0, totalColumns).
func (plan StitchPlan) Validate(totalColumns int) error {
	if len(plan) < 1 {
		return fmt.Errorf("invalid plan size %d", len(plan))
	}
	for r, round := range plan {
		if len(round) < 1 {
			return fmt.Errorf("round %d is empty", r)
		}
		for _, colIdx := range round {
			if colIdx < 0 || colIdx >= totalColumns {
				return fmt.Errorf("round %d references column %d, have %d columns",
					r, colIdx, totalColumns)
			}
		}
	}
	return nil
}

// ColumnCount is the number of column slots the plan touches, counting
// repeats.
func (plan StitchPlan) ColumnCount() int {
	cnt := 0
	for _, round := range plan {
		cnt += len(round)
	}
	return cnt
}

// FlattenColumns lists the plan's columns in comparison order.
func (plan StitchPlan) FlattenColumns() []int {
	flat := make([]int, 0, plan.ColumnCount())
	for _, round := range plan {
		flat = append(flat, round...)
	}
	return flat
}

func (plan StitchPlan) Copy() StitchPlan {
	return clone.Clone(plan).(StitchPlan)
}

func (plan StitchPlan) String() string {
	sb := strings.Builder{}
	for r, round := range plan {
		if r > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('[')
		for i, colIdx := range round {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", colIdx)
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// DefaultPlans are the reference execution plans over four columns: every
// way of cutting [0,1,2,3] into contiguous rounds that the original
// experiments measured.
func DefaultPlans() []StitchPlan {
	return []StitchPlan{
		{{0, 1, 2, 3}},
		{{0, 1}, {2}, {3}},
		{{0, 1}, {2, 3}},
		{{0}, {1, 2}, {3}},
		{{0}, {1}, {2, 3}},
		{{0, 1, 2}, {3}},
		{{0}, {1, 2, 3}},
		{{0}, {1}, {2}, {3}},
	}
}

// Explain renders the plan as a round tree.
func (plan StitchPlan) Explain(name string) string {
	tree := treeprint.NewWithRoot(fmt.Sprintf("Plan %s:", name))
	for r, round := range plan {
		branch := tree.AddBranch(fmt.Sprintf("Round %d (stitch width %d):", r, len(round)))
		for _, colIdx := range round {
			branch.AddNode(fmt.Sprintf("column %d", colIdx))
		}
	}
	return tree.String()
}

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
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/daviszhen/stitch/pkg/stitch"
	"github.com/daviszhen/stitch/pkg/util"
)

// Benchmark owns the raw columns, the registered plans and the summary
// sink, and drives the round loop: stitch, then sort (global on round 0,
// grouped afterwards), then group extraction (refining before the last
// round, index-only on it).
type Benchmark struct {
	plans   []StitchPlan
	rawData []stitch.RawColumn
	out     io.Writer
	closer  io.Closer

	collectGroupInfo bool
}

func NewBenchmark(out io.Writer) *Benchmark {
	return &Benchmark{out: out}
}

// NewFileBenchmark appends summaries to the file at path. A sink that
// cannot be opened is a hard error (OutputIOFailure).
func NewFileBenchmark(path string) (*Benchmark, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output file %s: %w", path, err)
	}
	ret := NewBenchmark(file)
	ret.closer = file
	return ret, nil
}

func (b *Benchmark) Close() error {
	if b.closer != nil {
		return b.closer.Close()
	}
	return nil
}

func (b *Benchmark) SetCollectGroupInfo(v bool) {
	b.collectGroupInfo = v
}

// RegisterPlan keeps a private copy so the caller cannot mutate a plan
// after registration. Plan validity is checked at run time against the
// registered data.
func (b *Benchmark) RegisterPlan(plan StitchPlan) {
	b.plans = append(b.plans, plan.Copy())
}

func (b *Benchmark) RegisterPlans(plans []StitchPlan) {
	for _, plan := range plans {
		b.RegisterPlan(plan)
	}
}

// RegisterData rejects the InvalidData conditions: no columns, or columns
// of unequal length.
func (b *Benchmark) RegisterData(data []stitch.RawColumn) error {
	if util.Size(data) < 1 {
		return fmt.Errorf("invalid data size %d", len(data))
	}
	rowCount := len(data[0])
	for _, column := range data {
		if len(column) != rowCount {
			return fmt.Errorf("data size mismatch: %d vs %d", len(column), rowCount)
		}
	}
	b.rawData = data
	return nil
}

func (b *Benchmark) rowCount() int {
	if util.Empty(b.rawData) {
		return 0
	}
	return len(b.rawData[0])
}

func identityPermutation(n int) []uint32 {
	indices := make([]uint32, n)
	for i := range indices {
		indices[i] = uint32(i)
	}
	return indices
}

// executeOnce runs every round of plan once, recording per-operator wall
// time into stats when it is non-nil. It returns the final permutation.
func (b *Benchmark) executeOnce(plan StitchPlan, stats *PlanStats) ([]uint32, error) {
	roundCount := len(plan)
	var globalTimer, operatorTimer, roundTimer Timer

	globalTimer.Start()
	state := &stitch.SortingState{
		Indices: identityPermutation(b.rowCount()),
	}
	var finalIndices []uint32

	for round := 0; round < roundCount; round++ {
		roundTimer.Start()
		columns := make([]stitch.RawColumn, 0, len(plan[round]))
		for _, colIdx := range plan[round] {
			columns = append(columns, b.rawData[colIdx])
		}

		operatorTimer.Start()
		stitched := stitch.Stitch(columns, state.Indices)
		operatorTimer.Stop()
		if stats != nil {
			stats.Record(TimingStitch, round, operatorTimer.ElapsedMS())
		}

		operatorTimer.Start()
		var err error
		if round == 0 {
			err = stitched.Sort()
		} else {
			err = stitched.SortGroups(state.Groups)
		}
		operatorTimer.Stop()
		if err != nil {
			stitched.Close()
			return nil, err
		}
		if stats != nil {
			stats.Record(TimingSort, round, operatorTimer.ElapsedMS())
		}

		operatorTimer.Start()
		if round < roundCount-1 {
			if round == 0 {
				state = stitched.GroupsAndIndex()
			} else {
				state = stitched.RefineGroups(state.Groups)
			}
		} else {
			finalIndices = stitched.IndexOnly()
		}
		operatorTimer.Stop()
		if stats != nil {
			stats.Record(TimingGroup, round, operatorTimer.ElapsedMS())
		}
		stitched.Close()

		roundTimer.Stop()
		if stats != nil {
			stats.Record(TimingRound, round, roundTimer.ElapsedMS())
		}
	}
	globalTimer.Stop()
	if stats != nil {
		stats.RecordTotal(globalTimer.ElapsedMS())
	}
	util.AssertFunc(len(finalIndices) == b.rowCount())
	return finalIndices, nil
}

// collectGroups is the untimed pass gathering per-round singleton counts.
// Unlike the timed loop it runs group extraction after every round,
// including the last.
func (b *Benchmark) collectGroups(plan StitchPlan) (*GroupInfo, error) {
	info := &GroupInfo{
		plan:         plan,
		rowCount:     b.rowCount(),
		totalColumns: plan.ColumnCount(),
	}
	state := &stitch.SortingState{
		Indices: identityPermutation(b.rowCount()),
	}
	for round := 0; round < len(plan); round++ {
		columns := make([]stitch.RawColumn, 0, len(plan[round]))
		for _, colIdx := range plan[round] {
			columns = append(columns, b.rawData[colIdx])
		}
		stitched := stitch.Stitch(columns, state.Indices)
		var err error
		if round == 0 {
			err = stitched.Sort()
		} else {
			err = stitched.SortGroups(state.Groups)
		}
		if err != nil {
			stitched.Close()
			return nil, err
		}
		if round == 0 {
			state = stitched.GroupsAndIndex()
		} else {
			state = stitched.RefineGroups(state.Groups)
		}
		stitched.Close()
		info.Singletons = append(info.Singletons, state.SingletonCount())
	}
	return info, nil
}

// RunPlan executes one registered plan numRuns times and appends its
// summary block to the sink.
func (b *Benchmark) RunPlan(planIdx int, stats *PlanStats, numRuns int) error {
	if planIdx >= len(b.plans) {
		return fmt.Errorf("invalid plan index %d, plan size: %d", planIdx, len(b.plans))
	}
	plan := b.plans[planIdx]
	if err := b.validate(plan); err != nil {
		return err
	}

	for run := 0; run < numRuns; run++ {
		if _, err := b.executeOnce(plan, stats); err != nil {
			return err
		}
	}
	if b.collectGroupInfo {
		info, err := b.collectGroups(plan)
		if err != nil {
			return err
		}
		stats.SetGroupInfo(info)
	}
	if b.out != nil {
		if err := stats.WriteSummary(b.out); err != nil {
			return &SinkError{Err: err}
		}
	}
	return nil
}

// SinkError marks a summary-sink write failure, which aborts the whole run
// instead of skipping to the next plan.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return "summary sink: " + e.Err.Error()
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

func (b *Benchmark) validate(plan StitchPlan) error {
	if util.Empty(b.rawData) {
		return fmt.Errorf("no data registered")
	}
	return plan.Validate(len(b.rawData))
}

// RunAllPlans runs every registered plan. A plan failing validation is
// reported to the error stream and skipped; the remaining plans still run.
// A summary sink failure aborts.
func (b *Benchmark) RunAllPlans(numRuns int) error {
	for i := range b.plans {
		stats := NewPlanStats(b.plans[i], b.rowCount())
		err := b.RunPlan(i, stats, numRuns)
		if err == nil {
			continue
		}
		var sinkErr *SinkError
		if errors.As(err, &sinkErr) {
			return err
		}
		util.Error("skip plan",
			zap.Int("planIdx", i),
			zap.String("plan", b.plans[i].String()),
			zap.Error(err))
	}
	return nil
}

// FinalIndices runs plan once without timing and returns the resulting
// permutation. Used by tests and the plan-equivalence checks.
func (b *Benchmark) FinalIndices(plan StitchPlan) ([]uint32, error) {
	if err := b.validate(plan); err != nil {
		return nil, err
	}
	return b.executeOnce(plan, nil)
}

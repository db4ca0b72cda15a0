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
	"io"
	"sort"

	"github.com/govalues/decimal"
)

type TimingType int

const (
	TimingStitch TimingType = iota
	TimingSort
	TimingGroup
	TimingRound
)

// PlanStats accumulates per-operator timings over the repeated runs of one
// plan and renders the summary block.
type PlanStats struct {
	plan        StitchPlan
	rowCount    int
	columnCount int

	stitchTiming     [][]float64
	sortTiming       [][]float64
	groupTiming      [][]float64
	roundTotalTiming [][]float64
	totalTiming      []float64

	groupInfo *GroupInfo
}

func NewPlanStats(plan StitchPlan, rowCount int) *PlanStats {
	stats := &PlanStats{
		plan:             plan,
		rowCount:         rowCount,
		columnCount:      plan.ColumnCount(),
		stitchTiming:     make([][]float64, len(plan)),
		sortTiming:       make([][]float64, len(plan)),
		groupTiming:      make([][]float64, len(plan)),
		roundTotalTiming: make([][]float64, len(plan)),
	}
	return stats
}

func (stats *PlanStats) Record(typ TimingType, round int, ms float64) {
	switch typ {
	case TimingStitch:
		stats.stitchTiming[round] = append(stats.stitchTiming[round], ms)
	case TimingSort:
		stats.sortTiming[round] = append(stats.sortTiming[round], ms)
	case TimingGroup:
		stats.groupTiming[round] = append(stats.groupTiming[round], ms)
	case TimingRound:
		stats.roundTotalTiming[round] = append(stats.roundTotalTiming[round], ms)
	default:
		panic(fmt.Sprintf("invalid timing type %d", typ))
	}
}

func (stats *PlanStats) RecordTotal(ms float64) {
	stats.totalTiming = append(stats.totalTiming, ms)
}

func (stats *PlanStats) SetGroupInfo(info *GroupInfo) {
	stats.groupInfo = info
}

// Median of an unordered measurement sequence; 0 when empty.
func Median(timing []float64) float64 {
	if len(timing) < 1 {
		return 0
	}
	sorted := make([]float64, len(timing))
	copy(sorted, timing)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func (stats *PlanStats) WriteSummary(out io.Writer) error {
	var err error
	write := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(out, format, args...)
		}
	}
	write("Plan: %s\n", stats.plan.String())
	write("Row count: %d\n", stats.rowCount)
	write("Column count: %d\n", stats.columnCount)
	if stats.groupInfo != nil {
		write("Skipped data rate: %s%%\n", stats.groupInfo.SkippedDataRate())
		write("Unique group counts:\n")
		for r, cnt := range stats.groupInfo.Singletons {
			write(" [Round %d] %d/%d\n", r, cnt, stats.rowCount)
		}
	}
	write("Total time: %vms\n", Median(stats.totalTiming))
	for i := range stats.plan {
		write("Round %d : Stitch: %vms, Sort: %vms, Group: %vms, Total: %vms\n",
			i,
			Median(stats.stitchTiming[i]),
			Median(stats.sortTiming[i]),
			Median(stats.groupTiming[i]),
			Median(stats.roundTotalTiming[i]))
	}
	write("\n")
	return err
}

// GroupInfo is the result of the untimed group-collection pass: the number
// of resolved (length-1) groups after each round.
type GroupInfo struct {
	plan         StitchPlan
	rowCount     int
	totalColumns int
	Singletons   []int
}

// SkippedDataRate is the fraction of residual column-row work later rounds
// avoid because rows resolved early, as a percentage rounded to at most two
// decimals (trailing zeros are not printed, so 25% reads "25").
//
// rate = sum_r(newSingletons_r * columnsRemainingAfter_r) / (N * totalColumns)
func (info *GroupInfo) SkippedDataRate() string {
	if info.rowCount == 0 || info.totalColumns == 0 {
		return "0"
	}
	columnsUsed := 0
	prevSingletons := 0
	skipped := int64(0)
	for r, round := range info.plan {
		columnsUsed += len(round)
		newSingletons := info.Singletons[r] - prevSingletons
		prevSingletons = info.Singletons[r]
		skipped += int64(newSingletons) * int64(info.totalColumns-columnsUsed)
	}
	num := decimal.MustNew(skipped*100, 0)
	den := decimal.MustNew(int64(info.rowCount)*int64(info.totalColumns), 0)
	rate, err := num.Quo(den)
	if err != nil {
		return "0"
	}
	return rate.Round(2).String()
}

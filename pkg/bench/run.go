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
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/daviszhen/stitch/pkg/datagen"
	"github.com/daviszhen/stitch/pkg/util"
)

const (
	defaultRows            = 1 << 20
	defaultColumns         = 4
	defaultCardinalityRate = 0.001
	defaultRuns            = 5
	defaultOutputPath      = "benchmark_result"

	// the centric workload draws from [0, 100]; with fewer than 100 rows the
	// rate is capped at 1 and the range is [0, rows]
	centricValueRange = 100
)

// Run is the whole benchmark flow: build (or load) the data sets, register
// the plans, and execute every plan against every data set, one summary
// file per data set.
func Run(cfg *util.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	start := time.Now()
	defer func() {
		util.Info("run finished", zap.Duration("took", time.Since(start)))
	}()

	rows := cfg.Data.Rows
	if rows < 1 {
		rows = defaultRows
	}
	columns := cfg.Data.Columns
	if columns < 1 {
		columns = defaultColumns
	}
	rate := cfg.Data.CardinalityRate
	if rate == 0 {
		rate = defaultCardinalityRate
	}
	runs := cfg.Bench.Runs
	if runs < 1 {
		runs = defaultRuns
	}
	outputPath := cfg.Bench.OutputPath
	if outputPath == "" {
		outputPath = defaultOutputPath
	}

	planReg := NewPlanRegistry()
	if err := registerPlans(planReg, cfg.Bench.Plans); err != nil {
		return err
	}

	dataReg := NewDataSetRegistry()
	if cfg.Data.Format == "parquet" {
		cols, err := datagen.ReadParquet(cfg.Data.Path)
		if err != nil {
			return err
		}
		if err = dataReg.Register(&DataSet{Name: "parquet", Columns: cols}); err != nil {
			return err
		}
	} else {
		// the scatter and centric workloads build concurrently; a bad
		// cardinality rate aborts the run before anything executes
		centricRate := math.Min(1, float64(centricValueRange)/float64(rows))
		g := errgroup.Group{}
		g.Go(func() error {
			cols, err := datagen.Generate(rows, columns, rate, cfg.Data.Seed)
			if err != nil {
				return err
			}
			return dataReg.Register(&DataSet{Name: "scatter", Columns: cols})
		})
		g.Go(func() error {
			cols, err := datagen.Generate(rows, columns, centricRate,
				cfg.Data.Seed+int64(columns))
			if err != nil {
				return err
			}
			return dataReg.Register(&DataSet{Name: "centric", Columns: cols})
		})
		if err := g.Wait(); err != nil {
			return err
		}
	}
	util.Info("data registration finished", zap.Int("datasets", dataReg.Size()))

	var runErr error
	dataReg.Traversal(func(set *DataSet) bool {
		runErr = runDataSet(set, planReg, outputPath, runs, cfg.Bench.CollectGroupInfo)
		return runErr == nil
	})
	return runErr
}

func registerPlans(reg *PlanRegistry, configured [][][]int) error {
	plans := make([]StitchPlan, 0)
	if len(configured) > 0 {
		for _, p := range configured {
			plans = append(plans, StitchPlan(p))
		}
	} else {
		plans = DefaultPlans()
	}
	for i, plan := range plans {
		if err := reg.Register(fmt.Sprintf("plan%02d", i), plan); err != nil {
			return err
		}
	}
	return nil
}

func runDataSet(
	set *DataSet,
	planReg *PlanRegistry,
	outputPath string,
	runs int,
	collectGroupInfo bool,
) error {
	b, err := NewFileBenchmark(fmt.Sprintf("%s_%s.txt", outputPath, set.Name))
	if err != nil {
		return err
	}
	defer b.Close()
	b.SetCollectGroupInfo(collectGroupInfo)
	if err = b.RegisterData(set.Columns); err != nil {
		util.Error("skip dataset",
			zap.String("dataset", set.Name),
			zap.Error(err))
		return nil
	}
	planReg.Scan(func(entry *PlanEntry) bool {
		b.RegisterPlan(entry.Plan)
		return true
	})
	util.Info("running plans",
		zap.String("dataset", set.Name),
		zap.Int("plans", planReg.Size()),
		zap.Int("runs", runs))
	return b.RunAllPlans(runs)
}

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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.uber.org/zap"

	"github.com/daviszhen/stitch/pkg/bench"
	"github.com/daviszhen/stitch/pkg/datagen"
	"github.com/daviszhen/stitch/pkg/util"
)

func init() {
	cobra.OnInitialize(loadConfig)
	initRunCmd()
	initGenCmd()
	initExplainCmd()
}

var benchCfg = &util.Config{}

///root cmd

var info = "stitchbench"
var RootCmd = &cobra.Command{
	Use:          "stitchbench",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use stitchbench --help or -h")
	},
}

//run cmd

var runInfo = "run the stitching sort benchmark"
var runCmd = &cobra.Command{
	Use:   "run",
	Short: runInfo,
	Long:  runInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		initRunCfg()
		return bench.Run(benchCfg)
	},
}

func initRunCfg() {
	benchCfg.Data.Rows = viper.GetInt("data.rows")
	benchCfg.Data.Columns = viper.GetInt("data.columns")
	benchCfg.Data.CardinalityRate = viper.GetFloat64("data.cardinalityRate")
	benchCfg.Data.Seed = viper.GetInt64("data.seed")
	benchCfg.Data.Path = viper.GetString("data.path")
	benchCfg.Data.Format = viper.GetString("data.format")
	benchCfg.Bench.Runs = viper.GetInt("bench.runs")
	benchCfg.Bench.OutputPath = viper.GetString("bench.outputPath")
	benchCfg.Bench.CollectGroupInfo = viper.GetBool("bench.collectGroupInfo")
}

func initRunCmd() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&benchCfg.Data.Rows, "rows", 0, "rows per column")
	runCmd.Flags().IntVar(&benchCfg.Data.Columns, "columns", 0, "number of raw columns")
	runCmd.Flags().Float64Var(&benchCfg.Data.CardinalityRate, "cardinality_rate", 0, "distinct values as a fraction of the row count, in (0, 1]")
	runCmd.Flags().Int64Var(&benchCfg.Data.Seed, "seed", 0, "rng seed")
	runCmd.Flags().StringVar(&benchCfg.Data.Path, "data_path", "", "parquet data set to sort instead of generated data")
	runCmd.Flags().StringVar(&benchCfg.Data.Format, "data_format", "", "data format. parquet or empty for generated")
	runCmd.Flags().IntVar(&benchCfg.Bench.Runs, "runs", 0, "repetitions per plan")
	runCmd.Flags().StringVar(&benchCfg.Bench.OutputPath, "output_path", "", "summary file prefix")
	runCmd.Flags().BoolVar(&benchCfg.Bench.CollectGroupInfo, "collect_group_info", false, "collect per-round group statistics")

	viper.BindPFlag("data.rows", runCmd.Flags().Lookup("rows"))
	viper.BindPFlag("data.columns", runCmd.Flags().Lookup("columns"))
	viper.BindPFlag("data.cardinalityRate", runCmd.Flags().Lookup("cardinality_rate"))
	viper.BindPFlag("data.seed", runCmd.Flags().Lookup("seed"))
	viper.BindPFlag("data.path", runCmd.Flags().Lookup("data_path"))
	viper.BindPFlag("data.format", runCmd.Flags().Lookup("data_format"))
	viper.BindPFlag("bench.runs", runCmd.Flags().Lookup("runs"))
	viper.BindPFlag("bench.outputPath", runCmd.Flags().Lookup("output_path"))
	viper.BindPFlag("bench.collectGroupInfo", runCmd.Flags().Lookup("collect_group_info"))
}

//gen cmd

var genInfo = "generate a parquet data set"
var genCmd = &cobra.Command{
	Use:   "gen",
	Short: genInfo,
	Long:  genInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		initRunCfg()
		if benchCfg.Data.Path == "" {
			return fmt.Errorf("gen needs --data_path")
		}
		rows := benchCfg.Data.Rows
		if rows < 1 {
			rows = 1 << 20
		}
		columns := benchCfg.Data.Columns
		if columns < 1 {
			columns = 4
		}
		rate := benchCfg.Data.CardinalityRate
		if rate == 0 {
			rate = 0.001
		}
		cols, err := datagen.Generate(rows, columns, rate, benchCfg.Data.Seed)
		if err != nil {
			return err
		}
		if err = datagen.WriteParquet(benchCfg.Data.Path, cols); err != nil {
			return err
		}
		util.Info("data set written",
			zap.String("path", benchCfg.Data.Path),
			zap.Int("rows", rows),
			zap.Int("columns", columns))
		return nil
	},
}

func initGenCmd() {
	RootCmd.AddCommand(genCmd)
	genCmd.Flags().AddFlagSet(runCmd.Flags())
}

//explain cmd

var explainInfo = "print the execution plans"
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: explainInfo,
	Long:  explainInfo,
	Run: func(cmd *cobra.Command, args []string) {
		plans := bench.DefaultPlans()
		for i, plan := range plans {
			fmt.Print(plan.Explain(fmt.Sprintf("plan%02d", i)))
		}
	},
}

func initExplainCmd() {
	RootCmd.AddCommand(explainCmd)
}

var defCfgFilePaths = []string{".", "etc/stitch"}
var cfgFileName = "bench.toml"

func loadConfig() {
	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if util.FileIsValid(fpath) {
			viper.SetConfigFile(fpath)
			err := viper.ReadInConfig()
			if err != nil {
				util.Error("load config file failed",
					zap.String("fpath", fpath),
					zap.Error(err))
				continue
			}
			// viper covers the scalar options; the nested plan lists come
			// from decoding the file directly
			if _, err = toml.DecodeFile(fpath, benchCfg); err != nil {
				util.Error("decode config file failed",
					zap.String("fpath", fpath),
					zap.Error(err))
			}
			break
		}
	}
}

func main() {
	defer func() {
		if v := recover(); v != nil {
			fmt.Println(util.ConvertPanicError(v))
			os.Exit(1)
		}
	}()
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hedgelab/hedgelab/hedge"
	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/report"
	"github.com/hedgelab/hedgelab/series"
)

var (
	hedgePositions string
	hedgeOutputDir string
	hedgeFormat    string
)

func init() {
	rootCmd.AddCommand(hedgeCmd)

	viper.BindEnv("hedge.ratio", "HEDGELAB_HEDGE_RATIO")
	hedgeCmd.Flags().Float64("ratio", 1.0, "hedge ratio used when no position file is given")
	viper.BindPFlag("hedge.ratio", hedgeCmd.Flags().Lookup("ratio"))

	hedgeCmd.Flags().Float64("initial-net-value", 100_000_000.0, "starting value of the hedged net value curve")
	viper.BindPFlag("hedge.initial_net_value", hedgeCmd.Flags().Lookup("initial-net-value"))

	hedgeCmd.Flags().StringVarP(&hedgePositions, "positions", "p", "", "position file with per day invested ratios")
	hedgeCmd.Flags().StringVarP(&hedgeOutputDir, "output-dir", "d", "", "directory to write one report per index to")
	hedgeCmd.Flags().StringVar(&hedgeFormat, "format", "csv", "report format: `csv`, `json`, `xlsx` or `backtest` (JSON lines export plus a position file)")
}

type hedgeRun struct {
	name   string
	result *hedge.Result
	err    error
}

var hedgeCmd = &cobra.Command{
	Use:   "hedge BACKTEST INDEX...",
	Short: "Hedge a backtest against one or more indices",
	Long: `Subtract the invested share of each index's daily return from the strategy's
daily return and report the hedged return series. Every index is hedged
independently.`,
	Args: cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		switch hedgeFormat {
		case "csv", "json", "xlsx", "backtest":
		default:
			log.Fatal().Str("Format", hedgeFormat).Msg("unknown report format")
		}

		opts := hedgeOptions()
		analysis := analysisOptions()

		bt := mustLoadReturns(args[0])
		strategy := metrics.ExtractDaily(bt.Strategy)

		var positions *series.Ratios
		if hedgePositions != "" {
			var err error
			positions, err = inputCache().Positions(hedgePositions)
			if err != nil {
				log.Fatal().Stack().Err(err).Str("FileName", hedgePositions).Msg("could not load positions")
			}
		}

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			runs []hedgeRun
		)

		for _, fn := range args[1:] {
			wg.Add(1)
			go func(fn string) {
				defer wg.Done()
				run := hedgeRun{name: fileLabel(fn)}

				index, err := inputCache().Index(fn)
				if err != nil {
					run.err = err
				} else {
					run.result, run.err = hedge.Compose(strategy, index, positions, opts)
				}

				mu.Lock()
				runs = append(runs, run)
				mu.Unlock()
			}(fn)
		}
		wg.Wait()

		sort.Slice(runs, func(i, j int) bool {
			return runs[i].name < runs[j].name
		})

		summaries := []report.NamedSummary{
			{Name: fileLabel(args[0]), Summary: metrics.Summarize(strategy, series.Empty[series.PercentPoints](series.Daily), analysis)},
		}

		failed := 0
		for _, run := range runs {
			if run.err != nil {
				log.Error().Stack().Err(run.err).Str("Index", run.name).Msg("could not hedge against index")
				failed++
				continue
			}

			hedged := run.result.Daily()
			summary := metrics.Summarize(hedged, series.Empty[series.PercentPoints](series.Daily), analysis)
			summaries = append(summaries, report.NamedSummary{Name: "hedged " + run.name, Summary: summary})

			log.Info().Str("Index", run.name).Object("NetValueDrawdown", run.result.MaxDrawdown()).Msg("hedged against index")

			if hedgeOutputDir != "" {
				writeHedgeReport(filepath.Join(hedgeOutputDir, fmt.Sprintf("%s_%s", fileLabel(args[0]), run.name)), run.result, summary)
			}
		}

		report.SummaryTable(os.Stdout, summaries...)

		if failed == len(runs) {
			log.Fatal().Int("NumIndices", len(runs)).Msg("every hedge failed")
		}
	},
}

// writeHedgeReport writes res next to base, adding the extension of the
// selected format
func writeHedgeReport(base string, res *hedge.Result, summary metrics.PerformanceSummary) {
	fn := base + "." + hedgeFormat
	switch hedgeFormat {
	case "backtest":
		benchmark := metrics.BuildCumulative(res.IndexDaily(), metrics.DefaultInitialValue)
		writeOutput(base+".jsonl", func(w io.Writer) error {
			return report.WriteBacktestJSONL(w, res.Cumulative(), benchmark)
		})
		writeOutput(base+"_positions.json", func(w io.Writer) error {
			return report.WritePositionsJSON(w, res, filepath.Base(base))
		})
	case "xlsx":
		wb := report.Workbook{
			Summaries: []report.NamedSummary{{Name: "hedged", Summary: summary}},
			Series:    []report.Column{{Name: "hedge_cumulative_return", Series: res.Cumulative()}},
			Hedge:     res,
		}
		if err := report.WriteXLSX(fn, wb); err != nil {
			log.Fatal().Err(err).Str("FileName", fn).Msg("could not write workbook")
		}
		log.Info().Str("FileName", fn).Msg("wrote workbook")
	case "json":
		writeOutput(fn, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		})
	default:
		writeOutput(fn, func(w io.Writer) error {
			return report.WriteHedgeCSV(w, res)
		})
	}
}

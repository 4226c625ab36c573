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
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hedgelab/hedgelab/common"
	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/report"
	"github.com/hedgelab/hedgelab/series"
)

var (
	combineOutput string
	combineFormat string
)

func init() {
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringVarP(&combineOutput, "output", "o", "", "write the combined series to a file")
	combineCmd.Flags().StringVar(&combineFormat, "format", "", "output format: `csv`, `xlsx` or `backtest` (JSON lines export); inferred from the file name when empty")
}

// outputFormat picks the format for fn; .jsonl files use the backtest export
// layout and .xlsx files a workbook
func outputFormat(fn, format string) string {
	if format != "" {
		return format
	}
	name := strings.TrimSuffix(strings.ToLower(fn), common.Lz4Ext)
	switch {
	case strings.HasSuffix(name, ".jsonl"):
		return "backtest"
	case strings.HasSuffix(name, ".xlsx"):
		return "xlsx"
	default:
		return "csv"
	}
}

var combineCmd = &cobra.Command{
	Use:   "combine FIRST SECOND",
	Short: "Join two backtests covering consecutive periods",
	Long: `Join the daily returns of two backtests and recompound them into one
cumulative curve. On dates covered by both backtests SECOND wins.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		first := mustLoadReturns(args[0])
		second := mustLoadReturns(args[1])

		daily := metrics.Combine(metrics.ExtractDaily(first.Strategy), metrics.ExtractDaily(second.Strategy))
		cumulative := metrics.BuildCumulative(daily, metrics.DefaultInitialValue)

		log.Info().Object("Daily", daily).Msg("combined backtests")

		summary := metrics.Summarize(daily, series.Empty[series.PercentPoints](series.Daily), analysisOptions())
		summaries := []report.NamedSummary{{Name: "combined", Summary: summary}}
		report.SummaryTable(os.Stdout, summaries...)

		if combineOutput == "" {
			return
		}

		cols := []report.Column{
			{Name: "cumulative_return", Series: cumulative},
			{Name: "daily_return", Series: daily},
		}

		switch format := outputFormat(combineOutput, combineFormat); format {
		case "backtest":
			writeOutput(combineOutput, func(w io.Writer) error {
				return report.WriteBacktestJSONL(w, cumulative, nil)
			})
		case "xlsx":
			if err := report.WriteXLSX(combineOutput, report.Workbook{Summaries: summaries, Series: cols}); err != nil {
				log.Fatal().Err(err).Str("FileName", combineOutput).Msg("could not write workbook")
			}
		case "csv":
			writeOutput(combineOutput, func(w io.Writer) error {
				return report.WriteSeriesCSV(w, cols...)
			})
		default:
			log.Fatal().Str("Format", format).Msg("unknown output format")
		}
	},
}

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
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/report"
	"github.com/hedgelab/hedgelab/series"
)

var (
	metricsOutput string
	topDrawdowns  int
)

func init() {
	rootCmd.AddCommand(metricsCmd)

	metricsCmd.Flags().StringVarP(&metricsOutput, "output", "o", "", "write the summary to a .csv or .xlsx file")
	metricsCmd.Flags().IntVar(&topDrawdowns, "top", 0, "list the N deepest drawdown episodes of each file")
}

// fileLabel names a report column after the input file
func fileLabel(fn string) string {
	base := filepath.Base(fn)
	for _, ext := range []string{".lz4", ".jsonl", ".json", ".txt"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

var metricsCmd = &cobra.Command{
	Use:   "metrics BACKTEST...",
	Short: "Summarize the performance of backtest exports",
	Long: `Compute the annualized return, volatility, Sharpe ratio, maximum drawdown and
longest recovery of each backtest. When the backtest recorded a benchmark its
summary is listed next to the strategy.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := analysisOptions()

		summaries := make([]report.NamedSummary, 0, len(args)*2)
		wb := report.Workbook{}

		for _, fn := range args {
			bt := mustLoadReturns(fn)
			label := fileLabel(fn)

			daily := metrics.ExtractDaily(bt.Strategy)
			benchDaily := metrics.ExtractDaily(bt.Benchmark)

			summary := metrics.Summarize(daily, benchDaily, opts)
			log.Info().Str("Name", label).Object("Summary", summary).Msg("summarized strategy")
			summaries = append(summaries, report.NamedSummary{Name: label, Summary: summary})
			wb.Series = append(wb.Series, report.Column{Name: label, Series: bt.Strategy})

			if !benchDaily.IsEmpty() {
				benchSummary := metrics.Summarize(benchDaily, series.Empty[series.PercentPoints](series.Daily), opts)
				summaries = append(summaries, report.NamedSummary{Name: label + " (benchmark)", Summary: benchSummary})
				wb.Series = append(wb.Series, report.Column{Name: label + "_benchmark", Series: bt.Benchmark})
			}

			if topDrawdowns > 0 {
				episodes := metrics.TopDrawdowns(bt.Strategy, topDrawdowns)
				os.Stdout.WriteString("\n" + label + "\n")
				report.DrawdownTable(os.Stdout, episodes)
				wb.Drawdowns = append(wb.Drawdowns, episodes...)
			}
		}

		report.SummaryTable(os.Stdout, summaries...)

		if metricsOutput != "" {
			wb.Summaries = summaries
			writeWorkbook(metricsOutput, wb, func(w io.Writer) error {
				return report.WriteSummaryCSV(w, summaries...)
			})
		}
	},
}

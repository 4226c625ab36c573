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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/report"
)

var (
	intervalsOutput string
	intervalNames   []string
)

func init() {
	rootCmd.AddCommand(intervalsCmd)

	viper.BindEnv("intervals.file", "HEDGELAB_INTERVALS")
	intervalsCmd.Flags().String("intervals", "", "TOML file with the named intervals")
	viper.BindPFlag("intervals.file", intervalsCmd.Flags().Lookup("intervals"))

	intervalsCmd.Flags().StringSliceVarP(&intervalNames, "name", "n", nil, "only report the named intervals")
	intervalsCmd.Flags().StringVarP(&intervalsOutput, "output", "o", "", "write the summaries to a .csv or .xlsx file")
}

var intervalsCmd = &cobra.Command{
	Use:   "intervals BACKTEST",
	Short: "Summarize a backtest over named market intervals",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		table := loadIntervals()

		intervals := table.All()
		if len(intervalNames) > 0 {
			intervals = make([]metrics.Interval, 0, len(intervalNames))
			for _, name := range intervalNames {
				interval, err := table.Get(name)
				if err != nil {
					log.Fatal().Err(err).Msg("could not select interval")
				}
				intervals = append(intervals, interval)
			}
		}

		bt := mustLoadReturns(args[0])
		daily := metrics.ExtractDaily(bt.Strategy)
		benchmark := metrics.ExtractDaily(bt.Benchmark)
		opts := analysisOptions()

		summaries := make([]report.NamedSummary, 0, len(intervals))
		for _, interval := range intervals {
			summary := metrics.SummarizeInterval(daily, benchmark, interval, opts)
			if summary.TradingDays == 0 {
				log.Warn().Str("Interval", interval.Name).Msg("backtest has no data in interval")
			}
			summaries = append(summaries, report.NamedSummary{Name: interval.Name, Summary: summary})
		}

		report.SummaryTable(os.Stdout, summaries...)

		if intervalsOutput != "" {
			writeWorkbook(intervalsOutput, report.Workbook{Summaries: summaries}, func(w io.Writer) error {
				return report.WriteSummaryCSV(w, summaries...)
			})
		}
	},
}

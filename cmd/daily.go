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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/report"
)

var dailyOutput string

func init() {
	rootCmd.AddCommand(dailyCmd)

	dailyCmd.Flags().StringVarP(&dailyOutput, "output", "o", "-", "output file; .xlsx writes a workbook, .lz4 compresses the csv")
}

var dailyCmd = &cobra.Command{
	Use:   "daily-returns BACKTEST",
	Short: "Convert cumulative returns into daily returns",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bt := mustLoadReturns(args[0])
		daily := metrics.ExtractDaily(bt.Strategy)

		log.Info().Int("NumDays", daily.Len()).Msg("extracted daily returns")

		cols := []report.Column{
			{Name: "cumulative_return", Series: bt.Strategy},
			{Name: "daily_return", Series: daily},
		}

		writeWorkbook(dailyOutput, report.Workbook{Series: cols}, func(w io.Writer) error {
			return report.WriteSeriesCSV(w, cols...)
		})
	},
}

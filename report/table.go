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

package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/metrics"
)

// SummaryTable renders the summaries side by side, one column per summary
func SummaryTable(w io.Writer, summaries ...NamedSummary) {
	table := tablewriter.NewWriter(w)

	header := []string{"Metric"}
	for _, ns := range summaries {
		header = append(header, ns.Name)
	}
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	rows := []struct {
		label string
		value func(metrics.PerformanceSummary) string
	}{
		{"Period", func(s metrics.PerformanceSummary) string { return fmt.Sprintf("%s .. %s", s.PeriodStart, s.PeriodEnd) }},
		{"Trading Days", func(s metrics.PerformanceSummary) string { return fmt.Sprintf("%d", s.TradingDays) }},
		{"Total Return", func(s metrics.PerformanceSummary) string { return fmt.Sprintf("%.2f%%", s.TotalReturn) }},
		{"Annualized Return", func(s metrics.PerformanceSummary) string { return fmt.Sprintf("%.2f%%", s.AnnualizedReturn) }},
		{"Volatility", func(s metrics.PerformanceSummary) string { return fmt.Sprintf("%.2f%%", s.Volatility) }},
		{"Sharpe Ratio", func(s metrics.PerformanceSummary) string { return fmt.Sprintf("%.2f", s.SharpeRatio) }},
		{"Max Drawdown", func(s metrics.PerformanceSummary) string {
			return fmt.Sprintf("%.2f%% (%s .. %s)", float64(s.MaxDrawdown.Depth),
				datekey.Format(s.MaxDrawdown.PeakDate), datekey.Format(s.MaxDrawdown.TroughDate))
		}},
		{"Longest Recovery", func(s metrics.PerformanceSummary) string {
			suffix := ""
			if !s.LongestRecovery.Recovered && !s.LongestRecovery.IsZero() {
				suffix = " open"
			}
			return fmt.Sprintf("%d days (%s .. %s)%s", s.LongestRecovery.Duration,
				datekey.Format(s.LongestRecovery.PeakDate), datekey.Format(s.LongestRecovery.RecoveryDate), suffix)
		}},
		{"Win Rate", func(s metrics.PerformanceSummary) string { return fmt.Sprintf("%.2f%%", s.WinRate) }},
		{"Avg Daily Return", func(s metrics.PerformanceSummary) string { return fmt.Sprintf("%.4f%%", s.AverageDailyReturn) }},
		{"Benchmark Annualized", func(s metrics.PerformanceSummary) string {
			if !s.HasBenchmark {
				return "-"
			}
			return fmt.Sprintf("%.2f%%", s.BenchmarkAnnualizedReturn)
		}},
		{"Excess Return", func(s metrics.PerformanceSummary) string {
			if !s.HasBenchmark {
				return "-"
			}
			return fmt.Sprintf("%.2f%%", s.ExcessReturn)
		}},
	}

	for _, row := range rows {
		line := []string{row.label}
		for _, ns := range summaries {
			line = append(line, row.value(ns.Summary))
		}
		table.Append(line)
	}

	table.Render()
}

// DrawdownTable renders drawdown episodes, e.g. the output of
// metrics.TopDrawdowns
func DrawdownTable(w io.Writer, episodes []metrics.RecoveryEpisode) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Peak", "Trough", "Recovery", "Depth", "Days", "Calendar Days"})
	table.SetFooter([]string{"", "", "", "", "", "Num Rows", fmt.Sprintf("%d", len(episodes))})
	table.SetBorder(false)

	for idx, ep := range episodes {
		recovery := datekey.Format(ep.RecoveryDate)
		if !ep.Recovered {
			recovery = "(open)"
		}
		table.Append([]string{
			fmt.Sprintf("%d", idx+1),
			datekey.Format(ep.PeakDate),
			datekey.Format(ep.TroughDate),
			recovery,
			fmt.Sprintf("%.2f%%", float64(ep.MaxDepth)),
			fmt.Sprintf("%d", ep.Duration),
			fmt.Sprintf("%d", ep.CalendarDays),
		})
	}

	table.Render()
}

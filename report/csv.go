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

// Package report exports series, summaries and hedge results as CSV, XLSX
// and console tables. Values are written unformatted: percentage points as
// raw floats and dates as ISO strings.
package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/hedge"
	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/series"
)

// Column is a named series written as one column of a report
type Column struct {
	Name   string
	Series *series.Returns
}

// NamedSummary labels a performance summary, e.g. with an interval name
type NamedSummary struct {
	Name    string
	Summary metrics.PerformanceSummary
}

var summaryHeader = []string{
	"name",
	"period_start",
	"period_end",
	"trading_days",
	"annualized_return",
	"total_return",
	"volatility",
	"sharpe_ratio",
	"max_drawdown",
	"max_drawdown_start",
	"max_drawdown_end",
	"longest_recovery_days",
	"longest_recovery_calendar_days",
	"recovery_start",
	"recovery_end",
	"recovered",
	"win_rate",
	"average_daily_return",
	"benchmark_annualized_return",
	"benchmark_total_return",
	"excess_return",
}

var hedgeHeader = []string{
	"date",
	"backtest_return",
	"index_return",
	"position_ratio",
	"hedge_return",
	"hedge_net_value",
	"hedge_cash",
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func summaryRecord(ns NamedSummary) []string {
	s := ns.Summary
	return []string{
		ns.Name,
		s.PeriodStart,
		s.PeriodEnd,
		strconv.Itoa(s.TradingDays),
		formatFloat(s.AnnualizedReturn),
		formatFloat(s.TotalReturn),
		formatFloat(s.Volatility),
		formatFloat(s.SharpeRatio),
		formatFloat(float64(s.MaxDrawdown.Depth)),
		datekey.Format(s.MaxDrawdown.PeakDate),
		datekey.Format(s.MaxDrawdown.TroughDate),
		strconv.Itoa(s.LongestRecovery.Duration),
		strconv.Itoa(s.LongestRecovery.CalendarDays),
		datekey.Format(s.LongestRecovery.PeakDate),
		datekey.Format(s.LongestRecovery.RecoveryDate),
		strconv.FormatBool(s.LongestRecovery.Recovered),
		formatFloat(s.WinRate),
		formatFloat(s.AverageDailyReturn),
		formatFloat(s.BenchmarkAnnualizedReturn),
		formatFloat(s.BenchmarkTotalReturn),
		formatFloat(s.ExcessReturn),
	}
}

func hedgeRecord(row hedge.Row) []string {
	return []string{
		datekey.Format(row.Date),
		formatFloat(float64(row.StrategyReturn)),
		formatFloat(float64(row.IndexReturn)),
		formatFloat(float64(row.PositionRatio)),
		formatFloat(float64(row.HedgeReturn)),
		formatFloat(row.HedgeNetValue),
		formatFloat(row.HedgeCash),
	}
}

// seriesRows aligns the columns on the union of their dates. A column with
// no observation on a date gets an empty cell.
func seriesRows(cols []Column) [][]string {
	lookup := make([]map[time.Time]series.PercentPoints, len(cols))
	seen := map[time.Time]bool{}
	dates := []time.Time{}

	for idx, col := range cols {
		lookup[idx] = col.Series.AsMap()
		for _, dt := range col.Series.Dates() {
			if !seen[dt] {
				seen[dt] = true
				dates = append(dates, dt)
			}
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([][]string, len(dates))
	for ii, dt := range dates {
		row := make([]string, len(cols)+1)
		row[0] = datekey.Format(dt)
		for jj := range cols {
			if val, ok := lookup[jj][dt]; ok {
				row[jj+1] = formatFloat(float64(val))
			}
		}
		rows[ii] = row
	}
	return rows
}

// WriteSeriesCSV writes a date column followed by one column per series
func WriteSeriesCSV(w io.Writer, cols ...Column) error {
	cw := csv.NewWriter(w)

	header := []string{"date"}
	for _, col := range cols {
		header = append(header, col.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	if err := cw.WriteAll(seriesRows(cols)); err != nil {
		return err
	}
	return cw.Error()
}

// WriteSummaryCSV writes one row per summary
func WriteSummaryCSV(w io.Writer, summaries ...NamedSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}

	for _, ns := range summaries {
		if err := cw.Write(summaryRecord(ns)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteHedgeCSV writes the daily rows of a hedge result
func WriteHedgeCSV(w io.Writer, res *hedge.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(hedgeHeader); err != nil {
		return err
	}

	for _, row := range res.Rows {
		if err := cw.Write(hedgeRecord(row)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

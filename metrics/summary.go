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

package metrics

import (
	"time"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/series"
)

// Interval is a named date range used for period reports
type Interval struct {
	Name  string
	Start time.Time
	End   time.Time
}

// PerformanceSummary aggregates the statistics of a daily return series.
// Values are raw percentage points and dates are ISO strings so that report
// sinks can apply their own formatting.
type PerformanceSummary struct {
	PeriodStart        string          `json:"period_start"`
	PeriodEnd          string          `json:"period_end"`
	TradingDays        int             `json:"trading_days"`
	AnnualizedReturn   float64         `json:"annualized_return"`
	TotalReturn        float64         `json:"total_return"`
	Volatility         float64         `json:"volatility"`
	SharpeRatio        float64         `json:"sharpe_ratio"`
	MaxDrawdown        Drawdown        `json:"max_drawdown"`
	LongestRecovery    RecoveryEpisode `json:"longest_recovery"`
	WinRate            float64         `json:"win_rate"`
	AverageDailyReturn float64         `json:"average_daily_return"`

	HasBenchmark              bool    `json:"has_benchmark"`
	BenchmarkAnnualizedReturn float64 `json:"benchmark_annualized_return"`
	BenchmarkTotalReturn      float64 `json:"benchmark_total_return"`
	ExcessReturn              float64 `json:"excess_return"`
}

// Summarize computes the performance summary of a daily return series and,
// when benchmark is not empty, its return relative to the benchmark over the
// same dates. An empty series returns the zero summary.
func Summarize(daily, benchmark *series.Returns, opts Options) PerformanceSummary {
	if daily.IsEmpty() {
		return PerformanceSummary{}
	}

	opts = resolvePeriod(daily, opts)
	cumulative := BuildCumulative(daily, DefaultInitialValue)

	summary := PerformanceSummary{
		PeriodStart:        datekey.Format(daily.Start()),
		PeriodEnd:          datekey.Format(daily.End()),
		TradingDays:        daily.Len(),
		AnnualizedReturn:   AnnualizedReturn(daily, opts),
		TotalReturn:        TotalReturn(daily),
		Volatility:         Volatility(daily, opts.tradingDays()),
		SharpeRatio:        SharpeRatio(daily, opts),
		MaxDrawdown:        MaxDrawdown(cumulative),
		LongestRecovery:    LongestRecovery(cumulative),
		WinRate:            WinRate(daily),
		AverageDailyReturn: AverageDailyReturn(daily),
	}

	bench := benchmark.Trim(daily.Start(), daily.End())
	if !bench.IsEmpty() {
		summary.HasBenchmark = true
		summary.BenchmarkAnnualizedReturn = AnnualizedReturn(bench, opts)
		summary.BenchmarkTotalReturn = TotalReturn(bench)
		summary.ExcessReturn = summary.AnnualizedReturn - summary.BenchmarkAnnualizedReturn
	}

	return summary
}

// SummarizeInterval restricts both series to the interval (inclusive) and
// summarizes the result. The elapsed period is taken from the observations
// that fall inside the interval.
func SummarizeInterval(daily, benchmark *series.Returns, interval Interval, opts Options) PerformanceSummary {
	opts.Start = time.Time{}
	opts.End = time.Time{}
	return Summarize(daily.Trim(interval.Start, interval.End), benchmark.Trim(interval.Start, interval.End), opts)
}

func resolvePeriod(daily *series.Returns, opts Options) Options {
	switch opts.Annualization {
	case TradingDays:
		opts.Start = time.Time{}
		opts.End = time.Time{}
	default:
		if !opts.hasPeriod() {
			opts.Start = daily.Start()
			opts.End = daily.End()
		}
	}
	return opts
}

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
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/hedgelab/hedgelab/series"
)

func decimals(daily *series.Returns) []float64 {
	vals := make([]float64, 0, daily.Len())
	for _, val := range daily.Values() {
		if isFinite(float64(val)) {
			vals = append(vals, val.Decimal())
		}
	}
	return vals
}

// Volatility is the annualized sample standard deviation of the daily
// returns, in percentage points. Fewer than two observations returns 0.
func Volatility(daily *series.Returns, tradingDaysPerYear int) float64 {
	if tradingDaysPerYear <= 0 {
		tradingDaysPerYear = DefaultTradingDaysPerYear
	}

	vals := decimals(daily)
	if len(vals) < 2 {
		return 0
	}

	return finiteOrZero(stat.StdDev(vals, nil) * math.Sqrt(float64(tradingDaysPerYear)) * 100.0)
}

// SharpeRatio computes the excess annualized return over the risk free rate
// per unit of annualized volatility. A series with (near) zero volatility
// has a Sharpe ratio of 0.
func SharpeRatio(daily *series.Returns, opts Options) float64 {
	if daily.Len() < 2 {
		return 0
	}

	volatility := Volatility(daily, opts.tradingDays())
	if volatility < volatilityEps {
		return 0
	}

	annualized := AnnualizedReturn(daily, opts)
	return finiteOrZero((annualized - float64(opts.RiskFreeRate)) / volatility)
}

// WinRate is the share of days with a positive return, in percentage
// points. Non-finite days are not counted.
func WinRate(daily *series.Returns) float64 {
	days, wins := 0, 0
	for _, val := range daily.Floats() {
		if !isFinite(val) {
			continue
		}
		days++
		if val > 0 {
			wins++
		}
	}
	if days == 0 {
		return 0
	}
	return float64(wins) / float64(days) * 100.0
}

// AverageDailyReturn is the mean of the finite daily returns
func AverageDailyReturn(daily *series.Returns) float64 {
	vals := make([]float64, 0, daily.Len())
	for _, val := range daily.Floats() {
		if isFinite(val) {
			vals = append(vals, val)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

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
	"gonum.org/v1/gonum/floats"

	"github.com/hedgelab/hedgelab/series"
)

// ExtractDaily converts a cumulative return series into daily returns. The
// first daily return equals the first cumulative value; each later value is
// the compounding inversion ((1+curr)/(1+prev) - 1). A previous cumulative
// value of -100% (total loss) or any non-finite value yields 0 for that day.
func ExtractDaily(cumulative *series.Returns) *series.Returns {
	n := cumulative.Len()
	pts := make([]series.DatedValue, n)

	for idx := 0; idx < n; idx++ {
		curr := cumulative.Points[idx]
		pts[idx].Date = curr.Date

		if idx == 0 {
			pts[idx].Value = series.PercentPoints(finiteOrZero(float64(curr.Value)))
			continue
		}

		prev := cumulative.Points[idx-1].Value
		base := 1.0 + prev.Decimal()
		if base == 0 || !isFinite(base) || !isFinite(float64(curr.Value)) {
			continue
		}

		daily := (1.0+curr.Value.Decimal())/base - 1.0
		pts[idx].Value = series.FromDecimal(finiteOrZero(daily))
	}

	return &series.Returns{Unit: series.Daily, Points: pts}
}

// BuildCumulative compounds daily returns from initialValue and re-bases the
// result so that it expresses the cumulative return of the position.
// Non-finite daily values are treated as a flat day. A non-positive
// initialValue is replaced with DefaultInitialValue.
func BuildCumulative(daily *series.Returns, initialValue float64) *series.Returns {
	if initialValue <= 0 || !isFinite(initialValue) {
		initialValue = DefaultInitialValue
	}

	vals := CompoundValues(daily.Floats(), initialValue)
	pts := make([]series.DatedValue, len(vals))

	for idx, val := range vals {
		pts[idx] = series.DatedValue{
			Date:  daily.Points[idx].Date,
			Value: series.PercentPoints(finiteOrZero((val - initialValue) / initialValue * 100.0)),
		}
	}

	return &series.Returns{Unit: series.Cumulative, Points: pts}
}

// CompoundValues returns the raw asset value after each daily return
// (percentage points) starting from initial
func CompoundValues(daily []float64, initial float64) []float64 {
	vals := make([]float64, len(daily))
	curr := initial
	for idx, dd := range daily {
		if !isFinite(dd) {
			dd = 0
		}
		curr *= 1.0 + dd/100.0
		vals[idx] = curr
	}
	return vals
}

// growth returns the total growth factor of a daily return series
func growth(daily *series.Returns) float64 {
	factors := decimals(daily)
	floats.AddConst(1.0, factors)
	return floats.Prod(factors)
}

// TotalReturn compounds the daily returns into a single return over the
// whole series
func TotalReturn(daily *series.Returns) float64 {
	if daily.IsEmpty() {
		return 0
	}
	return finiteOrZero((growth(daily) - 1.0) * 100.0)
}

// Combine joins the daily returns of two backtests into one daily series.
// Where both cover a date the second backtest wins. Recompound the result
// with BuildCumulative to get the combined cumulative curve.
func Combine(first, second *series.Returns) *series.Returns {
	return first.Retag(series.Daily).Merge(second.Retag(series.Daily))
}

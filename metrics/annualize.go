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

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/series"
)

// AnnualizedReturn compounds the daily returns and projects the total growth
// onto a 365 day year.
//
// The elapsed period is DaysBetween(opts.Start, opts.End) when both dates are
// set and positive. Otherwise the number of observations is converted to
// calendar days with 365 / TradingDaysPerYear, so 252 observations count as
// one year.
//
// A total growth factor at or below zero (loss of 100% or more) is annualized
// from its magnitude and the result negated. That keeps the value finite and
// distinct from an ordinary loss; it is not a financial interpretation.
func AnnualizedReturn(daily *series.Returns, opts Options) float64 {
	n := daily.Len()
	if n == 0 {
		return 0
	}

	days := elapsedDays(n, opts)
	if days <= 0 {
		return 0
	}

	r := growth(daily)

	var annualized float64
	if r <= 0 {
		x := math.Pow(math.Abs(r), 1.0/days) - 1.0
		annualized = -(math.Pow(1.0+x, daysPerYear) - 1.0)
	} else {
		dailyRate := math.Pow(r, 1.0/days) - 1.0
		annualized = math.Pow(1.0+dailyRate, daysPerYear) - 1.0
	}

	return finiteOrZero(annualized * 100.0)
}

func elapsedDays(n int, opts Options) float64 {
	if opts.hasPeriod() {
		if days := datekey.DaysBetween(opts.Start, opts.End); days > 0 {
			return float64(days)
		}
	}
	return float64(n) * daysPerYear / float64(opts.tradingDays())
}

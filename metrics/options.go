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

// Package metrics turns daily and cumulative return series into derived
// series and summary statistics. Every value is in percentage points unless
// stated otherwise. All functions are pure: inputs are never modified and
// degenerate input yields a zero-valued result rather than an error.
package metrics

import (
	"math"
	"time"

	"github.com/hedgelab/hedgelab/series"
)

// Annualization selects how the elapsed period of a series is measured
type Annualization string

const (
	// CalendarDays uses the real number of days between the first and last
	// observation unless explicit dates are given
	CalendarDays Annualization = "calendar"

	// TradingDays converts the observation count into days using
	// TradingDaysPerYear
	TradingDays Annualization = "trading"
)

const (
	DefaultTradingDaysPerYear = 252
	DefaultRiskFreeRate       = series.PercentPoints(3.0)
	DefaultInitialValue       = 100.0

	daysPerYear   = 365.0
	volatilityEps = 1e-12
)

// Options control the annualization conventions used by the calculators
type Options struct {
	TradingDaysPerYear int
	RiskFreeRate       series.PercentPoints
	Annualization      Annualization

	// Start and End, when both set, define the elapsed period
	Start time.Time
	End   time.Time
}

// DefaultOptions returns 252 trading days, a 3% risk free rate and calendar
// annualization
func DefaultOptions() Options {
	return Options{
		TradingDaysPerYear: DefaultTradingDaysPerYear,
		RiskFreeRate:       DefaultRiskFreeRate,
		Annualization:      CalendarDays,
	}
}

func (opts Options) tradingDays() int {
	if opts.TradingDaysPerYear <= 0 {
		return DefaultTradingDaysPerYear
	}
	return opts.TradingDaysPerYear
}

func (opts Options) hasPeriod() bool {
	return !opts.Start.IsZero() && !opts.End.IsZero()
}

func finiteOrZero(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

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
	"time"

	"github.com/hedgelab/hedgelab/series"
)

// Drawdown is the largest peak to trough decline of a series. Depth is in
// percentage points and never positive.
type Drawdown struct {
	PeakDate    time.Time
	TroughDate  time.Time
	PeakIndex   int
	TroughIndex int
	Depth       series.PercentPoints
}

// IsZero returns true when the series never fell below a previous peak
func (dd Drawdown) IsZero() bool {
	return dd.Depth == 0
}

// Magnitude returns the size of the decline as a positive number
func (dd Drawdown) Magnitude() series.PercentPoints {
	return series.PercentPoints(math.Abs(float64(dd.Depth)))
}

// nav converts a cumulative return into a net asset value proxy (1 = par).
// Non-finite values are passed through so the scans can skip them.
func nav(cumulative *series.Returns) []float64 {
	levels := make([]float64, cumulative.Len())
	for idx := range levels {
		levels[idx] = 1.0 + cumulative.Points[idx].Value.Decimal()
	}
	return levels
}

// scanDrawdown walks levels once keeping the running peak. Non-finite levels
// are skipped without touching the peak. Only a strictly greater level moves
// the peak and only a strictly deeper decline replaces the worst one.
func scanDrawdown(levels []float64) (worst float64, peakIdx, troughIdx int) {
	peak := math.NaN()
	runningPeakIdx := -1

	for idx, level := range levels {
		if !isFinite(level) {
			continue
		}

		if runningPeakIdx < 0 || level > peak {
			peak = level
			runningPeakIdx = idx
			continue
		}

		if peak <= 0 {
			continue
		}

		dd := (level - peak) / peak
		if dd < worst {
			worst = dd
			peakIdx = runningPeakIdx
			troughIdx = idx
		}
	}

	return finiteOrZero(worst), peakIdx, troughIdx
}

// MaxDrawdown finds the worst decline from a running peak in a cumulative
// return series using a single pass. An empty or never-declining series
// returns the zero Drawdown.
func MaxDrawdown(cumulative *series.Returns) Drawdown {
	worst, peakIdx, troughIdx := scanDrawdown(nav(cumulative))
	if worst == 0 {
		return Drawdown{}
	}

	return Drawdown{
		PeakDate:    cumulative.Points[peakIdx].Date,
		TroughDate:  cumulative.Points[troughIdx].Date,
		PeakIndex:   peakIdx,
		TroughIndex: troughIdx,
		Depth:       series.FromDecimal(worst),
	}
}

// MaxDrawdownOfValues runs the same scan as MaxDrawdown over raw asset
// values such as a net value curve or index levels
func MaxDrawdownOfValues(values []float64) (depth series.PercentPoints, peakIdx, troughIdx int) {
	worst, peakIdx, troughIdx := scanDrawdown(values)
	if worst == 0 {
		return 0, 0, 0
	}
	return series.FromDecimal(worst), peakIdx, troughIdx
}

// DrawdownSeries returns the decline from the running peak for every
// observation. Non-finite observations report 0.
func DrawdownSeries(cumulative *series.Returns) *series.Returns {
	levels := nav(cumulative)
	pts := make([]series.DatedValue, len(levels))

	peak := math.NaN()
	seen := false
	for idx, level := range levels {
		pts[idx].Date = cumulative.Points[idx].Date
		if !isFinite(level) {
			continue
		}
		if !seen || level > peak {
			peak = level
			seen = true
			continue
		}
		if peak > 0 {
			pts[idx].Value = series.FromDecimal(finiteOrZero((level - peak) / peak))
		}
	}

	return &series.Returns{Unit: series.Drawdown, Points: pts}
}

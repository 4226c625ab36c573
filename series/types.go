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

package series

import (
	"errors"
	"time"
)

// PercentPoints is a return expressed in percentage points: 1.5 means 1.5%.
// Use Decimal and FromDecimal at computation boundaries; never mix the two
// representations in arithmetic.
type PercentPoints float64

// Decimal converts percentage points into a decimal fraction (1.5 -> 0.015)
func (p PercentPoints) Decimal() float64 {
	return float64(p) / 100.0
}

// Float64 returns the raw value in percentage points
func (p PercentPoints) Float64() float64 {
	return float64(p)
}

// FromDecimal converts a decimal fraction into percentage points
func FromDecimal(d float64) PercentPoints {
	return PercentPoints(d * 100.0)
}

// Ratio is a fraction in [0,1], e.g. the share of the portfolio that is
// invested and therefore needs hedging
type Ratio float64

// Unit tags what the values of a series represent
type Unit string

const (
	Daily      Unit = "daily"
	Cumulative Unit = "cumulative"
	Fraction   Unit = "ratio"
	Drawdown   Unit = "drawdown"
)

// Point is a single dated observation
type Point[V ~float64] struct {
	Date  time.Time
	Value V
}

// Series is an immutable sequence of dated observations sorted by date
// ascending with unique dates. Operations that transform a series always
// return a new series.
type Series[V ~float64] struct {
	Unit   Unit
	Points []Point[V]
}

// DatedValue is a return observation in percentage points
type DatedValue = Point[PercentPoints]

// Returns is a daily or cumulative return series in percentage points
type Returns = Series[PercentPoints]

// Ratios is a position ratio series
type Ratios = Series[Ratio]

var (
	ErrDuplicateDate = errors.New("series contains duplicate date")
)

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

// Package hedge overlays a short index position on a strategy. The hedge
// daily return is the strategy return minus the position weighted index
// return on every date both series share.
package hedge

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/blake3"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/series"
)

const (
	DefaultInitialNetValue = 100_000_000.0
)

var (
	ErrMisalignedSeries  = errors.New("strategy and index have no dates in common")
	ErrInvalidHedgeRatio = errors.New("hedge ratio must be between 0 and 1")
)

// Options for Compose
type Options struct {
	// FallbackRatio is used on every date when no position data is supplied
	FallbackRatio series.Ratio

	// InitialNetValue is the starting value of the hedged net value curve
	InitialNetValue float64
}

func DefaultOptions() Options {
	return Options{
		FallbackRatio:   1.0,
		InitialNetValue: DefaultInitialNetValue,
	}
}

// Row is one day of the hedged portfolio
type Row struct {
	Date           time.Time
	StrategyReturn series.PercentPoints
	IndexReturn    series.PercentPoints
	PositionRatio  series.Ratio
	HedgeReturn    series.PercentPoints
	HedgeNetValue  float64
	HedgeCash      float64
}

type Metadata struct {
	RunID         uuid.UUID    `json:"run_id"`
	CalculatedAt  time.Time    `json:"calculated_at"`
	FallbackRatio series.Ratio `json:"hedge_ratio"`
	UsedPositions bool         `json:"used_positions"`

	// Inputs holds a blake3 digest of each input series
	Inputs map[string]string `json:"inputs"`
}

type Result struct {
	Metadata Metadata `json:"metadata"`
	Rows     []Row    `json:"data"`
}

// Compose builds the hedge overlay from the strategy and index daily returns.
// When positions is empty every date uses opts.FallbackRatio; otherwise the
// ratio on a date is the latest position at or before it, or 0 before the
// first known position. Dates missing from either strategy or index are
// dropped.
func Compose(strategy, index *series.Returns, positions *series.Ratios, opts Options) (*Result, error) {
	if !validRatio(opts.FallbackRatio) {
		return nil, fmt.Errorf("%w: got %.4f", ErrInvalidHedgeRatio, float64(opts.FallbackRatio))
	}

	if opts.InitialNetValue <= 0 {
		opts.InitialNetValue = DefaultInitialNetValue
	}

	usePositions := !positions.IsEmpty()
	res := &Result{
		Metadata: Metadata{
			RunID:         uuid.New(),
			CalculatedAt:  time.Now(),
			FallbackRatio: opts.FallbackRatio,
			UsedPositions: usePositions,
			Inputs: map[string]string{
				"strategy": digest(strategy),
				"index":    digest(index),
			},
		},
		Rows: []Row{},
	}

	if usePositions {
		res.Metadata.Inputs["positions"] = digest(positions)
	}

	if strategy.IsEmpty() || index.IsEmpty() {
		log.Debug().Int("StrategyLen", strategy.Len()).Int("IndexLen", index.Len()).Msg("nothing to hedge")
		return res, nil
	}

	dates, strategyVals, indexVals := series.InnerJoin(strategy, index)
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: strategy %s..%s, index %s..%s", ErrMisalignedSeries,
			datekey.Format(strategy.Start()), datekey.Format(strategy.End()),
			datekey.Format(index.Start()), datekey.Format(index.End()))
	}

	res.Rows = make([]Row, len(dates))
	netValue := opts.InitialNetValue
	for idx, dt := range dates {
		ratio := opts.FallbackRatio
		if usePositions {
			ratio, _ = positions.AsOf(dt)
			if !validRatio(ratio) {
				return nil, fmt.Errorf("%w: position ratio %.4f on %s", ErrInvalidHedgeRatio, float64(ratio), datekey.Format(dt))
			}
		}

		hedgeReturn := strategyVals[idx] - series.PercentPoints(ratio)*indexVals[idx]
		netValue *= 1.0 + hedgeReturn.Decimal()

		res.Rows[idx] = Row{
			Date:           dt,
			StrategyReturn: strategyVals[idx],
			IndexReturn:    indexVals[idx],
			PositionRatio:  ratio,
			HedgeReturn:    hedgeReturn,
			HedgeNetValue:  netValue,
			HedgeCash:      opts.InitialNetValue * (1.0 - float64(ratio)),
		}
	}

	log.Info().Object("Hedge", res).Msg("composed hedge overlay")

	return res, nil
}

// Daily returns the hedge daily return series
func (res *Result) Daily() *series.Returns {
	pts := make([]series.DatedValue, len(res.Rows))
	for idx, row := range res.Rows {
		pts[idx] = series.DatedValue{Date: row.Date, Value: row.HedgeReturn}
	}
	return &series.Returns{Unit: series.Daily, Points: pts}
}

// IndexDaily returns the index daily returns on the hedged dates
func (res *Result) IndexDaily() *series.Returns {
	pts := make([]series.DatedValue, len(res.Rows))
	for idx, row := range res.Rows {
		pts[idx] = series.DatedValue{Date: row.Date, Value: row.IndexReturn}
	}
	return &series.Returns{Unit: series.Daily, Points: pts}
}

// Cumulative returns the hedge cumulative return series
func (res *Result) Cumulative() *series.Returns {
	return metrics.BuildCumulative(res.Daily(), metrics.DefaultInitialValue)
}

// NetValues returns the hedged net value curve
func (res *Result) NetValues() []float64 {
	vals := make([]float64, len(res.Rows))
	for idx, row := range res.Rows {
		vals[idx] = row.HedgeNetValue
	}
	return vals
}

// MaxDrawdown of the hedged net value curve
func (res *Result) MaxDrawdown() metrics.Drawdown {
	depth, peakIdx, troughIdx := metrics.MaxDrawdownOfValues(res.NetValues())
	if depth == 0 {
		return metrics.Drawdown{}
	}
	return metrics.Drawdown{
		PeakDate:    res.Rows[peakIdx].Date,
		TroughDate:  res.Rows[troughIdx].Date,
		PeakIndex:   peakIdx,
		TroughIndex: troughIdx,
		Depth:       depth,
	}
}

// validRatio reports whether r is a fraction in [0,1]; NaN is rejected
func validRatio(r series.Ratio) bool {
	return !math.IsNaN(float64(r)) && r >= 0 && r <= 1
}

func digest[V ~float64](s *series.Series[V]) string {
	if s == nil {
		return ""
	}
	data, err := json.Marshal(s)
	if err != nil {
		log.Warn().Err(err).Msg("could not serialize series for digest")
		return ""
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

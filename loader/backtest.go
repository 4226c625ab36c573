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

package loader

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hedgelab/hedgelab/common"
	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/series"
)

const dailyDataType = "daily_data"

// Backtest holds the cumulative return series of a strategy and, when the
// backtest recorded one, its benchmark
type Backtest struct {
	Strategy  *series.Returns `json:"strategy"`
	Benchmark *series.Returns `json:"benchmark"`
}

func (bt *Backtest) MarshalZerologObject(e *zerolog.Event) {
	e.Object("Strategy", bt.Strategy).Object("Benchmark", bt.Benchmark)
}

type valueRecords struct {
	Records []struct {
		Value *float64 `json:"value"`
	} `json:"records"`
}

func (vr *valueRecords) first() (float64, bool) {
	if vr == nil || len(vr.Records) == 0 || vr.Records[0].Value == nil {
		return 0, false
	}
	return *vr.Records[0].Value, true
}

type backtestRecord struct {
	Type string      `json:"type"`
	Date interface{} `json:"date"`
	Data struct {
		OverallReturn *valueRecords `json:"overallReturn"`
		Benchmark     *valueRecords `json:"benchmark"`
	} `json:"data"`
}

// LoadBacktest reads a backtest export in JSON lines format
func LoadBacktest(fn string) (*Backtest, error) {
	data, err := common.ReadFile(fn)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	bt, err := ParseBacktest(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load backtest %s", fn)
	}
	return bt, nil
}

// ParseBacktest parses backtest JSON lines. Only records of type daily_data
// are used; lines that are not valid JSON are skipped with a warning. The
// strategy value is data.overallReturn.records[0].value (0 when absent) and
// the benchmark value is data.benchmark.records[0].value, both cumulative
// returns in percentage points.
func ParseBacktest(data []byte) (*Backtest, error) {
	strategy := newCollector[series.PercentPoints]("backtest")
	benchmark := newCollector[series.PercentPoints]("benchmark")

	err := eachLine(data, func(lineNo int, line []byte) error {
		var rec backtestRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			log.Warn().Err(err).Int("Line", lineNo).Msg("skipping invalid JSON line")
			return nil
		}

		if rec.Type != dailyDataType {
			return nil
		}

		dt, err := parseDateField(rec.Date)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}

		val, ok := rec.Data.OverallReturn.first()
		if !ok {
			log.Debug().Int("Line", lineNo).Str("Date", datekey.Format(dt)).Msg("record has no overall return; using 0")
		}
		strategy.add(dt, series.PercentPoints(val))

		if bench, ok := rec.Data.Benchmark.first(); ok {
			benchmark.add(dt, series.PercentPoints(bench))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(strategy.points) == 0 {
		return nil, ErrEmptyInput
	}

	bt := &Backtest{}
	if bt.Strategy, err = strategy.build(series.Cumulative); err != nil {
		return nil, err
	}
	if bt.Benchmark, err = benchmark.build(series.Cumulative); err != nil {
		return nil, err
	}

	log.Debug().Object("Backtest", bt).Msg("parsed backtest")
	return bt, nil
}

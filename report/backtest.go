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

package report

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/hedge"
	"github.com/hedgelab/hedgelab/series"
)

const (
	dailyDataType = "daily_data"
	closeTime     = " 16:00:00"
)

type backtestValue struct {
	Timestamp  int64   `json:"timestamp"`
	DateString string  `json:"date_string"`
	Value      float64 `json:"value"`
}

type backtestRecords struct {
	Count   int             `json:"count"`
	Records []backtestValue `json:"records"`
}

type backtestLine struct {
	Type string `json:"type"`
	Date string `json:"date"`
	Data struct {
		OverallReturn backtestRecords  `json:"overallReturn"`
		Benchmark     *backtestRecords `json:"benchmark,omitempty"`
	} `json:"data"`
}

func singleRecord(date string, ts int64, val series.PercentPoints) backtestRecords {
	return backtestRecords{
		Count: 1,
		Records: []backtestValue{{
			Timestamp:  ts,
			DateString: date + closeTime,
			Value:      float64(val),
		}},
	}
}

// WriteBacktestJSONL writes cumulative returns as daily_data JSON lines, the
// layout of a backtest export, so results can be analyzed again like any
// other backtest. Dates in benchmark that also appear in cumulative are
// written as the benchmark record; benchmark may be nil.
func WriteBacktestJSONL(w io.Writer, cumulative, benchmark *series.Returns) error {
	enc := json.NewEncoder(w)

	for idx := 0; idx < cumulative.Len(); idx++ {
		pt := cumulative.At(idx)
		date := datekey.FormatCompact(pt.Date)
		ts := pt.Date.UnixMilli()

		line := backtestLine{Type: dailyDataType, Date: date}
		line.Data.OverallReturn = singleRecord(date, ts, pt.Value)

		if pos := benchmark.Index(pt.Date); pos >= 0 {
			bench := singleRecord(date, ts, benchmark.At(pos).Value)
			line.Data.Benchmark = &bench
		}

		if err := enc.Encode(line); err != nil {
			return err
		}
	}

	return nil
}

type balance struct {
	Time          string       `json:"time"`
	AvailCash     float64      `json:"aval_cash"`
	Cash          float64      `json:"cash"`
	TotalValue    float64      `json:"total_value"`
	PositionRatio series.Ratio `json:"position_ratio"`
}

// WritePositionsJSON writes the hedged account as a position file with one
// balance per day
func WritePositionsJSON(w io.Writer, res *hedge.Result, backtestID string) error {
	out := struct {
		BacktestID string    `json:"backtest_id"`
		Balances   []balance `json:"balances"`
	}{
		BacktestID: backtestID,
		Balances:   make([]balance, len(res.Rows)),
	}

	for idx, row := range res.Rows {
		out.Balances[idx] = balance{
			Time:          datekey.Format(row.Date) + closeTime,
			AvailCash:     row.HedgeCash,
			Cash:          row.HedgeCash,
			TotalValue:    row.HedgeNetValue,
			PositionRatio: row.PositionRatio,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

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

package hedge

import (
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/hedgelab/hedgelab/datekey"
)

func (res *Result) MarshalZerologObject(e *zerolog.Event) {
	e.Str("RunID", res.Metadata.RunID.String())
	e.Float64("FallbackRatio", float64(res.Metadata.FallbackRatio))
	e.Bool("UsedPositions", res.Metadata.UsedPositions)
	e.Int("NumRows", len(res.Rows))
	if len(res.Rows) > 0 {
		e.Str("Start", datekey.Format(res.Rows[0].Date))
		e.Str("End", datekey.Format(res.Rows[len(res.Rows)-1].Date))
		e.Float64("FinalNetValue", res.Rows[len(res.Rows)-1].HedgeNetValue)
	}
}

func (row Row) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Date", datekey.Format(row.Date)).
		Float64("StrategyReturn", float64(row.StrategyReturn)).
		Float64("IndexReturn", float64(row.IndexReturn)).
		Float64("PositionRatio", float64(row.PositionRatio)).
		Float64("HedgeReturn", float64(row.HedgeReturn))
}

type rowJSON struct {
	Date           string  `json:"date"`
	StrategyReturn float64 `json:"backtest_return"`
	IndexReturn    float64 `json:"index_return"`
	PositionRatio  float64 `json:"position_ratio"`
	HedgeReturn    float64 `json:"hedge_return"`
	HedgeNetValue  float64 `json:"hedge_net_value"`
	HedgeCash      float64 `json:"hedge_cash"`
}

func (row Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		Date:           datekey.Format(row.Date),
		StrategyReturn: float64(row.StrategyReturn),
		IndexReturn:    float64(row.IndexReturn),
		PositionRatio:  float64(row.PositionRatio),
		HedgeReturn:    float64(row.HedgeReturn),
		HedgeNetValue:  row.HedgeNetValue,
		HedgeCash:      row.HedgeCash,
	})
}

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
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/hedgelab/hedgelab/datekey"
)

type drawdownJSON struct {
	PeakDate    string  `json:"peak_date"`
	TroughDate  string  `json:"trough_date"`
	PeakIndex   int     `json:"peak_index"`
	TroughIndex int     `json:"trough_index"`
	Depth       float64 `json:"depth"`
}

type recoveryJSON struct {
	PeakDate      string  `json:"peak_date"`
	TroughDate    string  `json:"trough_date"`
	RecoveryDate  string  `json:"recovery_date"`
	PeakIndex     int     `json:"peak_index"`
	TroughIndex   int     `json:"trough_index"`
	RecoveryIndex int     `json:"recovery_index"`
	Duration      int     `json:"duration"`
	CalendarDays  int     `json:"calendar_days"`
	MaxDepth      float64 `json:"max_depth"`
	Recovered     bool    `json:"recovered"`
}

func (dd Drawdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(drawdownJSON{
		PeakDate:    datekey.Format(dd.PeakDate),
		TroughDate:  datekey.Format(dd.TroughDate),
		PeakIndex:   dd.PeakIndex,
		TroughIndex: dd.TroughIndex,
		Depth:       float64(dd.Depth),
	})
}

func (ep RecoveryEpisode) MarshalJSON() ([]byte, error) {
	return json.Marshal(recoveryJSON{
		PeakDate:      datekey.Format(ep.PeakDate),
		TroughDate:    datekey.Format(ep.TroughDate),
		RecoveryDate:  datekey.Format(ep.RecoveryDate),
		PeakIndex:     ep.PeakIndex,
		TroughIndex:   ep.TroughIndex,
		RecoveryIndex: ep.RecoveryIndex,
		Duration:      ep.Duration,
		CalendarDays:  ep.CalendarDays,
		MaxDepth:      float64(ep.MaxDepth),
		Recovered:     ep.Recovered,
	})
}

func (dd Drawdown) MarshalZerologObject(e *zerolog.Event) {
	e.Str("PeakDate", datekey.Format(dd.PeakDate)).
		Str("TroughDate", datekey.Format(dd.TroughDate)).
		Float64("Depth", float64(dd.Depth))
}

func (ep RecoveryEpisode) MarshalZerologObject(e *zerolog.Event) {
	e.Str("PeakDate", datekey.Format(ep.PeakDate)).
		Str("TroughDate", datekey.Format(ep.TroughDate)).
		Str("RecoveryDate", datekey.Format(ep.RecoveryDate)).
		Int("Duration", ep.Duration).
		Float64("MaxDepth", float64(ep.MaxDepth)).
		Bool("Recovered", ep.Recovered)
}

func (s PerformanceSummary) MarshalZerologObject(e *zerolog.Event) {
	e.Str("PeriodStart", s.PeriodStart).
		Str("PeriodEnd", s.PeriodEnd).
		Int("TradingDays", s.TradingDays).
		Float64("AnnualizedReturn", s.AnnualizedReturn).
		Float64("TotalReturn", s.TotalReturn).
		Float64("SharpeRatio", s.SharpeRatio).
		Object("MaxDrawdown", s.MaxDrawdown).
		Object("LongestRecovery", s.LongestRecovery)
}

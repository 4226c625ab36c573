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
	"sort"
	"time"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/series"
)

// RecoveryEpisode is a contiguous run of observations below the running
// peak. The episode starts at the last observation on the peak and ends at
// the first observation back at or above it. An episode that never recovers
// ends at the last observation and has Recovered set to false.
type RecoveryEpisode struct {
	PeakIndex     int
	TroughIndex   int
	RecoveryIndex int
	PeakDate      time.Time
	TroughDate    time.Time
	RecoveryDate  time.Time

	// Duration is measured in observations from peak to recovery
	Duration     int
	CalendarDays int
	MaxDepth     series.PercentPoints
	Recovered    bool
}

// IsZero returns true for the empty episode returned when a series never
// declines
func (ep RecoveryEpisode) IsZero() bool {
	return ep.Duration == 0 && ep.MaxDepth == 0
}

// episodes finds every drawdown run in chronological order
func episodes(cumulative *series.Returns) []RecoveryEpisode {
	dd := DrawdownSeries(cumulative)
	levels := nav(cumulative)
	res := []RecoveryEpisode{}

	var curr *RecoveryEpisode
	lastAtPeak := -1
	lastFinite := -1

	for idx, pt := range dd.Points {
		if !isFinite(levels[idx]) {
			continue
		}
		lastFinite = idx

		if pt.Value < 0 {
			if curr == nil {
				peakIdx := lastAtPeak
				if peakIdx < 0 {
					peakIdx = idx
				}
				curr = &RecoveryEpisode{
					PeakIndex:   peakIdx,
					TroughIndex: idx,
					MaxDepth:    pt.Value,
				}
			}
			if pt.Value < curr.MaxDepth {
				curr.MaxDepth = pt.Value
				curr.TroughIndex = idx
			}
			continue
		}

		if curr != nil {
			curr.RecoveryIndex = idx
			curr.Recovered = true
			res = append(res, finishEpisode(cumulative, *curr))
			curr = nil
		}
		lastAtPeak = idx
	}

	if curr != nil {
		curr.RecoveryIndex = lastFinite
		res = append(res, finishEpisode(cumulative, *curr))
	}

	return res
}

func finishEpisode(cumulative *series.Returns, ep RecoveryEpisode) RecoveryEpisode {
	ep.PeakDate = cumulative.Points[ep.PeakIndex].Date
	ep.TroughDate = cumulative.Points[ep.TroughIndex].Date
	ep.RecoveryDate = cumulative.Points[ep.RecoveryIndex].Date
	ep.Duration = ep.RecoveryIndex - ep.PeakIndex
	ep.CalendarDays = datekey.DaysBetween(ep.PeakDate, ep.RecoveryDate)
	return ep
}

// AllRecoveries returns every drawdown episode of a cumulative return series
// ordered by duration, longest first. Episodes with equal duration keep
// chronological order. A series that never declines returns an empty list.
func AllRecoveries(cumulative *series.Returns) []RecoveryEpisode {
	res := episodes(cumulative)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Duration > res[j].Duration
	})
	return res
}

// LongestRecovery returns the longest drawdown episode or the zero episode
func LongestRecovery(cumulative *series.Returns) RecoveryEpisode {
	all := AllRecoveries(cumulative)
	if len(all) == 0 {
		return RecoveryEpisode{}
	}
	return all[0]
}

// TopDrawdowns returns the n deepest drawdown episodes, deepest first. n <= 0
// returns all episodes.
func TopDrawdowns(cumulative *series.Returns, n int) []RecoveryEpisode {
	res := episodes(cumulative)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].MaxDepth < res[j].MaxDepth
	})
	if n > 0 && n < len(res) {
		res = res[:n]
	}
	return res
}

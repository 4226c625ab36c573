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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/metrics"
)

var (
	ErrUnknownInterval = errors.New("unknown interval")
)

type intervalFile struct {
	Intervals []struct {
		Name  string `toml:"name"`
		Start string `toml:"start"`
		End   string `toml:"end"`
	} `toml:"interval"`
}

// IntervalTable is a read-only lookup of named historical periods. Build it
// with LoadIntervals or ParseIntervals.
type IntervalTable struct {
	intervals []metrics.Interval
	byName    map[string]int
}

// LoadIntervals reads an interval table from a TOML file of the form
//
//	[[interval]]
//	name = "2015 crash"
//	start = "2015-06-12"
//	end = "2016-01-28"
func LoadIntervals(fn string) (*IntervalTable, error) {
	data, err := os.ReadFile(fn)
	if err != nil {
		return nil, err
	}

	table, err := ParseIntervals(data)
	if err != nil {
		return nil, fmt.Errorf("load intervals %s: %w", fn, err)
	}
	return table, nil
}

// ParseIntervals decodes TOML interval definitions. Names must be unique and
// each interval must end on or after its start.
func ParseIntervals(data []byte) (*IntervalTable, error) {
	var raw intervalFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	table := &IntervalTable{
		intervals: make([]metrics.Interval, 0, len(raw.Intervals)),
		byName:    make(map[string]int, len(raw.Intervals)),
	}

	for _, item := range raw.Intervals {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			return nil, errors.New("interval without a name")
		}
		if _, ok := table.byName[strings.ToLower(name)]; ok {
			return nil, fmt.Errorf("interval %q defined twice", name)
		}

		start, err := datekey.Parse(item.Start)
		if err != nil {
			return nil, fmt.Errorf("interval %q start: %w", name, err)
		}
		end, err := datekey.Parse(item.End)
		if err != nil {
			return nil, fmt.Errorf("interval %q end: %w", name, err)
		}
		if end.Before(start) {
			return nil, fmt.Errorf("interval %q ends before it starts", name)
		}

		table.byName[strings.ToLower(name)] = len(table.intervals)
		table.intervals = append(table.intervals, metrics.Interval{Name: name, Start: start, End: end})
	}

	return table, nil
}

// Len returns the number of intervals
func (t *IntervalTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.intervals)
}

// All returns a copy of the intervals in file order
func (t *IntervalTable) All() []metrics.Interval {
	res := make([]metrics.Interval, t.Len())
	if t != nil {
		copy(res, t.intervals)
	}
	return res
}

// Get looks up an interval by name, ignoring case
func (t *IntervalTable) Get(name string) (metrics.Interval, error) {
	if t != nil {
		if idx, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
			return t.intervals[idx], nil
		}
	}
	return metrics.Interval{}, fmt.Errorf("%w: %q", ErrUnknownInterval, name)
}

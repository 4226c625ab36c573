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

// Package loader reads backtest, index and position files into series. Files
// ending in .lz4 are decompressed transparently.
package loader

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/series"
)

const maxLineSize = 16 * 1024 * 1024

// eachLine calls fn with every non-blank line of data along with its 1-based
// line number
func eachLine(data []byte, fn func(lineNo int, line []byte) error) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// isJSONArray returns true if the first non-space byte opens an array
func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// parseDateField accepts a date key encoded as a JSON string or number
func parseDateField(val interface{}) (time.Time, error) {
	switch v := val.(type) {
	case string:
		return datekey.Parse(v)
	case float64:
		return datekey.Parse(strconv.FormatInt(int64(v), 10))
	case json.Number:
		return datekey.Parse(v.String())
	case nil:
		return time.Time{}, ErrMissingField
	default:
		return datekey.Parse(fmt.Sprintf("%v", v))
	}
}

// collector accumulates points keeping the last value seen for a date
type collector[V ~float64] struct {
	index  map[time.Time]int
	points []series.Point[V]
	name   string
}

func newCollector[V ~float64](name string) *collector[V] {
	return &collector[V]{
		index:  make(map[time.Time]int),
		points: []series.Point[V]{},
		name:   name,
	}
}

func (c *collector[V]) add(date time.Time, val V) {
	date = datekey.Normalize(date)
	if idx, ok := c.index[date]; ok {
		log.Warn().Str("Source", c.name).Str("Date", datekey.Format(date)).Msg("duplicate date; keeping the later record")
		c.points[idx].Value = val
		return
	}
	c.index[date] = len(c.points)
	c.points = append(c.points, series.Point[V]{Date: date, Value: val})
}

func (c *collector[V]) build(unit series.Unit) (*series.Series[V], error) {
	return series.New(unit, c.points)
}

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
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/hedgelab/hedgelab/common"
	"github.com/hedgelab/hedgelab/series"
)

type positionFile struct {
	Balances *[]struct {
		Time          string   `json:"time"`
		PositionRatio *float64 `json:"position_ratio"`
	} `json:"balances"`
}

// LoadPositions reads the position ratio history of a simulated account
func LoadPositions(fn string) (*series.Ratios, error) {
	data, err := common.ReadFile(fn)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	s, err := ParsePositions(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load positions %s", fn)
	}
	return s, nil
}

// ParsePositions parses {"balances":[{"time":"YYYY-MM-DD HH:MM:SS",
// "position_ratio":r}]}. Only the date part of time is used; when a date has
// several balances the last one wins. A missing ratio counts as 0.
func ParsePositions(data []byte) (*series.Ratios, error) {
	var pf positionFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, err
	}

	if pf.Balances == nil {
		return nil, fmt.Errorf("%w: balances", ErrMissingField)
	}

	col := newCollector[series.Ratio]("positions")
	for idx, bal := range *pf.Balances {
		datePart, _, _ := strings.Cut(strings.TrimSpace(bal.Time), " ")
		dt, err := parseDateField(datePart)
		if err != nil {
			return nil, fmt.Errorf("balance %d: %w", idx+1, err)
		}

		ratio := 0.0
		if bal.PositionRatio != nil {
			ratio = *bal.PositionRatio
		}
		col.add(dt, series.Ratio(ratio))
	}

	return col.build(series.Fraction)
}

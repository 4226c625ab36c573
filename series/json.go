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
	"fmt"

	"github.com/goccy/go-json"

	"github.com/hedgelab/hedgelab/datekey"
)

type pointJSON struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type seriesJSON[V ~float64] struct {
	Unit   Unit       `json:"unit"`
	Points []Point[V] `json:"points"`
}

// MarshalJSON writes the observation as {"date":"YYYY-MM-DD","value":x}
func (pt Point[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal(pointJSON{
		Date:  datekey.Format(pt.Date),
		Value: float64(pt.Value),
	})
}

// UnmarshalJSON accepts a date in either supported format
func (pt *Point[V]) UnmarshalJSON(data []byte) error {
	var raw pointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	dt, err := datekey.Parse(raw.Date)
	if err != nil {
		return err
	}

	pt.Date = dt
	pt.Value = V(raw.Value)
	return nil
}

func (s *Series[V]) MarshalJSON() ([]byte, error) {
	pts := s.Points
	if pts == nil {
		pts = []Point[V]{}
	}
	return json.Marshal(seriesJSON[V]{Unit: s.Unit, Points: pts})
}

// UnmarshalJSON decodes a series and enforces the same ordering rules as New
func (s *Series[V]) UnmarshalJSON(data []byte) error {
	var raw seriesJSON[V]
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed, err := New(raw.Unit, raw.Points)
	if err != nil {
		return fmt.Errorf("decode series: %w", err)
	}

	*s = *parsed
	return nil
}

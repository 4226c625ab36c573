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
	"github.com/rs/zerolog/log"

	"github.com/hedgelab/hedgelab/common"
	"github.com/hedgelab/hedgelab/series"
)

// FlatOptions describe a file of flat {date, value} records
type FlatOptions struct {
	DateField  string
	ValueField string
	Unit       series.Unit

	// MissingAsZero substitutes 0 for a missing value instead of failing
	MissingAsZero bool
}

// CumulativeRecords is the layout of a per-day cumulative return export
func CumulativeRecords() FlatOptions {
	return FlatOptions{
		DateField:  "date",
		ValueField: "cumulative_return",
		Unit:       series.Cumulative,
	}
}

// IndexRecords is the layout of an index quote export where pctChg is the
// daily percentage change
func IndexRecords() FlatOptions {
	return FlatOptions{
		DateField:     "date",
		ValueField:    "pctChg",
		Unit:          series.Daily,
		MissingAsZero: true,
	}
}

// LoadFlat reads a JSON array or JSON lines file of flat records
func LoadFlat(fn string, opts FlatOptions) (*series.Returns, error) {
	data, err := common.ReadFile(fn)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	s, err := ParseFlat(data, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", fn)
	}
	return s, nil
}

// LoadIndex reads an index daily return file
func LoadIndex(fn string) (*series.Returns, error) {
	return LoadFlat(fn, IndexRecords())
}

// ParseFlat parses either a JSON array of records or one record per line
func ParseFlat(data []byte, opts FlatOptions) (*series.Returns, error) {
	records := []map[string]interface{}{}

	if isJSONArray(data) {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	} else {
		err := eachLine(data, func(lineNo int, line []byte) error {
			rec := map[string]interface{}{}
			if err := json.Unmarshal(line, &rec); err != nil {
				log.Warn().Err(err).Int("Line", lineNo).Msg("skipping invalid JSON line")
				return nil
			}
			records = append(records, rec)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	col := newCollector[series.PercentPoints](opts.ValueField)
	for idx, rec := range records {
		dt, err := parseDateField(rec[opts.DateField])
		if err != nil {
			return nil, fmt.Errorf("record %d field %q: %w", idx+1, opts.DateField, err)
		}

		val, ok := rec[opts.ValueField].(float64)
		if !ok {
			if !opts.MissingAsZero {
				return nil, fmt.Errorf("record %d field %q: %w", idx+1, opts.ValueField, ErrMissingField)
			}
			val = 0
		}

		col.add(dt, series.PercentPoints(val))
	}

	if len(col.points) == 0 {
		return nil, ErrEmptyInput
	}

	return col.build(opts.Unit)
}

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

// Package datekey normalizes the date keys used by backtest, index and
// position files into calendar dates.
package datekey

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ISOLayout     = "2006-01-02"
	CompactLayout = "20060102"

	secondsPerDay = 24 * 60 * 60
)

var (
	ErrInvalidDateFormat = errors.New("invalid date format; expected YYYYMMDD or YYYY-MM-DD")
)

// Parse converts a date key in either YYYYMMDD or YYYY-MM-DD form into a
// calendar date at midnight UTC.
func Parse(text string) (time.Time, error) {
	var layout string
	switch {
	case len(text) == 8 && isDigits(text):
		layout = CompactLayout
	case len(text) == 10 && text[4] == '-' && text[7] == '-':
		layout = ISOLayout
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, text)
	}

	dt, err := time.ParseInLocation(layout, text, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, text)
	}
	return dt, nil
}

// MustParse is like Parse but panics when the text cannot be parsed
func MustParse(text string) time.Time {
	dt, err := Parse(text)
	if err != nil {
		log.Panic().Err(err).Str("Text", text).Msg("could not parse date key")
	}
	return dt
}

// Normalize drops the time-of-day and zone from t, keeping the calendar date
func Normalize(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the signed number of calendar days from a to b. Only
// the calendar date of each argument is considered.
func DaysBetween(a, b time.Time) int {
	return int((Normalize(b).Unix() - Normalize(a).Unix()) / secondsPerDay)
}

// Format returns the ISO form of the date, or an empty string for the zero time
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ISOLayout)
}

// FormatCompact returns the YYYYMMDD form used by the backtest portal
func FormatCompact(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(CompactLayout)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

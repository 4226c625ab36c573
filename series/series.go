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
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"

	"github.com/hedgelab/hedgelab/datekey"
)

// New builds a series from the given points. The points are copied, dates
// are normalized to calendar dates and sorted ascending. Duplicate dates are
// rejected with ErrDuplicateDate.
func New[V ~float64](unit Unit, points []Point[V]) (*Series[V], error) {
	pts := make([]Point[V], len(points))
	for idx, pt := range points {
		pts[idx] = Point[V]{Date: datekey.Normalize(pt.Date), Value: pt.Value}
	}

	sort.SliceStable(pts, func(i, j int) bool {
		return pts[i].Date.Before(pts[j].Date)
	})

	for idx := 1; idx < len(pts); idx++ {
		if pts[idx].Date.Equal(pts[idx-1].Date) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, datekey.Format(pts[idx].Date))
		}
	}

	return &Series[V]{Unit: unit, Points: pts}, nil
}

// MustNew is like New but panics if the points contain duplicate dates
func MustNew[V ~float64](unit Unit, points []Point[V]) *Series[V] {
	s, err := New(unit, points)
	if err != nil {
		log.Panic().Err(err).Msg("could not build series")
	}
	return s
}

// FromFloats builds a series from parallel date and value vectors. Panics if
// the vectors are not the same length.
func FromFloats[V ~float64](unit Unit, dates []time.Time, vals []float64) (*Series[V], error) {
	if len(dates) != len(vals) {
		log.Panic().Int("NumDates", len(dates)).Int("NumVals", len(vals)).Msg("date and value vectors are not aligned")
	}

	points := make([]Point[V], len(dates))
	for idx := range dates {
		points[idx] = Point[V]{Date: dates[idx], Value: V(vals[idx])}
	}
	return New(unit, points)
}

// Empty returns a series with no observations
func Empty[V ~float64](unit Unit) *Series[V] {
	return &Series[V]{Unit: unit, Points: []Point[V]{}}
}

// Len returns the number of observations; a nil series has length 0
func (s *Series[V]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// IsEmpty returns true if the series is nil or has no observations
func (s *Series[V]) IsEmpty() bool {
	return s.Len() == 0
}

// At returns the observation at index idx
func (s *Series[V]) At(idx int) Point[V] {
	return s.Points[idx]
}

// First returns the first observation and false if the series is empty
func (s *Series[V]) First() (Point[V], bool) {
	if s.IsEmpty() {
		return Point[V]{}, false
	}
	return s.Points[0], true
}

// Last returns the last observation and false if the series is empty
func (s *Series[V]) Last() (Point[V], bool) {
	if s.IsEmpty() {
		return Point[V]{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Start returns the first date in the series or the zero time
func (s *Series[V]) Start() time.Time {
	pt, _ := s.First()
	return pt.Date
}

// End returns the last date in the series or the zero time
func (s *Series[V]) End() time.Time {
	pt, _ := s.Last()
	return pt.Date
}

// Dates returns a copy of the date index
func (s *Series[V]) Dates() []time.Time {
	dates := make([]time.Time, s.Len())
	for idx := range dates {
		dates[idx] = s.Points[idx].Date
	}
	return dates
}

// Values returns a copy of the values
func (s *Series[V]) Values() []V {
	vals := make([]V, s.Len())
	for idx := range vals {
		vals[idx] = s.Points[idx].Value
	}
	return vals
}

// Floats returns a copy of the values as plain float64
func (s *Series[V]) Floats() []float64 {
	vals := make([]float64, s.Len())
	for idx := range vals {
		vals[idx] = float64(s.Points[idx].Value)
	}
	return vals
}

// AsMap returns a map keyed by date
func (s *Series[V]) AsMap() map[time.Time]V {
	res := make(map[time.Time]V, s.Len())
	for idx := 0; idx < s.Len(); idx++ {
		res[s.Points[idx].Date] = s.Points[idx].Value
	}
	return res
}

// Index returns the position of date in the series or -1 if it is not present
func (s *Series[V]) Index(date time.Time) int {
	date = datekey.Normalize(date)
	n := s.Len()
	idx := sort.Search(n, func(i int) bool {
		return !s.Points[i].Date.Before(date)
	})
	if idx < n && s.Points[idx].Date.Equal(date) {
		return idx
	}
	return -1
}

// AsOf returns the most recent value observed on or before date. The second
// return value is false if no observation exists on or before date.
func (s *Series[V]) AsOf(date time.Time) (V, bool) {
	date = datekey.Normalize(date)
	n := s.Len()
	idx := sort.Search(n, func(i int) bool {
		return s.Points[i].Date.After(date)
	})
	if idx == 0 {
		return 0, false
	}
	return s.Points[idx-1].Value, true
}

// Copy creates a deep copy of the series
func (s *Series[V]) Copy() *Series[V] {
	if s == nil {
		return nil
	}
	pts := make([]Point[V], len(s.Points))
	copy(pts, s.Points)
	return &Series[V]{Unit: s.Unit, Points: pts}
}

// Retag returns a copy of the series with a different unit tag. Values are
// not converted.
func (s *Series[V]) Retag(unit Unit) *Series[V] {
	res := s.Copy()
	if res == nil {
		return Empty[V](unit)
	}
	res.Unit = unit
	return res
}

// Trim returns the observations between begin and end (inclusive). A zero
// begin or end leaves that side open.
func (s *Series[V]) Trim(begin, end time.Time) *Series[V] {
	if s == nil {
		return nil
	}
	begin = datekey.Normalize(begin)
	end = datekey.Normalize(end)

	pts := make([]Point[V], 0, len(s.Points))
	for _, pt := range s.Points {
		if !begin.IsZero() && pt.Date.Before(begin) {
			continue
		}
		if !end.IsZero() && pt.Date.After(end) {
			continue
		}
		pts = append(pts, pt)
	}
	return &Series[V]{Unit: s.Unit, Points: pts}
}

// Table renders the series as a text table
func (s *Series[V]) Table() string {
	if s.IsEmpty() {
		return "<NO DATA>"
	}

	sb := &strings.Builder{}
	table := tablewriter.NewWriter(sb)
	table.SetHeader([]string{"Date", string(s.Unit)})
	table.SetFooter([]string{"Num Rows", fmt.Sprintf("%d", s.Len())})
	table.SetBorder(false)

	for _, pt := range s.Points {
		table.Append([]string{datekey.Format(pt.Date), fmt.Sprintf("%.4f", float64(pt.Value))})
	}

	table.Render()
	return sb.String()
}

// InnerJoin aligns two series on their common dates. The returned vectors
// are the same length and sorted by date.
func InnerJoin[V ~float64, W ~float64](a *Series[V], b *Series[W]) ([]time.Time, []V, []W) {
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	dates := make([]time.Time, 0, n)
	aVals := make([]V, 0, n)
	bVals := make([]W, 0, n)

	ii, jj := 0, 0
	for ii < a.Len() && jj < b.Len() {
		da := a.Points[ii].Date
		db := b.Points[jj].Date
		switch {
		case da.Before(db):
			ii++
		case db.Before(da):
			jj++
		default:
			dates = append(dates, da)
			aVals = append(aVals, a.Points[ii].Value)
			bVals = append(bVals, b.Points[jj].Value)
			ii++
			jj++
		}
	}

	return dates, aVals, bVals
}

// Merge combines two series into one. On dates present in both, the value
// from other wins. The unit of s is kept.
func (s *Series[V]) Merge(other *Series[V]) *Series[V] {
	unit := Daily
	if s != nil {
		unit = s.Unit
	} else if other != nil {
		unit = other.Unit
	}

	pts := make([]Point[V], 0, s.Len()+other.Len())
	ii, jj := 0, 0
	for ii < s.Len() || jj < other.Len() {
		switch {
		case jj >= other.Len():
			pts = append(pts, s.Points[ii])
			ii++
		case ii >= s.Len():
			pts = append(pts, other.Points[jj])
			jj++
		case s.Points[ii].Date.Before(other.Points[jj].Date):
			pts = append(pts, s.Points[ii])
			ii++
		case other.Points[jj].Date.Before(s.Points[ii].Date):
			pts = append(pts, other.Points[jj])
			jj++
		default:
			pts = append(pts, other.Points[jj])
			ii++
			jj++
		}
	}

	return &Series[V]{Unit: unit, Points: pts}
}

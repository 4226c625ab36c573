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

package series_test

import (
	"time"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/series"
)

func pt(date string, val float64) series.DatedValue {
	return series.DatedValue{Date: datekey.MustParse(date), Value: series.PercentPoints(val)}
}

var _ = Describe("Series", func() {
	var (
		s *series.Returns
	)

	BeforeEach(func() {
		s = series.MustNew(series.Daily, []series.DatedValue{
			pt("20230105", 3),
			pt("20230103", 1),
			pt("20230104", 2),
		})
	})

	Context("when constructing", func() {
		It("sorts the observations by date", func() {
			Expect(s.Len()).To(Equal(3))
			Expect(s.Floats()).To(Equal([]float64{1, 2, 3}))
			Expect(s.Start()).To(Equal(datekey.MustParse("2023-01-03")))
			Expect(s.End()).To(Equal(datekey.MustParse("2023-01-05")))
		})

		It("rejects duplicate dates", func() {
			_, err := series.New(series.Daily, []series.DatedValue{pt("20230103", 1), pt("2023-01-03", 2)})
			Expect(err).To(MatchError(series.ErrDuplicateDate))
		})

		It("normalizes the time of day away", func() {
			res, err := series.New(series.Daily, []series.DatedValue{
				{Date: time.Date(2023, 1, 3, 15, 0, 0, 0, time.UTC), Value: 1},
			})
			Expect(err).To(BeNil())
			Expect(res.Start()).To(Equal(datekey.MustParse("20230103")))
		})

		It("does not share the caller's slice", func() {
			pts := []series.DatedValue{pt("20230103", 1)}
			res := series.MustNew(series.Daily, pts)
			pts[0].Value = 99
			Expect(res.At(0).Value).To(BeEquivalentTo(1))
		})

		It("treats a nil series as empty", func() {
			var empty *series.Returns
			Expect(empty.Len()).To(Equal(0))
			Expect(empty.IsEmpty()).To(BeTrue())
			Expect(empty.Start().IsZero()).To(BeTrue())
			Expect(empty.Dates()).To(HaveLen(0))
		})
	})

	Context("when converting units", func() {
		It("converts between percentage points and decimals", func() {
			Expect(series.PercentPoints(1.5).Decimal()).To(BeNumerically("~", 0.015, 1e-15))
			Expect(series.FromDecimal(0.015)).To(BeNumerically("~", 1.5, 1e-12))
		})
	})

	Context("when looking up values", func() {
		It("finds the exact index of a date", func() {
			Expect(s.Index(datekey.MustParse("20230104"))).To(Equal(1))
			Expect(s.Index(datekey.MustParse("20230106"))).To(Equal(-1))
		})

		It("returns the latest value on or before a date", func() {
			val, ok := s.AsOf(datekey.MustParse("20230110"))
			Expect(ok).To(BeTrue())
			Expect(val).To(BeEquivalentTo(3))

			val, ok = s.AsOf(datekey.MustParse("20230104"))
			Expect(ok).To(BeTrue())
			Expect(val).To(BeEquivalentTo(2))

			_, ok = s.AsOf(datekey.MustParse("20230102"))
			Expect(ok).To(BeFalse())
		})
	})

	Context("when transforming", func() {
		It("trims inclusively", func() {
			res := s.Trim(datekey.MustParse("20230104"), datekey.MustParse("20230105"))
			Expect(res.Floats()).To(Equal([]float64{2, 3}))
			Expect(s.Len()).To(Equal(3))
		})

		It("leaves open sides of a trim unbounded", func() {
			res := s.Trim(time.Time{}, datekey.MustParse("20230104"))
			Expect(res.Floats()).To(Equal([]float64{1, 2}))
		})

		It("retags without touching the original", func() {
			res := s.Retag(series.Cumulative)
			Expect(res.Unit).To(Equal(series.Cumulative))
			Expect(s.Unit).To(Equal(series.Daily))
			Expect(res.Floats()).To(Equal(s.Floats()))
		})

		It("merges with the second series winning on overlaps", func() {
			other := series.MustNew(series.Daily, []series.DatedValue{
				pt("20230105", 30),
				pt("20230106", 40),
			})
			res := s.Merge(other)
			Expect(res.Floats()).To(Equal([]float64{1, 2, 30, 40}))
			Expect(res.Unit).To(Equal(series.Daily))
		})
	})

	Context("when joining", func() {
		It("keeps only dates present in both series", func() {
			ratios := series.MustNew(series.Fraction, []series.Point[series.Ratio]{
				{Date: datekey.MustParse("20230102"), Value: 0.1},
				{Date: datekey.MustParse("20230104"), Value: 0.5},
				{Date: datekey.MustParse("20230105"), Value: 0.7},
			})
			dates, a, b := series.InnerJoin(s, ratios)
			Expect(dates).To(Equal([]time.Time{datekey.MustParse("20230104"), datekey.MustParse("20230105")}))
			Expect(a).To(Equal([]series.PercentPoints{2, 3}))
			Expect(b).To(Equal([]series.Ratio{0.5, 0.7}))
		})
	})

	Context("when serializing", func() {
		It("writes ISO dates and raw values", func() {
			data, err := json.Marshal(s)
			Expect(err).To(BeNil())
			Expect(string(data)).To(ContainSubstring(`{"date":"2023-01-03","value":1}`))
			Expect(string(data)).To(ContainSubstring(`"unit":"daily"`))
		})

		It("reads back what it writes", func() {
			data, err := json.Marshal(s)
			Expect(err).To(BeNil())

			res := &series.Returns{}
			Expect(json.Unmarshal(data, res)).To(Succeed())
			Expect(res.Dates()).To(Equal(s.Dates()))
			Expect(res.Floats()).To(Equal(s.Floats()))
		})

		It("renders a table", func() {
			Expect(s.Table()).To(ContainSubstring("2023-01-04"))
			Expect(s.Table()).To(ContainSubstring("2.0000"))
		})
	})
})

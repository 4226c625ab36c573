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

package metrics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/series"
)

var _ = Describe("Drawdown", func() {
	Context("when finding the max drawdown", func() {
		It("is zero for a non-decreasing series", func() {
			dd := metrics.MaxDrawdown(seq(series.Cumulative, 0, 1, 2, 3, 4))
			Expect(dd.Depth).To(BeEquivalentTo(0))
			Expect(dd.IsZero()).To(BeTrue())
			Expect(dd.PeakDate.IsZero()).To(BeTrue())
		})

		It("is never positive", func() {
			inputs := [][]float64{
				{5, -3, 8, 2, 12},
				{-10, -20, -5},
				{0, 0, 0},
				{3, 3, 1, 3},
			}
			for _, vals := range inputs {
				Expect(metrics.MaxDrawdown(seq(series.Cumulative, vals...)).Depth).To(BeNumerically("<=", 0))
			}
		})

		It("finds the deepest decline from a running peak", func() {
			cumulative := seq(series.Cumulative, 0, 10, 5, 8, 12, 6, 7)
			dd := metrics.MaxDrawdown(cumulative)
			Expect(float64(dd.Depth)).To(BeNumerically("~", (1.06/1.12-1)*100, 1e-9))
			Expect(dd.PeakIndex).To(Equal(4))
			Expect(dd.TroughIndex).To(Equal(5))
			Expect(dd.PeakDate).To(Equal(cumulative.At(4).Date))
			Expect(dd.TroughDate).To(Equal(cumulative.At(5).Date))
			Expect(float64(dd.Magnitude())).To(BeNumerically("~", -float64(dd.Depth), 1e-12))
		})

		It("keeps the first peak when the peak value repeats", func() {
			dd := metrics.MaxDrawdown(seq(series.Cumulative, 0, 10, 10, 5))
			Expect(dd.PeakIndex).To(Equal(1))
			Expect(dd.TroughIndex).To(Equal(3))
		})

		It("skips non-finite observations without resetting the peak", func() {
			dd := metrics.MaxDrawdown(seq(series.Cumulative, 10, math.NaN(), 5, math.Inf(1), 0))
			Expect(dd.PeakIndex).To(Equal(0))
			Expect(dd.TroughIndex).To(Equal(4))
			Expect(float64(dd.Depth)).To(BeNumerically("~", (1/1.1-1)*100, 1e-9))
		})

		It("starts from the first finite observation", func() {
			dd := metrics.MaxDrawdown(seq(series.Cumulative, math.NaN(), 4, 2))
			Expect(dd.PeakIndex).To(Equal(1))
			Expect(dd.TroughIndex).To(Equal(2))
		})
	})

	Context("when scanning raw values", func() {
		It("reports the worst single peak to trough decline", func() {
			depth, peak, trough := metrics.MaxDrawdownOfValues([]float64{100, 110, 105, 120, 115, 130, 125})
			Expect(float64(depth)).To(BeNumerically("~", (105.0/110.0-1)*100, 1e-9))
			Expect(peak).To(Equal(1))
			Expect(trough).To(Equal(2))
		})

		It("measures the 120 to 115 decline at -4.17%", func() {
			depth, peak, trough := metrics.MaxDrawdownOfValues([]float64{120, 115, 130, 125})
			Expect(float64(depth)).To(BeNumerically("~", -4.17, 0.005))
			Expect(peak).To(Equal(0))
			Expect(trough).To(Equal(1))
		})

		It("returns zero for rising values", func() {
			depth, peak, trough := metrics.MaxDrawdownOfValues([]float64{1, 2, 3})
			Expect(depth).To(BeEquivalentTo(0))
			Expect(peak).To(Equal(0))
			Expect(trough).To(Equal(0))
		})
	})

	It("builds the drawdown curve", func() {
		dd := metrics.DrawdownSeries(seq(series.Cumulative, 0, 10, 5, 12))
		Expect(dd.Unit).To(Equal(series.Drawdown))
		Expect(dd.At(0).Value).To(BeEquivalentTo(0))
		Expect(dd.At(1).Value).To(BeEquivalentTo(0))
		Expect(float64(dd.At(2).Value)).To(BeNumerically("~", (1.05/1.1-1)*100, 1e-9))
		Expect(dd.At(3).Value).To(BeEquivalentTo(0))
	})

	Context("when finding recovery episodes", func() {
		var cumulative *series.Returns

		BeforeEach(func() {
			cumulative = seq(series.Cumulative, 0, 10, 5, 8, 12, 6, 7)
		})

		It("finds every contiguous run below the peak", func() {
			all := metrics.AllRecoveries(cumulative)
			Expect(all).To(HaveLen(2))

			Expect(all[0].PeakIndex).To(Equal(1))
			Expect(all[0].TroughIndex).To(Equal(2))
			Expect(all[0].RecoveryIndex).To(Equal(4))
			Expect(all[0].Duration).To(Equal(3))
			Expect(all[0].CalendarDays).To(Equal(3))
			Expect(all[0].Recovered).To(BeTrue())
			Expect(float64(all[0].MaxDepth)).To(BeNumerically("~", (1.05/1.1-1)*100, 1e-9))
			Expect(all[0].PeakDate).To(Equal(cumulative.At(1).Date))
			Expect(all[0].RecoveryDate).To(Equal(cumulative.At(4).Date))

			Expect(all[1].PeakIndex).To(Equal(4))
			Expect(all[1].RecoveryIndex).To(Equal(6))
			Expect(all[1].Duration).To(Equal(2))
			Expect(all[1].Recovered).To(BeFalse())
		})

		It("returns the longest episode", func() {
			longest := metrics.LongestRecovery(cumulative)
			Expect(longest.Duration).To(Equal(3))
			Expect(longest.PeakIndex).To(Equal(1))
		})

		It("reports an open episode that outlasts the others", func() {
			longest := metrics.LongestRecovery(seq(series.Cumulative, 0, 5, 10, 2, 3, 4, 5, 6))
			Expect(longest.Recovered).To(BeFalse())
			Expect(longest.PeakIndex).To(Equal(2))
			Expect(longest.RecoveryIndex).To(Equal(7))
			Expect(longest.Duration).To(Equal(5))
		})

		It("starts an episode at the last observation on the peak", func() {
			all := metrics.AllRecoveries(seq(series.Cumulative, 0, 10, 10, 5, 10))
			Expect(all).To(HaveLen(1))
			Expect(all[0].PeakIndex).To(Equal(2))
			Expect(all[0].RecoveryIndex).To(Equal(4))
			Expect(all[0].Duration).To(Equal(2))
		})

		It("orders episodes of equal length chronologically", func() {
			all := metrics.AllRecoveries(seq(series.Cumulative, 0, 10, 5, 10, 20, 15, 20))
			Expect(all).To(HaveLen(2))
			Expect(all[0].PeakIndex).To(Equal(1))
			Expect(all[1].PeakIndex).To(Equal(4))
		})

		It("returns nothing for a series that never declines", func() {
			rising := seq(series.Cumulative, 0, 1, 2, 3)
			Expect(metrics.AllRecoveries(rising)).To(BeEmpty())
			Expect(metrics.LongestRecovery(rising).IsZero()).To(BeTrue())
		})

		It("ranks the deepest drawdowns first", func() {
			top := metrics.TopDrawdowns(cumulative, 1)
			Expect(top).To(HaveLen(1))
			Expect(top[0].PeakIndex).To(Equal(4))
			Expect(top[0].TroughIndex).To(Equal(5))

			Expect(metrics.TopDrawdowns(cumulative, 0)).To(HaveLen(2))
		})
	})
})

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

package report_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/hedge"
	"github.com/hedgelab/hedgelab/loader"
	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/report"
	"github.com/hedgelab/hedgelab/series"
)

func returns(unit series.Unit, dates []string, vals ...float64) *series.Returns {
	pts := make([]series.DatedValue, len(vals))
	for idx, val := range vals {
		pts[idx] = series.DatedValue{Date: datekey.MustParse(dates[idx]), Value: series.PercentPoints(val)}
	}
	return series.MustNew(unit, pts)
}

func readCSV(buf *bytes.Buffer) [][]string {
	records, err := csv.NewReader(buf).ReadAll()
	Expect(err).To(BeNil())
	return records
}

var _ = Describe("Report", func() {
	var (
		daily     *series.Returns
		benchmark *series.Returns
		summary   metrics.PerformanceSummary
	)

	BeforeEach(func() {
		daily = returns(series.Daily, []string{"20230103", "20230104", "20230105"}, 1.5, -0.5, 0.25)
		benchmark = returns(series.Daily, []string{"20230104", "20230105", "20230106"}, 0.5, 0.5, 0.5)
		summary = metrics.Summarize(daily, benchmark, metrics.DefaultOptions())
	})

	Context("when writing CSV", func() {
		It("aligns series columns on the union of their dates", func() {
			buf := &bytes.Buffer{}
			Expect(report.WriteSeriesCSV(buf,
				report.Column{Name: "daily_return", Series: daily},
				report.Column{Name: "benchmark", Series: benchmark},
			)).To(Succeed())

			records := readCSV(buf)
			Expect(records).To(Equal([][]string{
				{"date", "daily_return", "benchmark"},
				{"2023-01-03", "1.5", ""},
				{"2023-01-04", "-0.5", "0.5"},
				{"2023-01-05", "0.25", "0.5"},
				{"2023-01-06", "", "0.5"},
			}))
		})

		It("writes one summary row per name", func() {
			buf := &bytes.Buffer{}
			Expect(report.WriteSummaryCSV(buf,
				report.NamedSummary{Name: "all", Summary: summary},
				report.NamedSummary{Name: "empty"},
			)).To(Succeed())

			records := readCSV(buf)
			Expect(records).To(HaveLen(3))
			Expect(records[0][0]).To(Equal("name"))
			Expect(records[1][0]).To(Equal("all"))
			Expect(records[1][1]).To(Equal("2023-01-03"))
			Expect(records[1][3]).To(Equal("3"))
			Expect(records[2][1]).To(Equal(""))
			Expect(records[2][3]).To(Equal("0"))
		})

		It("writes the hedge rows", func() {
			res, err := hedge.Compose(daily, benchmark, nil, hedge.DefaultOptions())
			Expect(err).To(BeNil())

			buf := &bytes.Buffer{}
			Expect(report.WriteHedgeCSV(buf, res)).To(Succeed())
			records := readCSV(buf)
			Expect(records).To(HaveLen(3))
			Expect(records[0]).To(Equal([]string{"date", "backtest_return", "index_return", "position_ratio", "hedge_return", "hedge_net_value", "hedge_cash"}))
			Expect(records[1][0]).To(Equal("2023-01-04"))
			Expect(records[1][4]).To(Equal("-1"))
			Expect(records[1][6]).To(Equal("0"))
		})
	})

	Context("when rendering tables", func() {
		It("shows every summary side by side", func() {
			buf := &bytes.Buffer{}
			report.SummaryTable(buf, report.NamedSummary{Name: "Strategy", Summary: summary})
			Expect(buf.String()).To(ContainSubstring("STRATEGY"))
			Expect(buf.String()).To(ContainSubstring("Sharpe Ratio"))
			Expect(buf.String()).To(ContainSubstring("2023-01-03 .. 2023-01-05"))
		})

		It("lists drawdown episodes", func() {
			cumulative := metrics.BuildCumulative(daily, metrics.DefaultInitialValue)
			buf := &bytes.Buffer{}
			report.DrawdownTable(buf, metrics.TopDrawdowns(cumulative, 10))
			Expect(buf.String()).To(ContainSubstring("2023-01-03"))
			Expect(buf.String()).To(ContainSubstring("(open)"))
		})
	})

	Context("with interval tables", func() {
		const intervals = `
[[interval]]
name = "Q1"
start = "2023-01-01"
end = "2023-03-31"

[[interval]]
name = "Crash"
start = "20150612"
end = "20160128"
`

		It("looks intervals up by name", func() {
			table, err := report.ParseIntervals([]byte(intervals))
			Expect(err).To(BeNil())
			Expect(table.Len()).To(Equal(2))

			q1, err := table.Get("q1")
			Expect(err).To(BeNil())
			Expect(q1.Start).To(Equal(datekey.MustParse("2023-01-01")))
			Expect(q1.End).To(Equal(datekey.MustParse("2023-03-31")))

			Expect(table.All()[1].Name).To(Equal("Crash"))
		})

		It("reports unknown names", func() {
			table, err := report.ParseIntervals([]byte(intervals))
			Expect(err).To(BeNil())
			_, err = table.Get("2008")
			Expect(err).To(MatchError(report.ErrUnknownInterval))
		})

		It("does not expose its internal slice", func() {
			table, err := report.ParseIntervals([]byte(intervals))
			Expect(err).To(BeNil())
			all := table.All()
			all[0].Name = "changed"
			q1, err := table.Get("Q1")
			Expect(err).To(BeNil())
			Expect(q1.Name).To(Equal("Q1"))
		})

		DescribeTable("rejects invalid tables", func(doc string) {
			_, err := report.ParseIntervals([]byte(doc))
			Expect(err).ToNot(BeNil())
		},
			Entry("bad date", "[[interval]]\nname = \"x\"\nstart = \"2023/01/01\"\nend = \"2023-02-01\"\n"),
			Entry("reversed", "[[interval]]\nname = \"x\"\nstart = \"2023-02-01\"\nend = \"2023-01-01\"\n"),
			Entry("duplicate", "[[interval]]\nname = \"x\"\nstart = \"2023-01-01\"\nend = \"2023-02-01\"\n[[interval]]\nname = \"X\"\nstart = \"2023-01-01\"\nend = \"2023-02-01\"\n"),
			Entry("no name", "[[interval]]\nstart = \"2023-01-01\"\nend = \"2023-02-01\"\n"),
		)
	})

	It("writes an XLSX workbook", func() {
		dir, err := os.MkdirTemp("", "hedgelab-report")
		Expect(err).To(BeNil())
		defer os.RemoveAll(dir)

		res, err := hedge.Compose(daily, benchmark, nil, hedge.DefaultOptions())
		Expect(err).To(BeNil())

		fn := filepath.Join(dir, "out", "report.xlsx")
		Expect(report.WriteXLSX(fn, report.Workbook{
			Summaries: []report.NamedSummary{{Name: "all", Summary: summary}},
			Series:    []report.Column{{Name: "daily_return", Series: daily}},
			Hedge:     res,
		})).To(Succeed())

		fx, err := excelize.OpenFile(fn)
		Expect(err).To(BeNil())
		defer fx.Close()

		Expect(fx.GetSheetList()).To(Equal([]string{"Summary", "Series", "Hedge"}))
		val, err := fx.GetCellValue("Series", "A2")
		Expect(err).To(BeNil())
		Expect(val).To(Equal("2023-01-03"))
		val, err = fx.GetCellValue("Summary", "A2")
		Expect(err).To(BeNil())
		Expect(val).To(Equal("all"))
	})
	Context("when writing the backtest export layout", func() {
		It("reads back as a backtest", func() {
			cumulative := metrics.BuildCumulative(daily, metrics.DefaultInitialValue)
			benchCumulative := metrics.BuildCumulative(benchmark, metrics.DefaultInitialValue)

			buf := &bytes.Buffer{}
			Expect(report.WriteBacktestJSONL(buf, cumulative, benchCumulative)).To(Succeed())
			Expect(strings.Count(buf.String(), "\n")).To(Equal(3))
			Expect(buf.String()).To(HavePrefix(`{"type":"daily_data","date":"20230103"`))

			bt, err := loader.ParseBacktest(buf.Bytes())
			Expect(err).To(BeNil())
			Expect(bt.Strategy.Dates()).To(Equal(cumulative.Dates()))
			for idx, val := range bt.Strategy.Floats() {
				Expect(val).To(BeNumerically("~", float64(cumulative.At(idx).Value), 1e-12))
			}

			Expect(bt.Benchmark.Dates()).To(Equal(benchCumulative.Trim(cumulative.Start(), cumulative.End()).Dates()))
			Expect(bt.Benchmark.Floats()[0]).To(BeNumerically("~", float64(benchCumulative.At(0).Value), 1e-12))

			back := metrics.ExtractDaily(bt.Strategy)
			for idx, val := range back.Floats() {
				Expect(val).To(BeNumerically("~", float64(daily.At(idx).Value), 1e-9))
			}
		})

		It("leaves out the benchmark when there is none", func() {
			buf := &bytes.Buffer{}
			Expect(report.WriteBacktestJSONL(buf, metrics.BuildCumulative(daily, metrics.DefaultInitialValue), nil)).To(Succeed())
			Expect(buf.String()).ToNot(ContainSubstring("benchmark"))

			bt, err := loader.ParseBacktest(buf.Bytes())
			Expect(err).To(BeNil())
			Expect(bt.Benchmark.IsEmpty()).To(BeTrue())
		})

		It("writes hedge positions that load as position ratios", func() {
			res, err := hedge.Compose(daily, benchmark, nil, hedge.DefaultOptions())
			Expect(err).To(BeNil())

			buf := &bytes.Buffer{}
			Expect(report.WritePositionsJSON(buf, res, "hedged")).To(Succeed())

			positions, err := loader.ParsePositions(buf.Bytes())
			Expect(err).To(BeNil())
			Expect(positions.Dates()).To(Equal(res.Daily().Dates()))
			Expect(positions.Floats()).To(Equal([]float64{1, 1}))
		})
	})
})

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

package loader_test

import (
	"io/fs"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/hedgelab/hedgelab/common"
	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/loader"
	"github.com/hedgelab/hedgelab/series"
)

const backtestJSONL = `{"type":"meta","name":"T1 sell"}
{"type":"daily_data","date":"20230103","data":{"overallReturn":{"records":[{"value":0.88}]},"benchmark":{"records":[{"value":0.5}]}}}
this is not json
{"type":"daily_data","date":"2023-01-04","data":{"overallReturn":{"records":[{"value":1.41}]},"benchmark":{"records":[{"value":0.75}]}}}

{"type":"daily_data","date":20230105,"data":{"overallReturn":{"records":[{"value":1.87}]}}}
`

var _ = Describe("Loader", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "hedgelab-loader")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	write := func(name string, content string) string {
		fn := filepath.Join(dir, name)
		data := []byte(content)
		if common.IsCompressed(name) {
			var err error
			data, err = common.Compress(data)
			Expect(err).To(BeNil())
		}
		Expect(os.WriteFile(fn, data, 0600)).To(Succeed())
		return fn
	}

	Context("with backtest exports", func() {
		It("reads the strategy and benchmark cumulative returns", func() {
			bt, err := loader.LoadBacktest(write("bt.jsonl", backtestJSONL))
			Expect(err).To(BeNil())

			Expect(bt.Strategy.Unit).To(Equal(series.Cumulative))
			Expect(bt.Strategy.Floats()).To(Equal([]float64{0.88, 1.41, 1.87}))
			Expect(bt.Strategy.Start()).To(Equal(datekey.MustParse("20230103")))
			Expect(bt.Strategy.End()).To(Equal(datekey.MustParse("20230105")))

			Expect(bt.Benchmark.Floats()).To(Equal([]float64{0.5, 0.75}))
		})

		It("reads lz4 compressed files", func() {
			bt, err := loader.LoadBacktest(write("bt.jsonl.lz4", backtestJSONL))
			Expect(err).To(BeNil())
			Expect(bt.Strategy.Len()).To(Equal(3))
		})

		It("keeps the later record for a repeated date", func() {
			bt, err := loader.ParseBacktest([]byte(`{"type":"daily_data","date":"20230103","data":{"overallReturn":{"records":[{"value":1}]}}}
{"type":"daily_data","date":"20230103","data":{"overallReturn":{"records":[{"value":2}]}}}`))
			Expect(err).To(BeNil())
			Expect(bt.Strategy.Floats()).To(Equal([]float64{2}))
		})

		It("uses 0 when the overall return is missing", func() {
			bt, err := loader.ParseBacktest([]byte(`{"type":"daily_data","date":"20230103","data":{}}`))
			Expect(err).To(BeNil())
			Expect(bt.Strategy.Floats()).To(Equal([]float64{0}))
			Expect(bt.Benchmark.IsEmpty()).To(BeTrue())
		})

		It("fails on an invalid date", func() {
			_, err := loader.ParseBacktest([]byte(`{"type":"daily_data","date":"03/01/2023","data":{}}`))
			Expect(err).To(MatchError(datekey.ErrInvalidDateFormat))
		})

		It("fails when there are no daily records", func() {
			_, err := loader.ParseBacktest([]byte(`{"type":"meta"}`))
			Expect(err).To(MatchError(loader.ErrEmptyInput))
		})

		It("reports a missing file", func() {
			_, err := loader.LoadBacktest(filepath.Join(dir, "missing.jsonl"))
			Expect(os.IsNotExist(err)).To(BeTrue())
		})
	})

	Context("with flat records", func() {
		It("reads a JSON array", func() {
			s, err := loader.LoadFlat(write("flat.json", `[
				{"date":"2023-01-04","cumulative_return":1.41},
				{"date":"2023-01-03","cumulative_return":0.88}
			]`), loader.CumulativeRecords())
			Expect(err).To(BeNil())
			Expect(s.Unit).To(Equal(series.Cumulative))
			Expect(s.Floats()).To(Equal([]float64{0.88, 1.41}))
		})

		It("reads JSON lines with custom field names", func() {
			opts := loader.FlatOptions{DateField: "day", ValueField: "ret", Unit: series.Daily}
			s, err := loader.ParseFlat([]byte("{\"day\":\"20230103\",\"ret\":0.5}\n{\"day\":\"20230104\",\"ret\":-0.25}\n"), opts)
			Expect(err).To(BeNil())
			Expect(s.Unit).To(Equal(series.Daily))
			Expect(s.Floats()).To(Equal([]float64{0.5, -0.25}))
		})

		It("fails on a missing value", func() {
			_, err := loader.ParseFlat([]byte(`[{"date":"2023-01-03"}]`), loader.CumulativeRecords())
			Expect(err).To(MatchError(loader.ErrMissingField))
		})

		It("fails on a missing date", func() {
			_, err := loader.ParseFlat([]byte(`[{"cumulative_return":1}]`), loader.CumulativeRecords())
			Expect(err).To(MatchError(loader.ErrMissingField))
		})

		It("reads index quotes as daily returns", func() {
			s, err := loader.LoadIndex(write("index.jsonl", "{\"date\":\"2023-01-03\",\"pctChg\":0.5,\"close\":3900.1}\n{\"date\":\"2023-01-04\"}\n"))
			Expect(err).To(BeNil())
			Expect(s.Unit).To(Equal(series.Daily))
			Expect(s.Floats()).To(Equal([]float64{0.5, 0}))
		})
	})

	Context("with position files", func() {
		It("reads the position ratio per date", func() {
			s, err := loader.LoadPositions(write("positions.json", `{"balances":[
				{"time":"2023-01-03 15:00:00","position_ratio":0.5,"cash":100},
				{"time":"2023-01-04 10:00:00","position_ratio":0.25},
				{"time":"2023-01-04 15:00:00","position_ratio":0.75},
				{"time":"2023-01-05 15:00:00"}
			]}`))
			Expect(err).To(BeNil())
			Expect(s.Unit).To(Equal(series.Fraction))
			Expect(s.Floats()).To(Equal([]float64{0.5, 0.75, 0}))
		})

		It("fails without balances", func() {
			_, err := loader.ParsePositions([]byte(`{"orders":[]}`))
			Expect(err).To(MatchError(loader.ErrMissingField))
		})
	})

	Context("with the cache", func() {
		It("returns the same series on a hit", func() {
			cache, err := loader.NewCache(4, "")
			Expect(err).To(BeNil())

			fn := write("bt.jsonl", backtestJSONL)
			first, err := cache.Backtest(fn)
			Expect(err).To(BeNil())
			Expect(cache.Len()).To(Equal(1))

			second, err := cache.Backtest(fn)
			Expect(err).To(BeNil())
			Expect(cache.Len()).To(Equal(1))
			Expect(second.Strategy.Floats()).To(Equal(first.Strategy.Floats()))
			Expect(second.Strategy.Dates()).To(Equal(first.Strategy.Dates()))
			Expect(second.Benchmark.Floats()).To(Equal(first.Benchmark.Floats()))
		})

		It("parses the file again when it changes", func() {
			cache, err := loader.NewCache(4, "")
			Expect(err).To(BeNil())

			fn := write("index.jsonl", `{"date":"2023-01-03","pctChg":0.5}`)
			s, err := cache.Index(fn)
			Expect(err).To(BeNil())
			Expect(s.Floats()).To(Equal([]float64{0.5}))

			write("index.jsonl", `{"date":"2023-01-03","pctChg":0.75}`)
			s, err = cache.Index(fn)
			Expect(err).To(BeNil())
			Expect(s.Floats()).To(Equal([]float64{0.75}))
			Expect(cache.Len()).To(Equal(2))
		})

		It("caches position ratios", func() {
			cache, err := loader.NewCache(4, "")
			Expect(err).To(BeNil())
			s, err := cache.Positions(write("p.json", `{"balances":[{"time":"2023-01-03 15:00:00","position_ratio":0.5}]}`))
			Expect(err).To(BeNil())
			Expect(s.Floats()).To(Equal([]float64{0.5}))
		})

		It("counts memory hits and parses", func() {
			cache, err := loader.NewCache(4, "")
			Expect(err).To(BeNil())

			fn := write("bt.jsonl", backtestJSONL)
			_, err = cache.Backtest(fn)
			Expect(err).To(BeNil())
			_, err = cache.Backtest(fn)
			Expect(err).To(BeNil())

			Expect(cache.Stats()).To(Equal(loader.CacheStats{MemoryHits: 1, Parses: 1}))
		})

		It("serves later runs from the cache directory", func() {
			cacheDir := filepath.Join(dir, "cache")
			fn := write("bt.jsonl", backtestJSONL)

			first, err := loader.NewCache(4, cacheDir)
			Expect(err).To(BeNil())
			expected, err := first.Backtest(fn)
			Expect(err).To(BeNil())
			Expect(first.Stats().Parses).To(BeEquivalentTo(1))

			entries, err := filepath.Glob(filepath.Join(cacheDir, "*.json.lz4"))
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(1))

			second, err := loader.NewCache(4, cacheDir)
			Expect(err).To(BeNil())
			bt, err := second.Backtest(fn)
			Expect(err).To(BeNil())
			Expect(second.Stats()).To(Equal(loader.CacheStats{DiskHits: 1}))
			Expect(bt.Strategy.Floats()).To(Equal(expected.Strategy.Floats()))
			Expect(bt.Strategy.Dates()).To(Equal(expected.Strategy.Dates()))
			Expect(bt.Benchmark.Floats()).To(Equal(expected.Benchmark.Floats()))

			_, err = second.Backtest(fn)
			Expect(err).To(BeNil())
			Expect(second.Stats().MemoryHits).To(BeEquivalentTo(1))
		})

		It("parses again when a disk entry is corrupt", func() {
			cacheDir := filepath.Join(dir, "cache")
			fn := write("index.jsonl", `{"date":"2023-01-03","pctChg":0.5}`)

			first, err := loader.NewCache(4, cacheDir)
			Expect(err).To(BeNil())
			_, err = first.Index(fn)
			Expect(err).To(BeNil())

			entries, err := filepath.Glob(filepath.Join(cacheDir, "*.json.lz4"))
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(1))
			Expect(os.WriteFile(entries[0], []byte("garbage"), 0600)).To(Succeed())

			second, err := loader.NewCache(4, cacheDir)
			Expect(err).To(BeNil())
			s, err := second.Index(fn)
			Expect(err).To(BeNil())
			Expect(s.Floats()).To(Equal([]float64{0.5}))
			Expect(second.Stats()).To(Equal(loader.CacheStats{Parses: 1}))
		})

		It("attaches a stack trace to file errors", func() {
			cache, err := loader.NewCache(4, "")
			Expect(err).To(BeNil())

			_, err = cache.Backtest(filepath.Join(dir, "missing.jsonl"))
			Expect(err).To(MatchError(fs.ErrNotExist))
			Expect(pkgerrors.MarshalStack(err)).ToNot(BeNil())

			_, err = loader.LoadBacktest(filepath.Join(dir, "missing.jsonl"))
			Expect(err).To(MatchError(fs.ErrNotExist))
			Expect(pkgerrors.MarshalStack(err)).ToNot(BeNil())
		})

		It("digests contents with blake3", func() {
			Expect(loader.Digest([]byte("abc"))).To(HaveLen(64))
			Expect(loader.Digest([]byte("abc"))).ToNot(Equal(loader.Digest([]byte("abd"))))
		})
	})
})

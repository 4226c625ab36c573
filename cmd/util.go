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

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/hedgelab/hedgelab/common"
	"github.com/hedgelab/hedgelab/hedge"
	"github.com/hedgelab/hedgelab/loader"
	"github.com/hedgelab/hedgelab/metrics"
	"github.com/hedgelab/hedgelab/report"
	"github.com/hedgelab/hedgelab/series"
)

var (
	cacheOnce sync.Once
	cache     *loader.Cache
)

// cacheDir resolves the directory parsed inputs are persisted to; an empty
// result disables the disk cache
func cacheDir() string {
	if !viper.GetBool("cache.disk") {
		return ""
	}

	if dir := viper.GetString("cache.dir"); dir != "" {
		return dir
	}

	base, err := os.UserCacheDir()
	if err != nil {
		log.Warn().Err(err).Msg("no user cache directory; disk cache disabled")
		return ""
	}
	return filepath.Join(base, common.ProgramName)
}

// inputCache returns the process wide cache of parsed input files
func inputCache() *loader.Cache {
	cacheOnce.Do(func() {
		dir := cacheDir()
		var err error
		cache, err = loader.NewCache(viper.GetInt("cache.local_size"), dir)
		if err != nil {
			log.Warn().Err(err).Str("Dir", dir).Msg("could not create cache directory; caching in memory only")
			cache, err = loader.NewCache(viper.GetInt("cache.local_size"), "")
		}
		if err != nil {
			log.Fatal().Err(err).Msg("could not create input cache")
		}
	})
	return cache
}

// logCacheStats reports how the inputs of this run were served
func logCacheStats() {
	if cache == nil {
		return
	}
	stats := cache.Stats()
	log.Debug().Int64("MemoryHits", stats.MemoryHits).Int64("DiskHits", stats.DiskHits).Int64("Parses", stats.Parses).Msg("input cache")
}

// analysisOptions builds the metric options from configuration
func analysisOptions() metrics.Options {
	opts := metrics.DefaultOptions()
	if days := viper.GetInt("analysis.trading_days_per_year"); days > 0 {
		opts.TradingDaysPerYear = days
	}
	if viper.IsSet("analysis.risk_free_rate") {
		opts.RiskFreeRate = series.PercentPoints(viper.GetFloat64("analysis.risk_free_rate"))
	}

	switch mode := metrics.Annualization(strings.ToLower(viper.GetString("analysis.annualization"))); mode {
	case metrics.CalendarDays, metrics.TradingDays:
		opts.Annualization = mode
	case "":
	default:
		log.Warn().Str("Annualization", string(mode)).Msg("unknown annualization mode; using calendar days")
	}

	return opts
}

// hedgeOptions builds the hedge options from configuration
func hedgeOptions() hedge.Options {
	opts := hedge.DefaultOptions()
	if viper.IsSet("hedge.ratio") {
		opts.FallbackRatio = series.Ratio(viper.GetFloat64("hedge.ratio"))
	}
	if val := viper.GetFloat64("hedge.initial_net_value"); val > 0 {
		opts.InitialNetValue = val
	}
	return opts
}

// loadReturns reads a strategy file in the configured input format
func loadReturns(fn string) (*loader.Backtest, error) {
	switch viper.GetString("input.format") {
	case "flat":
		strategy, err := inputCache().Flat(fn, loader.CumulativeRecords())
		if err != nil {
			return nil, err
		}
		return &loader.Backtest{Strategy: strategy, Benchmark: series.Empty[series.PercentPoints](series.Cumulative)}, nil
	case "backtest", "":
		return inputCache().Backtest(fn)
	default:
		return nil, fmt.Errorf("unknown input format %q", viper.GetString("input.format"))
	}
}

// mustLoadReturns is loadReturns for command handlers
func mustLoadReturns(fn string) *loader.Backtest {
	bt, err := loadReturns(fn)
	if err != nil {
		log.Fatal().Stack().Err(err).Str("FileName", fn).Msg("could not load returns")
	}
	log.Info().Str("FileName", fn).Object("Strategy", bt.Strategy).Msg("loaded returns")
	return bt
}

// loadIntervals reads the configured interval table
func loadIntervals() *report.IntervalTable {
	fn := viper.GetString("intervals.file")
	if fn == "" {
		log.Fatal().Msg("no interval table configured; set intervals.file or pass --intervals")
	}

	table, err := report.LoadIntervals(fn)
	if err != nil {
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not load interval table")
	}
	return table
}

// createOutput opens fn for writing; an empty name or "-" writes to stdout
func createOutput(fn string) (io.WriteCloser, error) {
	if fn == "" || fn == "-" {
		return nopCloser{os.Stdout}, nil
	}

	if dir := filepath.Dir(fn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return common.CreateFile(fn)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// writeOutput creates fn and hands it to write, closing it afterwards
func writeOutput(fn string, write func(io.Writer) error) {
	out, err := createOutput(fn)
	if err != nil {
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not create output file")
	}

	if err := write(out); err != nil {
		out.Close()
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not write output")
	}

	if err := out.Close(); err != nil {
		log.Fatal().Err(err).Str("FileName", fn).Msg("could not close output file")
	}

	if fn != "" && fn != "-" {
		log.Info().Str("FileName", fn).Msg("wrote output")
	}
}

func isXLSX(fn string) bool {
	return strings.HasSuffix(strings.ToLower(fn), ".xlsx")
}

// writeWorkbook writes wb as XLSX when fn ends in .xlsx and otherwise writes
// csv with the given writer
func writeWorkbook(fn string, wb report.Workbook, csv func(io.Writer) error) {
	if isXLSX(fn) {
		if err := report.WriteXLSX(fn, wb); err != nil {
			log.Fatal().Err(err).Str("FileName", fn).Msg("could not write workbook")
		}
		log.Info().Str("FileName", fn).Msg("wrote workbook")
		return
	}
	writeOutput(fn, csv)
}

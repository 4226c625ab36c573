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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hedgelab/hedgelab/common"
)

func init() {
	cobra.OnInitialize(common.SetupLogging)

	// Logging configuration
	viper.BindEnv("log.level", "HEDGELAB_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "HEDGELAB_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "HEDGELAB_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "HEDGELAB_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", true, "Write human readable log messages instead of JSON")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Analysis conventions
	viper.BindEnv("analysis.trading_days_per_year", "HEDGELAB_TRADING_DAYS")
	rootCmd.PersistentFlags().Int("trading-days", 252, "Trading days per year used for volatility and the trading day proxy")
	viper.BindPFlag("analysis.trading_days_per_year", rootCmd.PersistentFlags().Lookup("trading-days"))

	viper.BindEnv("analysis.risk_free_rate", "HEDGELAB_RISK_FREE_RATE")
	rootCmd.PersistentFlags().Float64("risk-free-rate", 3.0, "Annual risk free rate in percent")
	viper.BindPFlag("analysis.risk_free_rate", rootCmd.PersistentFlags().Lookup("risk-free-rate"))

	rootCmd.PersistentFlags().String("annualization", "calendar", "Elapsed period used for annualization: `calendar` or `trading`")
	viper.BindPFlag("analysis.annualization", rootCmd.PersistentFlags().Lookup("annualization"))

	// Inputs
	rootCmd.PersistentFlags().String("input-format", "backtest", "Layout of return files: `backtest` (JSON lines export) or `flat` (date / cumulative_return records)")
	viper.BindPFlag("input.format", rootCmd.PersistentFlags().Lookup("input-format"))

	rootCmd.PersistentFlags().String("cache-dir", "", "directory for parsed input files (default: user cache directory)")
	viper.BindPFlag("cache.dir", rootCmd.PersistentFlags().Lookup("cache-dir"))

	viper.BindEnv("cache.disk", "HEDGELAB_CACHE_DISK")
	rootCmd.PersistentFlags().Bool("cache-disk", true, "persist parsed input files between runs")
	viper.BindPFlag("cache.disk", rootCmd.PersistentFlags().Lookup("cache-disk"))

	viper.SetDefault("cache.local_size", 32)
	viper.SetDefault("hedge.initial_net_value", 100_000_000.0)
}

var rootCmd = &cobra.Command{
	Use:     "hedgelab",
	Version: common.CurrentVersion.String(),
	Short:   "hedgelab analyzes backtest returns",
	Long: `Analyze the cumulative returns of backtests and index quotes: daily returns,
annualized return, drawdowns, recovery periods, Sharpe ratio and index hedges.`,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logCacheStats()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

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

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/hedgelab/hedgelab/datekey"
	"github.com/hedgelab/hedgelab/hedge"
	"github.com/hedgelab/hedgelab/metrics"
)

const (
	summarySheet   = "Summary"
	seriesSheet    = "Series"
	hedgeSheet     = "Hedge"
	drawdownsSheet = "Drawdowns"
)

// Workbook collects everything written to an XLSX report. Empty parts are
// left out of the workbook; the summary sheet is always present.
type Workbook struct {
	Summaries []NamedSummary
	Series    []Column
	Hedge     *hedge.Result
	Drawdowns []metrics.RecoveryEpisode
}

// WriteXLSX saves the workbook to fn, creating the parent directory if needed
func WriteXLSX(fn string, wb Workbook) error {
	if dir := filepath.Dir(fn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer func() {
		if err := fx.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close workbook")
		}
	}()

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := fx.SetSheetName(fx.GetSheetName(0), summarySheet); err != nil {
		return err
	}

	summaryRows := make([][]interface{}, len(wb.Summaries))
	for idx, ns := range wb.Summaries {
		summaryRows[idx] = toCells(summaryRecord(ns))
	}
	if err := writeSheet(fx, summarySheet, summaryHeader, summaryRows, headerStyle); err != nil {
		return err
	}

	if len(wb.Series) > 0 {
		header := []string{"date"}
		for _, col := range wb.Series {
			header = append(header, col.Name)
		}
		rows := [][]interface{}{}
		for _, rec := range seriesRows(wb.Series) {
			rows = append(rows, toCells(rec))
		}
		if err := writeSheet(fx, seriesSheet, header, rows, headerStyle); err != nil {
			return err
		}
	}

	if wb.Hedge != nil && len(wb.Hedge.Rows) > 0 {
		rows := make([][]interface{}, len(wb.Hedge.Rows))
		for idx, row := range wb.Hedge.Rows {
			rows[idx] = toCells(hedgeRecord(row))
		}
		if err := writeSheet(fx, hedgeSheet, hedgeHeader, rows, headerStyle); err != nil {
			return err
		}
	}

	if len(wb.Drawdowns) > 0 {
		header := []string{"peak_date", "trough_date", "recovery_date", "max_depth", "duration", "calendar_days", "recovered"}
		rows := make([][]interface{}, len(wb.Drawdowns))
		for idx, ep := range wb.Drawdowns {
			rows[idx] = []interface{}{
				datekey.Format(ep.PeakDate),
				datekey.Format(ep.TroughDate),
				datekey.Format(ep.RecoveryDate),
				float64(ep.MaxDepth),
				ep.Duration,
				ep.CalendarDays,
				ep.Recovered,
			}
		}
		if err := writeSheet(fx, drawdownsSheet, header, rows, headerStyle); err != nil {
			return err
		}
	}

	return fx.SaveAs(fn)
}

func writeSheet(fx *excelize.File, sheet string, header []string, rows [][]interface{}, headerStyle int) error {
	if idx, err := fx.GetSheetIndex(sheet); err != nil {
		return err
	} else if idx < 0 {
		if _, err := fx.NewSheet(sheet); err != nil {
			return err
		}
	}

	headerCells := toCells(header)
	if err := fx.SetSheetRow(sheet, "A1", &headerCells); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for idx := range rows {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return err
		}
		if err := fx.SetSheetRow(sheet, cell, &rows[idx]); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	return fx.SetColWidth(sheet, "A", lastCol, 16)
}

// toCells converts formatted text back into typed cells so numbers stay
// numeric in the workbook
func toCells(record []string) []interface{} {
	cells := make([]interface{}, len(record))
	for idx, val := range record {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cells[idx] = f
			continue
		}
		cells[idx] = val
	}
	return cells
}

// Copyright 2023-2025
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

package pgxmockhelper

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/pashagolub/pgxmock"
	"github.com/rs/zerolog/log"
)

// CSVRows loads a testdata CSV into pgxmock rows. Column order in the
// fixture must match the column order of the mocked SELECT because rows
// scan positionally. Values stay strings unless the type map says
// otherwise ("int"); dates in the dataset are ISO strings, so they need
// no conversion and compare correctly as strings.
type CSVRows struct {
	rows   [][]any
	header []string
}

func NewCSVRows(csvFn string, typeMap map[string]string) *CSVRows {
	subLog := log.With().Str("CsvFn", csvFn).Logger()

	rows := &CSVRows{
		rows: make([][]any, 0),
	}
	rawData, err := os.ReadFile(csvFn)
	if err != nil {
		subLog.Panic().Err(err).Msg("could not read file")
	}

	lines := strings.Split(string(rawData), "\n")
	if len(lines) < 2 {
		subLog.Panic().Int("NumLines", len(lines)).Msg("input file does not have enough lines, need at least 2 (header + trailing new line)")
	}
	if lines[len(lines)-1] != "" {
		subLog.Panic().Msg("input file is missing a trailing new line")
	}

	headerRaw := lines[0]
	lines = lines[1 : len(lines)-1]
	rows.header = strings.Split(headerRaw, ",")

	for _, ll := range lines {
		cols := make([]any, len(rows.header))
		parts := strings.Split(ll, ",")
		for idx, val := range parts {
			colName := rows.header[idx]
			if typeConv, ok := typeMap[colName]; ok {
				switch typeConv {
				case "int":
					parsed, err := strconv.Atoi(val)
					if err != nil {
						subLog.Panic().Err(err).Str("Val", val).Msg("could not convert val to int")
					}
					cols[idx] = parsed
				default:
					cols[idx] = val
				}
			} else {
				cols[idx] = val
			}
		}
		rows.rows = append(rows.rows, cols)
	}

	return rows
}

// Where keeps rows whose named column prints equal to val.
func (csvRows *CSVRows) Where(column string, val string) *CSVRows {
	idx := csvRows.columnIndex(column)
	newRows := make([][]any, 0, len(csvRows.rows))
	for _, row := range csvRows.rows {
		if fmt.Sprint(row[idx]) == val {
			newRows = append(newRows, row)
		}
	}
	csvRows.rows = newRows
	return csvRows
}

// Between keeps rows whose named ISO date column lies in [a, b].
func (csvRows *CSVRows) Between(column string, a string, b string) *CSVRows {
	idx := csvRows.columnIndex(column)
	newRows := make([][]any, 0, len(csvRows.rows))
	for _, row := range csvRows.rows {
		d := row[idx].(string)
		if d >= a && d <= b {
			newRows = append(newRows, row)
		}
	}
	csvRows.rows = newRows
	return csvRows
}

func (csvRows *CSVRows) columnIndex(column string) int {
	for idx, name := range csvRows.header {
		if name == column {
			return idx
		}
	}
	log.Panic().Str("Column", column).Msg("column not found in csv header")
	return -1
}

func (csvRows *CSVRows) Rows() *pgxmock.Rows {
	r := pgxmock.NewRows(csvRows.header)
	for _, row := range csvRows.rows {
		r.AddRow(row...)
	}
	return r
}

func expectReaderTrx(db pgxmock.PgxConnIface) {
	db.ExpectBegin()
	db.ExpectExec("SET ROLE").WillReturnResult(pgconn.CommandTag("SET ROLE"))
}

// MockMarketQuery expects one markets lookup and returns the fixture
// rows for finID.
func MockMarketQuery(db pgxmock.PgxConnIface, finID string) {
	expectReaderTrx(db)
	db.ExpectQuery("(?i)FROM markets").WillReturnRows(
		NewCSVRows("../testdata/markets.csv", nil).Where("fin_id", finID).Rows())
}

// MockMarketsAllQuery expects one markets listing and returns every
// fixture row.
func MockMarketsAllQuery(db pgxmock.PgxConnIface) {
	expectReaderTrx(db)
	db.ExpectQuery("(?i)FROM markets").WillReturnRows(
		NewCSVRows("../testdata/markets.csv", nil).Rows())
}

// MockMicQuery expects one mic_mappings lookup.
func MockMicQuery(db pgxmock.PgxConnIface, mic string) {
	expectReaderTrx(db)
	db.ExpectQuery("(?i)FROM mic_mappings").WillReturnRows(
		NewCSVRows("../testdata/mic_mappings.csv", nil).Where("mic", mic).Rows())
}

// MockSchedulesQuery expects one schedules query for finID.
func MockSchedulesQuery(db pgxmock.PgxConnIface, finID string) {
	expectReaderTrx(db)
	db.ExpectQuery("(?i)FROM schedules").WillReturnRows(
		NewCSVRows("../testdata/schedules.csv", map[string]string{
			"offset_days": "int",
		}).Where("fin_id", finID).Rows())
}

// MockHolidaysQuery expects one market_holidays query for finID over
// the ISO date range [d1, d2].
func MockHolidaysQuery(db pgxmock.PgxConnIface, finID string, d1 string, d2 string) {
	expectReaderTrx(db)
	db.ExpectQuery("(?i)FROM market_holidays").WillReturnRows(
		NewCSVRows("../testdata/market_holidays.csv", nil).Where("fin_id", finID).Between("date", d1, d2).Rows())
}

// MockPhaseTypesQuery expects one phase_types catalog query.
func MockPhaseTypesQuery(db pgxmock.PgxConnIface) {
	expectReaderTrx(db)
	db.ExpectQuery("(?i)FROM phase_types").WillReturnRows(
		NewCSVRows("../testdata/phase_types.csv", nil).Rows())
}

// MockSeasonQuery expects one season_definitions lookup.
func MockSeasonQuery(db pgxmock.PgxConnIface, season string, year int) {
	expectReaderTrx(db)
	db.ExpectQuery("(?i)FROM season_definitions").WillReturnRows(
		NewCSVRows("../testdata/season_definitions.csv", map[string]string{
			"year": "int",
		}).Where("season", season).Where("year", strconv.Itoa(year)).Rows())
}

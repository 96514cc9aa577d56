// Copyright 2023-2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package data

import (
	"context"
	"fmt"

	"github.com/jackc/pgsql"
	"github.com/jackc/pgx/v4"
	"github.com/markethours/mh-api/data/database"
	"github.com/rs/zerolog/log"
)

// Store provides row-oriented read-only access to the trading-hours
// reference dataset. Absent single-row lookups return (nil, nil); only
// malformed queries and transport failures are errors.
type Store interface {
	MarketByFinID(ctx context.Context, finID string) (*MarketRecord, error)
	MarketsAll(ctx context.Context) ([]*MarketRecord, error)
	MicMapping(ctx context.Context, mic string) (*MicMappingRecord, error)
	SchedulesForMarket(ctx context.Context, finID string) ([]*ScheduleRecord, error)
	HolidaysForMarket(ctx context.Context, finID string, startDate string, endDate string) ([]*MarketHolidayRecord, error)
	Season(ctx context.Context, name string, year int) (*SeasonDefinitionRecord, error)
	PhaseTypes(ctx context.Context) (map[string]*PhaseTypeRecord, error)
}

// PgxStore implements Store against the postgres pool configured in
// data/database. It is safe for concurrent readers.
type PgxStore struct{}

func NewStore() *PgxStore {
	return &PgxStore{}
}

var marketColumns = []string{
	"fin_id", "exchange_name", "market_name", "security_group", "timezone",
	"weekend_definition", "mic", "acronym", "asset_type", "memo",
	"permanently_closed", "replaced_by",
}

var scheduleColumns = []string{
	"fin_id", "schedule_group", "timezone", "phase_type", "phase_name",
	"phase_memo", "days", `"start"`, `"end"`, "offset_days",
	"in_force_start_date", "in_force_end_date", "season_start", "season_end",
}

var holidayColumns = []string{
	"fin_id", "date", "holiday_name", "schedule", "settlement", "observed",
	"status", "memo",
}

type cond struct {
	expr string
	arg  interface{}
}

func buildSelect(table string, columns []string, conds []cond, order string) (string, []interface{}) {
	stmt := &pgsql.SelectStatement{}
	for _, col := range columns {
		stmt.Select(col)
	}
	stmt.From(table)
	for _, c := range conds {
		stmt.Where(c.expr, c.arg)
	}
	if order != "" {
		stmt.Order(order)
	}
	sql, args := pgsql.Build(stmt)
	return sql, args
}

func scanMarket(rows pgx.Rows) (*MarketRecord, error) {
	market := &MarketRecord{}
	err := rows.Scan(&market.FinID, &market.ExchangeName, &market.MarketName,
		&market.SecurityGroup, &market.Timezone, &market.WeekendDefinition,
		&market.MIC, &market.Acronym, &market.AssetType, &market.Memo,
		&market.PermanentlyClosed, &market.ReplacedBy)
	if err != nil {
		return nil, err
	}
	return market, nil
}

func (store *PgxStore) queryMarkets(ctx context.Context, conds []cond) ([]*MarketRecord, error) {
	subLog := log.With().Str("Table", "markets").Logger()

	trx, err := database.ReaderTrx(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction for market query")
		return nil, err
	}

	sql, args := buildSelect("markets", marketColumns, conds, "fin_id ASC")
	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("market query failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	markets := make([]*MarketRecord, 0, 4)
	for rows.Next() {
		market, err := scanMarket(rows)
		if err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan market row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}
		markets = append(markets, market)
	}

	if err := rows.Err(); err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("market query read failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
	}

	return markets, nil
}

// MarketByFinID fetches a single market row; (nil, nil) when absent.
func (store *PgxStore) MarketByFinID(ctx context.Context, finID string) (*MarketRecord, error) {
	markets, err := store.queryMarkets(ctx, []cond{{"fin_id = ?", finID}})
	if err != nil {
		return nil, err
	}
	if len(markets) == 0 {
		return nil, nil
	}
	return markets[0], nil
}

// MarketsAll fetches every market row ordered by FinID.
func (store *PgxStore) MarketsAll(ctx context.Context) ([]*MarketRecord, error) {
	return store.queryMarkets(ctx, nil)
}

// MicMapping resolves an ISO 10383 MIC to its FinID; (nil, nil) when absent.
func (store *PgxStore) MicMapping(ctx context.Context, mic string) (*MicMappingRecord, error) {
	subLog := log.With().Str("Table", "mic_mappings").Str("MIC", mic).Logger()

	trx, err := database.ReaderTrx(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction for mic mapping query")
		return nil, err
	}

	sql, args := buildSelect("mic_mappings", []string{"mic", "fin_id"},
		[]cond{{"mic = ?", mic}}, "")
	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("mic mapping query failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	var mapping *MicMappingRecord
	for rows.Next() {
		mapping = &MicMappingRecord{}
		if err := rows.Scan(&mapping.MIC, &mapping.FinID); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan mic mapping row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("mic mapping query read failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
	}

	return mapping, nil
}

// SchedulesForMarket fetches every schedule row for a market. Ordering is
// fixed so that phase generation is deterministic: groups first, then
// in-force start, season start, start and end times; blank (open-ended)
// columns sort first.
func (store *PgxStore) SchedulesForMarket(ctx context.Context, finID string) ([]*ScheduleRecord, error) {
	subLog := log.With().Str("Table", "schedules").Str("FinID", finID).Logger()

	trx, err := database.ReaderTrx(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction for schedule query")
		return nil, err
	}

	order := `schedule_group ASC, in_force_start_date ASC, season_start ASC, "start" ASC, "end" ASC`
	sql, args := buildSelect("schedules", scheduleColumns,
		[]cond{{"fin_id = ?", finID}}, order)
	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("schedule query failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	schedules := make([]*ScheduleRecord, 0, 16)
	for rows.Next() {
		sched := &ScheduleRecord{}
		err := rows.Scan(&sched.FinID, &sched.ScheduleGroup, &sched.Timezone,
			&sched.PhaseType, &sched.PhaseName, &sched.PhaseMemo, &sched.Days,
			&sched.Start, &sched.End, &sched.OffsetDays,
			&sched.InForceStartDate, &sched.InForceEndDate,
			&sched.SeasonStart, &sched.SeasonEnd)
		if err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan schedule row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}
		schedules = append(schedules, sched)
	}

	if err := rows.Err(); err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("schedule query read failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
	}

	return schedules, nil
}

// HolidaysForMarket fetches holiday rows for a market whose date lies in
// [startDate, endDate]. Dates are ISO-8601 strings; lexicographic order
// matches calendar order.
func (store *PgxStore) HolidaysForMarket(ctx context.Context, finID string, startDate string, endDate string) ([]*MarketHolidayRecord, error) {
	subLog := log.With().Str("Table", "market_holidays").Str("FinID", finID).Logger()

	trx, err := database.ReaderTrx(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction for holiday query")
		return nil, err
	}

	conds := []cond{
		{"fin_id = ?", finID},
		{"date >= ?", startDate},
		{"date <= ?", endDate},
	}
	sql, args := buildSelect("market_holidays", holidayColumns, conds, "date ASC")
	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("holiday query failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	holidays := make([]*MarketHolidayRecord, 0, 16)
	for rows.Next() {
		holiday := &MarketHolidayRecord{}
		err := rows.Scan(&holiday.FinID, &holiday.Date, &holiday.HolidayName,
			&holiday.Schedule, &holiday.Settlement, &holiday.Observed,
			&holiday.Status, &holiday.Memo)
		if err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan holiday row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}
		holidays = append(holidays, holiday)
	}

	if err := rows.Err(); err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("holiday query read failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
	}

	return holidays, nil
}

// Season resolves a (season name, year) pair to its definition. A missing
// pair is a dataset gap and returns an error wrapping ErrNotFound.
func (store *PgxStore) Season(ctx context.Context, name string, year int) (*SeasonDefinitionRecord, error) {
	subLog := log.With().Str("Table", "season_definitions").Str("Season", name).Int("Year", year).Logger()

	trx, err := database.ReaderTrx(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction for season query")
		return nil, err
	}

	conds := []cond{
		{"season = ?", name},
		{"year = ?", year},
	}
	sql, args := buildSelect("season_definitions", []string{"season", "year", "date"}, conds, "")
	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("season query failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	var season *SeasonDefinitionRecord
	for rows.Next() {
		season = &SeasonDefinitionRecord{}
		if err := rows.Scan(&season.Season, &season.Year, &season.Date); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan season row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}
	}

	if err := rows.Err(); err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("season query read failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
	}

	if season == nil {
		return nil, fmt.Errorf("season %q year %d: %w", name, year, ErrNotFound)
	}

	return season, nil
}

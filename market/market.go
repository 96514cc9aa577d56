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

package market

import (
	"context"
	"fmt"
	"time"

	"github.com/markethours/mh-api/data"
)

// ListHolidays returns the market's holidays with dates in [start, end],
// both ISO dates, ordered by date.
func (m *Market) ListHolidays(ctx context.Context, start string, end string) ([]*MarketHoliday, error) {
	startDate, err := parseDateArg("start", start)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDateArg("end", end)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%s > %s: %w", start, end, data.ErrBeginAfterEnd)
	}
	return m.holidaysBetween(ctx, startDate, endDate)
}

func (m *Market) holidaysBetween(ctx context.Context, start time.Time, end time.Time) ([]*MarketHoliday, error) {
	records, err := store.HolidaysForMarket(ctx, m.FinID, start.Format(isoDate), end.Format(isoDate))
	if err != nil {
		return nil, err
	}
	holidays := make([]*MarketHoliday, 0, len(records))
	for _, record := range records {
		holidays = append(holidays, &MarketHoliday{MarketHolidayRecord: *record})
	}
	return holidays, nil
}

// holidayIndex maps ISO date to holiday over [start, end]. When the
// dataset carries several rows for one date the last row read wins, same
// as the upstream distribution.
func (m *Market) holidayIndex(ctx context.Context, start time.Time, end time.Time) (map[string]*MarketHoliday, error) {
	holidays, err := m.holidaysBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	index := make(map[string]*MarketHoliday, len(holidays))
	for _, holiday := range holidays {
		index[holiday.Date] = holiday
	}
	return index, nil
}

// ListSchedules returns every schedule row for the market in the store's
// deterministic order.
func (m *Market) ListSchedules(ctx context.Context) ([]*Schedule, error) {
	records, err := store.SchedulesForMarket(ctx, m.FinID)
	if err != nil {
		return nil, err
	}
	schedules := make([]*Schedule, 0, len(records))
	for _, record := range records {
		schedules = append(schedules, &Schedule{ScheduleRecord: *record})
	}
	return schedules, nil
}

// Phases materializes every phase in [start, end] eagerly. Prefer
// GeneratePhases for long windows.
func (m *Market) Phases(ctx context.Context, start string, end string) ([]*Phase, error) {
	iter, err := m.GeneratePhases(ctx, start, end)
	if err != nil {
		return nil, err
	}
	phases := make([]*Phase, 0, 32)
	for iter.Next() {
		phases = append(phases, iter.Phase())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return phases, nil
}

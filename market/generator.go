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
	"github.com/rs/zerolog/log"
)

// MaxOffsetDays bounds how many days after its calendar day a phase may
// end, and therefore how far generation must look back before the window
// start to catch still-running phases.
const MaxOffsetDays = 2

// PhaseIterator walks the phases of one market over a date window in
// chronological day order. Usage follows the pgx.Rows shape:
//
//	iter, err := m.GeneratePhases(ctx, "2024-02-01", "2024-02-28")
//	for iter.Next() {
//		phase := iter.Phase()
//		...
//	}
//	err = iter.Err()
type PhaseIterator struct {
	ctx         context.Context
	schedules   []*Schedule
	holidays    map[string]*MarketHoliday
	phaseTypes  map[string]*data.PhaseTypeRecord
	openGroups  map[string]bool
	seasons     *seasonResolver
	windowStart time.Time
	end         time.Time
	current     time.Time
	queue       []*Phase
	phase       *Phase
	err         error
	done        bool
}

// GeneratePhases prepares a lazy phase iterator over [start, end], both
// ISO dates. Schedules, holidays and the phase type catalog load up
// front; season definitions load on demand as seasonal schedules are
// encountered.
func (m *Market) GeneratePhases(ctx context.Context, start string, end string) (*PhaseIterator, error) {
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

	log.Debug().Str("FinID", m.FinID).Str("Start", start).Str("End", end).Msg("generating phases")

	phaseTypes, err := store.PhaseTypes(ctx)
	if err != nil {
		return nil, err
	}
	schedules, err := m.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}

	// Phases opened up to MaxOffsetDays before the window may still be
	// running inside it, so day iteration starts early; materialization
	// prunes anything that ends before the window.
	lookbackStart := startDate.AddDate(0, 0, -MaxOffsetDays)
	holidays, err := m.holidayIndex(ctx, lookbackStart, endDate)
	if err != nil {
		return nil, err
	}

	return &PhaseIterator{
		ctx:         ctx,
		schedules:   schedules,
		holidays:    holidays,
		phaseTypes:  phaseTypes,
		openGroups:  groupOpenMap(schedules, phaseTypes),
		seasons:     newSeasonResolver(),
		windowStart: startDate,
		end:         endDate,
		current:     lookbackStart,
	}, nil
}

// Next advances to the next phase. It returns false at the end of the
// window or on error; check Err afterwards.
func (iter *PhaseIterator) Next() bool {
	if iter.err != nil || iter.done {
		return false
	}
	for len(iter.queue) == 0 {
		if err := iter.ctx.Err(); err != nil {
			iter.err = err
			return false
		}
		if iter.current.After(iter.end) {
			iter.done = true
			return false
		}
		if err := iter.fillDate(iter.current); err != nil {
			iter.err = err
			return false
		}
		iter.current = iter.current.AddDate(0, 0, 1)
	}
	iter.phase = iter.queue[0]
	iter.queue = iter.queue[1:]
	return true
}

// Phase returns the phase Next advanced to.
func (iter *PhaseIterator) Phase() *Phase {
	return iter.phase
}

// Err returns the first error hit during iteration, if any.
func (iter *PhaseIterator) Err() error {
	return iter.err
}

// fillDate runs the selection cascade for one calendar day and queues
// the surviving schedules as concrete phases.
func (iter *PhaseIterator) fillDate(date time.Time) error {
	dateISO := date.Format(isoDate)
	weekday := weekdayOf(date)

	group, groupOpen := pickScheduleGroup(dateISO, iter.holidays, iter.openGroups)
	candidates := filterGroup(group, iter.schedules)
	candidates = filterInForce(dateISO, candidates)
	candidates, err := filterSeason(iter.ctx, iter.seasons, dateISO, date.Year(), candidates)
	if err != nil {
		return err
	}

	matched, err := filterWeekdays(weekday, candidates)
	if err != nil {
		return err
	}
	if len(matched) == 0 && groupOpen {
		// An open holiday still trades even when its group has no row
		// for this weekday; borrow the closest earlier weekday's rows.
		matched, err = fallbackSchedules(weekday, candidates)
		if err != nil {
			return err
		}
	}

	sortSchedules(matched)
	for _, sched := range matched {
		phase, err := iter.materialize(sched, date)
		if err != nil {
			return err
		}
		if phase != nil {
			iter.queue = append(iter.queue, phase)
		}
	}
	return nil
}

// materialize turns a schedule row anchored on a calendar day into a
// wall-clock phase, or nil when the phase ends before the window starts.
func (iter *PhaseIterator) materialize(sched *Schedule, date time.Time) (*Phase, error) {
	if sched.OffsetDays < 0 || sched.OffsetDays > MaxOffsetDays {
		return nil, fmt.Errorf("schedule offset_days %d out of range: %w", sched.OffsetDays, data.ErrDataInconsistent)
	}

	endDate := date.AddDate(0, 0, sched.OffsetDays)
	if endDate.Before(iter.windowStart) {
		return nil, nil
	}

	phaseType, ok := iter.phaseTypes[sched.PhaseType]
	if !ok {
		return nil, fmt.Errorf("unknown phase type %q: %w", sched.PhaseType, data.ErrDataInconsistent)
	}

	loc, err := time.LoadLocation(sched.Timezone)
	if err != nil {
		return nil, fmt.Errorf("schedule timezone %q: %w", sched.Timezone, data.ErrDataInconsistent)
	}
	start, err := combine(date, sched.Start, loc)
	if err != nil {
		return nil, err
	}
	end, err := combine(endDate, sched.End, loc)
	if err != nil {
		return nil, err
	}

	return &Phase{
		PhaseType:  sched.PhaseType,
		PhaseName:  sched.PhaseName,
		PhaseMemo:  sched.PhaseMemo,
		Status:     phaseType.Status,
		Settlement: phaseType.Settlement,
		Start:      start,
		End:        end,
	}, nil
}

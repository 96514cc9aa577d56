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
	"sort"
	"strings"

	"github.com/markethours/mh-api/data"
)

// Schedule selection for one calendar day runs as a cascade: pick the
// schedule group (holiday override or "regular"), then keep schedules
// matching the group, in force on the day, in season, and on the right
// weekday. An open holiday whose group has no row on that weekday falls
// back to the most recent weekday the group does cover.

// pickScheduleGroup names the schedule group for a date and whether the
// group counts as open (which enables the weekday fallback). Group
// comparison is case-insensitive throughout.
func pickScheduleGroup(dateISO string, holidays map[string]*MarketHoliday, openGroups map[string]bool) (string, bool) {
	if holiday, ok := holidays[dateISO]; ok {
		group := strings.ToLower(holiday.Schedule)
		return group, openGroups[group]
	}
	return "regular", false
}

// groupOpenMap classifies each schedule group as open when any of its
// schedules carries a phase type with Open status. Schedules whose phase
// type is missing from the catalog never count toward openness here;
// the gap only becomes an error if such a schedule survives to
// materialization.
func groupOpenMap(schedules []*Schedule, phaseTypes map[string]*data.PhaseTypeRecord) map[string]bool {
	open := make(map[string]bool, 4)
	for _, sched := range schedules {
		if phaseType, ok := phaseTypes[sched.PhaseType]; ok && phaseType.IsOpen() {
			open[strings.ToLower(sched.ScheduleGroup)] = true
		}
	}
	return open
}

func filterGroup(group string, schedules []*Schedule) []*Schedule {
	kept := make([]*Schedule, 0, len(schedules))
	for _, sched := range schedules {
		if strings.EqualFold(sched.ScheduleGroup, group) {
			kept = append(kept, sched)
		}
	}
	return kept
}

func filterInForce(dateISO string, schedules []*Schedule) []*Schedule {
	kept := make([]*Schedule, 0, len(schedules))
	for _, sched := range schedules {
		if sched.IsInForce(dateISO) {
			kept = append(kept, sched)
		}
	}
	return kept
}

// filterSeason keeps non-seasonal schedules and seasonal ones whose
// window contains the date. Both endpoints resolve in the date's own
// year; an end before the start means the season wraps the year end.
func filterSeason(ctx context.Context, seasons *seasonResolver, dateISO string, year int, schedules []*Schedule) ([]*Schedule, error) {
	kept := make([]*Schedule, 0, len(schedules))
	for _, sched := range schedules {
		if !sched.HasSeason() {
			kept = append(kept, sched)
			continue
		}
		seasonStart, err := seasons.resolve(ctx, sched.SeasonStart, year)
		if err != nil {
			return nil, err
		}
		seasonEnd, err := seasons.resolve(ctx, sched.SeasonEnd, year)
		if err != nil {
			return nil, err
		}
		if seasonEnd < seasonStart {
			if dateISO <= seasonEnd || dateISO >= seasonStart {
				kept = append(kept, sched)
			}
		} else if dateISO >= seasonStart && dateISO <= seasonEnd {
			kept = append(kept, sched)
		}
	}
	return kept, nil
}

func filterWeekdays(day int, schedules []*Schedule) ([]*Schedule, error) {
	kept := make([]*Schedule, 0, len(schedules))
	for _, sched := range schedules {
		match, err := WeekdaysMatch(sched.Days, day)
		if err != nil {
			return nil, err
		}
		if match {
			kept = append(kept, sched)
		}
	}
	return kept, nil
}

// fallbackSchedules walks weekdays backward from the day before today
// until some schedule matches, at most one full week.
func fallbackSchedules(today int, schedules []*Schedule) ([]*Schedule, error) {
	for fallback := (today + 6) % 7; fallback != today; fallback = (fallback + 6) % 7 {
		matched, err := filterWeekdays(fallback, schedules)
		if err != nil {
			return nil, err
		}
		if len(matched) > 0 {
			return matched, nil
		}
	}
	return nil, nil
}

// sortSchedules orders by start time then duration so that shorter
// phases starting together come first.
func sortSchedules(schedules []*Schedule) {
	sort.SliceStable(schedules, func(i, j int) bool {
		if schedules[i].Start != schedules[j].Start {
			return schedules[i].Start < schedules[j].Start
		}
		return schedules[i].DurationSeconds() < schedules[j].DurationSeconds()
	})
}

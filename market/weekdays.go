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
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a bitmask of weekdays, Monday=0 through Sunday=6.
type WeekdaySet uint8

var dayIndex = map[string]int{
	"mon": 0,
	"tue": 1,
	"wed": 2,
	"thu": 3,
	"fri": 4,
	"sat": 5,
	"sun": 6,
}

// ParseWeekdays parses a weekday pattern as found in the schedules table:
// a single day ("Wed"), a comma list ("Mon,Wed,Fri"), or an inclusive
// range ("Mon-Fri"). Ranges may wrap the week end, so "Fri-Mon" covers
// Fri, Sat, Sun and Mon. Matching is case-insensitive.
func ParseWeekdays(pattern string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, item := range strings.Split(pattern, ",") {
		item = strings.TrimSpace(item)
		if a, b, found := cutRange(item); found {
			begin, ok := dayIndex[strings.ToLower(a)]
			if !ok {
				return 0, fmt.Errorf("%q in %q: %w", a, pattern, ErrMalformedDays)
			}
			end, ok := dayIndex[strings.ToLower(b)]
			if !ok {
				return 0, fmt.Errorf("%q in %q: %w", b, pattern, ErrMalformedDays)
			}
			for day := begin; ; day = (day + 1) % 7 {
				set |= 1 << day
				if day == end {
					break
				}
			}
			continue
		}
		day, ok := dayIndex[strings.ToLower(item)]
		if !ok {
			return 0, fmt.Errorf("%q in %q: %w", item, pattern, ErrMalformedDays)
		}
		set |= 1 << day
	}
	return set, nil
}

func cutRange(item string) (string, string, bool) {
	idx := strings.Index(item, "-")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(item[:idx]), strings.TrimSpace(item[idx+1:]), true
}

// Contains reports whether day (Monday=0) is in the set.
func (set WeekdaySet) Contains(day int) bool {
	return set&(1<<day) != 0
}

// Days lists the member days in Monday-first order.
func (set WeekdaySet) Days() []int {
	days := make([]int, 0, 7)
	for day := 0; day < 7; day++ {
		if set.Contains(day) {
			days = append(days, day)
		}
	}
	return days
}

// WeekdaysMatch reports whether day (Monday=0) matches the pattern.
func WeekdaysMatch(pattern string, day int) (bool, error) {
	set, err := ParseWeekdays(pattern)
	if err != nil {
		return false, err
	}
	return set.Contains(day), nil
}

// weekdayOf converts Go's Sunday=0 weekday to Monday=0.
func weekdayOf(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

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

	"github.com/markethours/mh-api/data"
)

const isoDate = "2006-01-02"

// parseDateArg parses a caller-supplied ISO date, normalized to UTC
// midnight so lookback arithmetic stays in calendar days.
func parseDateArg(name string, value string) (time.Time, error) {
	parsed, err := time.Parse(isoDate, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q: %w", name, value, data.ErrInvalidDate)
	}
	return parsed, nil
}

// parseClock splits an "HH:MM:SS" time-of-day from the schedules table.
func parseClock(clock string) (int, int, int, error) {
	var h, m, s int
	if _, err := fmt.Sscanf(clock, "%2d:%2d:%2d", &h, &m, &s); err != nil {
		return 0, 0, 0, fmt.Errorf("time of day %q: %w", clock, data.ErrDataInconsistent)
	}
	if h > 23 || m > 59 || s > 59 {
		return 0, 0, 0, fmt.Errorf("time of day %q out of range: %w", clock, data.ErrDataInconsistent)
	}
	return h, m, s, nil
}

func clockSeconds(clock string) (int, error) {
	h, m, s, err := parseClock(clock)
	if err != nil {
		return 0, err
	}
	return h*3600 + m*60 + s, nil
}

// combine anchors a time-of-day on a calendar day in the given zone.
// time.Date resolves DST edges for us: a time inside a spring-forward
// gap shifts ahead by the gap, and an ambiguous fall-back time takes
// the earlier UTC offset.
func combine(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	h, m, s, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, loc), nil
}

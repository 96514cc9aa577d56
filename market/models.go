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

// Market is a markets row plus the behavior built on top of it: holiday
// and schedule listing and phase generation.
type Market struct {
	data.MarketRecord
}

// CountryCode returns the ISO country segment of the market's FinID.
func (m *Market) CountryCode() string {
	idx := strings.Index(m.FinID, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToUpper(m.FinID[:idx])
}

// IsPermanentlyClosed reports whether the market closed for good on some
// date in the past.
func (m *Market) IsPermanentlyClosed() bool {
	return m.PermanentlyClosed != ""
}

func (m *Market) String() string {
	return fmt.Sprintf("Market: %s %s %s", m.FinID, m.ExchangeName, m.Timezone)
}

// Schedule is a schedules row plus derived accessors used by phase
// generation.
type Schedule struct {
	data.ScheduleRecord
}

// HasSeason reports whether both season endpoints are set.
func (s *Schedule) HasSeason() bool {
	return s.SeasonStart != "" && s.SeasonEnd != ""
}

// IsInForce reports whether the schedule applies on the given ISO date.
// A blank endpoint is open-ended on that side.
func (s *Schedule) IsInForce(dateISO string) bool {
	if s.InForceStartDate != "" && dateISO < s.InForceStartDate {
		return false
	}
	if s.InForceEndDate != "" && dateISO > s.InForceEndDate {
		return false
	}
	return true
}

// DurationSeconds is the wall-clock length of the schedule, accounting
// for phases that close OffsetDays after they open.
func (s *Schedule) DurationSeconds() int {
	start, err1 := clockSeconds(s.Start)
	end, err2 := clockSeconds(s.End)
	if err1 != nil || err2 != nil {
		return 0
	}
	return end - start + s.OffsetDays*86400
}

func (s *Schedule) String() string {
	return fmt.Sprintf("Schedule: %s %s %s - %s %s %s",
		s.FinID, s.ScheduleGroup, s.Start, s.End, s.Days, s.PhaseType)
}

// MarketHoliday is a market_holidays row plus derived accessors.
type MarketHoliday struct {
	data.MarketHolidayRecord
}

// IsOpen reports whether the market trades at all on the holiday.
func (h *MarketHoliday) IsOpen() bool {
	return h.Status == "Open"
}

// HasSettlement reports whether trades settle on the holiday.
func (h *MarketHoliday) HasSettlement() bool {
	return h.Settlement == "Yes"
}

// IsObserved reports whether the holiday is marked observed ("OBS").
func (h *MarketHoliday) IsObserved() bool {
	return h.Observed == "OBS"
}

func (h *MarketHoliday) String() string {
	return fmt.Sprintf("MarketHoliday: %s %s %s", h.FinID, h.Date, h.HolidayName)
}

// Phase is one concrete trading interval on the wall clock, half open
// in meaning: trading state changes at Start and again at End.
type Phase struct {
	PhaseType  string    `json:"phase_type"`
	PhaseName  string    `json:"phase_name"`
	PhaseMemo  string    `json:"phase_memo"`
	Status     string    `json:"status"`
	Settlement string    `json:"settlement"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// IsOpen reports whether the phase counts as open trading.
func (p *Phase) IsOpen() bool {
	return p.Status == "Open"
}

// HasSettlement reports whether trades settle during the phase.
func (p *Phase) HasSettlement() bool {
	return p.Settlement == "Yes"
}

const phaseTimeLayout = "2006-01-02 15:04:05-07:00"

func (p *Phase) String() string {
	return fmt.Sprintf("Phase: %s - %s %s",
		p.Start.Format(phaseTimeLayout), p.End.Format(phaseTimeLayout), p.PhaseType)
}

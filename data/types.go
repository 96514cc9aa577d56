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

import "fmt"

// One record type per reference table. Field names are the snake-cased
// upstream CSV headers mapped once at the ingestion boundary; the engine
// never touches raw rows. Dates and times-of-day stay ISO-8601 strings at
// rest ("2024-02-06", "09:30:00"); an empty string means the column is
// absent / open-ended.

// MarketRecord is a row of the markets table.
type MarketRecord struct {
	FinID             string `json:"fin_id"`
	ExchangeName      string `json:"exchange_name"`
	MarketName        string `json:"market_name"`
	SecurityGroup     string `json:"security_group"`
	Timezone          string `json:"timezone"`
	WeekendDefinition string `json:"weekend_definition"`
	MIC               string `json:"mic"`
	Acronym           string `json:"acronym"`
	AssetType         string `json:"asset_type"`
	Memo              string `json:"memo"`
	PermanentlyClosed string `json:"permanently_closed"`
	ReplacedBy        string `json:"replaced_by"`
}

// ScheduleRecord is a row of the schedules table.
type ScheduleRecord struct {
	FinID            string `json:"fin_id"`
	ScheduleGroup    string `json:"schedule_group"`
	Timezone         string `json:"timezone"`
	PhaseType        string `json:"phase_type"`
	PhaseName        string `json:"phase_name"`
	PhaseMemo        string `json:"phase_memo"`
	Days             string `json:"days"`
	Start            string `json:"start"`
	End              string `json:"end"`
	OffsetDays       int    `json:"offset_days"`
	InForceStartDate string `json:"in_force_start_date"`
	InForceEndDate   string `json:"in_force_end_date"`
	SeasonStart      string `json:"season_start"`
	SeasonEnd        string `json:"season_end"`
}

// MarketHolidayRecord is a row of the market_holidays table.
type MarketHolidayRecord struct {
	FinID       string `json:"fin_id"`
	Date        string `json:"date"`
	HolidayName string `json:"holiday_name"`
	Schedule    string `json:"schedule"`
	Settlement  string `json:"settlement"`
	Observed    string `json:"observed"`
	Status      string `json:"status"`
	Memo        string `json:"memo"`
}

// PhaseTypeRecord is a row of the phase_types table.
type PhaseTypeRecord struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Settlement string `json:"settlement"`
}

// IsOpen reports whether phases of this type count as open trading.
func (p *PhaseTypeRecord) IsOpen() bool {
	return p.Status == "Open"
}

// HasSettlement reports whether phases of this type settle trades.
func (p *PhaseTypeRecord) HasSettlement() bool {
	return p.Settlement == "Yes"
}

// SeasonDefinitionRecord is a row of the season_definitions table. Every
// (season, year) pair the dataset covers maps to exactly one date.
type SeasonDefinitionRecord struct {
	Season string `json:"season"`
	Year   int    `json:"year"`
	Date   string `json:"date"`
}

func (s *SeasonDefinitionRecord) String() string {
	return fmt.Sprintf("SeasonDefinition: %s %s", s.Date, s.Season)
}

// MicMappingRecord maps an ISO 10383 MIC onto a FinID.
type MicMappingRecord struct {
	MIC   string `json:"mic"`
	FinID string `json:"fin_id"`
}

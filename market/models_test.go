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

package market_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/markethours/mh-api/data"
	"github.com/markethours/mh-api/data/database"
	"github.com/markethours/mh-api/market"
	"github.com/markethours/mh-api/pgxmockhelper"
)

var _ = Describe("Market holidays", func() {
	var (
		ctx    context.Context
		dbPool pgxmock.PgxConnIface
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(dbPool)
	})

	It("lists holidays in a date range", func() {
		m := testMarket("US.NYSE", "America/New_York")
		pgxmockhelper.MockHolidaysQuery(dbPool, "US.NYSE", "2007-11-01", "2007-11-30")

		holidays, err := m.ListHolidays(ctx, "2007-11-01", "2007-11-30")
		Expect(err).To(BeNil())
		Expect(len(holidays)).To(Equal(2))

		Expect(holidays[0].HolidayName).To(Equal("Thanksgiving Day"))
		Expect(holidays[0].IsOpen()).To(BeFalse())
		Expect(holidays[0].HasSettlement()).To(BeFalse())
		Expect(holidays[0].IsObserved()).To(BeFalse())
		Expect(holidays[0].String()).To(Equal("MarketHoliday: US.NYSE 2007-11-22 Thanksgiving Day"))

		Expect(holidays[1].HolidayName).To(Equal("Day after Thanksgiving"))
		Expect(holidays[1].IsOpen()).To(BeTrue())
		Expect(holidays[1].HasSettlement()).To(BeTrue())
	})

	It("rejects malformed dates", func() {
		m := testMarket("US.NYSE", "America/New_York")
		_, err := m.ListHolidays(ctx, "Nov 1 2007", "2007-11-30")
		Expect(err).To(MatchError(data.ErrInvalidDate))
	})

	It("rejects a start after the end", func() {
		m := testMarket("US.NYSE", "America/New_York")
		_, err := m.ListHolidays(ctx, "2007-12-01", "2007-11-30")
		Expect(err).To(MatchError(data.ErrBeginAfterEnd))
	})
})

var _ = Describe("Market schedules", func() {
	var (
		ctx    context.Context
		dbPool pgxmock.PgxConnIface
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(dbPool)
	})

	It("lists schedules with derived accessors", func() {
		m := testMarket("US.NYSE", "America/New_York")
		pgxmockhelper.MockSchedulesQuery(dbPool, "US.NYSE")

		schedules, err := m.ListSchedules(ctx)
		Expect(err).To(BeNil())
		Expect(len(schedules)).To(Equal(4))

		pre := schedules[0]
		Expect(pre.PhaseType).To(Equal("Pre-Trading Session"))
		Expect(pre.HasSeason()).To(BeFalse())
		Expect(pre.IsInForce("2024-02-06")).To(BeTrue())
		Expect(pre.DurationSeconds()).To(Equal(5*3600 + 1800))
		Expect(pre.String()).To(Equal("Schedule: US.NYSE Regular 04:00:00 - 09:30:00 Mon-Fri Pre-Trading Session"))
	})

	It("computes overnight durations across the day boundary", func() {
		sched := &market.Schedule{
			ScheduleRecord: data.ScheduleRecord{
				Start:      "22:00:00",
				End:        "02:00:00",
				OffsetDays: 1,
			},
		}
		Expect(sched.DurationSeconds()).To(Equal(4 * 3600))
	})

	It("treats blank in-force endpoints as open ended", func() {
		sched := &market.Schedule{
			ScheduleRecord: data.ScheduleRecord{
				InForceStartDate: "2024-01-01",
			},
		}
		Expect(sched.IsInForce("2023-12-31")).To(BeFalse())
		Expect(sched.IsInForce("2024-01-01")).To(BeTrue())
		Expect(sched.IsInForce("2030-06-01")).To(BeTrue())
	})
})

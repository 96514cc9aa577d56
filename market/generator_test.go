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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/markethours/mh-api/data"
	"github.com/markethours/mh-api/data/database"
	"github.com/markethours/mh-api/market"
	"github.com/markethours/mh-api/pgxmockhelper"
)

func testMarket(finID string, timezone string) *market.Market {
	return &market.Market{
		MarketRecord: data.MarketRecord{
			FinID:    finID,
			Timezone: timezone,
		},
	}
}

// mockGeneration queues the three eager queries GeneratePhases runs, in
// order: phase types, schedules, then holidays over the lookback-widened
// window.
func mockGeneration(db pgxmock.PgxConnIface, finID string, lookbackStart string, end string) {
	pgxmockhelper.MockPhaseTypesQuery(db)
	pgxmockhelper.MockSchedulesQuery(db, finID)
	pgxmockhelper.MockHolidaysQuery(db, finID, lookbackStart, end)
}

var _ = Describe("Phase generation", func() {
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

	Context("on a regular trading day", func() {
		It("produces the full session sequence", func() {
			m := testMarket("US.NYSE", "America/New_York")
			mockGeneration(dbPool, "US.NYSE", "2024-02-04", "2024-02-06")

			phases, err := m.Phases(ctx, "2024-02-06", "2024-02-06")
			Expect(err).To(BeNil())
			Expect(len(phases)).To(Equal(3))

			Expect(phases[0].PhaseType).To(Equal("Pre-Trading Session"))
			Expect(phases[0].Start).To(BeTemporally("==", time.Date(2024, 2, 6, 4, 0, 0, 0, tz())))
			Expect(phases[0].End).To(BeTemporally("==", time.Date(2024, 2, 6, 9, 30, 0, 0, tz())))
			Expect(phases[0].IsOpen()).To(BeFalse())

			Expect(phases[1].PhaseType).To(Equal("Primary Trading Session"))
			Expect(phases[1].Start).To(BeTemporally("==", time.Date(2024, 2, 6, 9, 30, 0, 0, tz())))
			Expect(phases[1].End).To(BeTemporally("==", time.Date(2024, 2, 6, 16, 0, 0, 0, tz())))
			Expect(phases[1].IsOpen()).To(BeTrue())
			Expect(phases[1].HasSettlement()).To(BeTrue())

			Expect(phases[2].PhaseType).To(Equal("Post-Trading Session"))
			Expect(phases[2].End).To(BeTemporally("==", time.Date(2024, 2, 6, 20, 0, 0, 0, tz())))

			_, offset := phases[0].Start.Zone()
			Expect(offset).To(Equal(-5 * 3600))
		})

		It("renders phases with zone-qualified timestamps", func() {
			m := testMarket("US.NYSE", "America/New_York")
			mockGeneration(dbPool, "US.NYSE", "2024-02-04", "2024-02-06")

			phases, err := m.Phases(ctx, "2024-02-06", "2024-02-06")
			Expect(err).To(BeNil())
			Expect(phases[0].String()).To(Equal("Phase: 2024-02-06 04:00:00-05:00 - 2024-02-06 09:30:00-05:00 Pre-Trading Session"))
		})
	})

	Context("around a holiday", func() {
		It("silences a closed day and applies the holiday group on an open one", func() {
			m := testMarket("US.NYSE", "America/New_York")
			mockGeneration(dbPool, "US.NYSE", "2007-11-20", "2007-11-23")

			// Thanksgiving 2007: Thursday closed, Friday is a half day.
			phases, err := m.Phases(ctx, "2007-11-22", "2007-11-23")
			Expect(err).To(BeNil())
			Expect(len(phases)).To(Equal(1))
			Expect(phases[0].PhaseType).To(Equal("Primary Trading Session"))
			Expect(phases[0].Start).To(BeTemporally("==", time.Date(2007, 11, 23, 9, 30, 0, 0, tz())))
			Expect(phases[0].End).To(BeTemporally("==", time.Date(2007, 11, 23, 13, 0, 0, 0, tz())))
		})
	})

	Context("with an overnight session", func() {
		It("keeps a phase opened before the window when it ends inside it", func() {
			m := testMarket("XX.OVERNIGHT", "America/New_York")
			mockGeneration(dbPool, "XX.OVERNIGHT", "2024-02-05", "2024-02-07")

			phases, err := m.Phases(ctx, "2024-02-07", "2024-02-07")
			Expect(err).To(BeNil())
			Expect(len(phases)).To(Equal(2))

			// Tuesday's session runs into Wednesday, so it survives the
			// lookback prune; Monday's ended Tuesday and does not.
			Expect(phases[0].Start).To(BeTemporally("==", time.Date(2024, 2, 6, 22, 0, 0, 0, tz())))
			Expect(phases[0].End).To(BeTemporally("==", time.Date(2024, 2, 7, 2, 0, 0, 0, tz())))
			Expect(phases[1].Start).To(BeTemporally("==", time.Date(2024, 2, 7, 22, 0, 0, 0, tz())))
			Expect(phases[1].End).To(BeTemporally("==", time.Date(2024, 2, 8, 2, 0, 0, 0, tz())))
		})
	})

	Context("with a seasonal schedule", func() {
		It("keeps dates inside a season that wraps the year end", func() {
			m := testMarket("XX.SEASONAL", "America/New_York")
			mockGeneration(dbPool, "XX.SEASONAL", "2024-01-13", "2024-01-15")
			pgxmockhelper.MockSeasonQuery(dbPool, "First day of December", 2024)
			pgxmockhelper.MockSeasonQuery(dbPool, "Last day of February", 2024)

			phases, err := m.Phases(ctx, "2024-01-15", "2024-01-15")
			Expect(err).To(BeNil())
			Expect(len(phases)).To(Equal(1))
			Expect(phases[0].Start).To(BeTemporally("==", time.Date(2024, 1, 15, 9, 0, 0, 0, tz())))
		})

		It("drops dates outside the season", func() {
			m := testMarket("XX.SEASONAL", "America/New_York")
			mockGeneration(dbPool, "XX.SEASONAL", "2024-03-30", "2024-04-01")
			pgxmockhelper.MockSeasonQuery(dbPool, "First day of December", 2024)
			pgxmockhelper.MockSeasonQuery(dbPool, "Last day of February", 2024)

			phases, err := m.Phases(ctx, "2024-04-01", "2024-04-01")
			Expect(err).To(BeNil())
			Expect(len(phases)).To(BeZero())
		})
	})

	Context("across daylight saving transitions", func() {
		It("shifts a nonexistent start time forward through the gap", func() {
			m := testMarket("XX.DST", "America/New_York")
			mockGeneration(dbPool, "XX.DST", "2024-03-08", "2024-03-10")

			phases, err := m.Phases(ctx, "2024-03-10", "2024-03-10")
			Expect(err).To(BeNil())
			Expect(len(phases)).To(Equal(2))

			// 02:30 does not exist on 2024-03-10; it lands on 03:30 EDT.
			late := phases[1]
			Expect(late.Start.Hour()).To(Equal(3))
			Expect(late.Start.Minute()).To(Equal(30))
			_, offset := late.Start.Zone()
			Expect(offset).To(Equal(-4 * 3600))
		})

		It("resolves an ambiguous start time to the earlier offset", func() {
			m := testMarket("XX.DST", "America/New_York")
			mockGeneration(dbPool, "XX.DST", "2024-11-01", "2024-11-03")

			phases, err := m.Phases(ctx, "2024-11-03", "2024-11-03")
			Expect(err).To(BeNil())
			Expect(len(phases)).To(Equal(2))

			// 01:30 happens twice on 2024-11-03; the EDT instance wins.
			early := phases[0]
			Expect(early.Start.Hour()).To(Equal(1))
			_, offset := early.Start.Zone()
			Expect(offset).To(Equal(-4 * 3600))
		})
	})

	Context("with holiday schedule overrides", func() {
		It("applies overrides, weekday fallback, and closed days over a week", func() {
			m := testMarket("XX.FALLBACK", "America/New_York")
			mockGeneration(dbPool, "XX.FALLBACK", "2024-02-03", "2024-02-09")

			phases, err := m.Phases(ctx, "2024-02-05", "2024-02-09")
			Expect(err).To(BeNil())
			Expect(len(phases)).To(Equal(4))

			// Monday: duplicate holiday rows, the later Special row wins.
			Expect(phases[0].Start).To(BeTemporally("==", time.Date(2024, 2, 5, 10, 0, 0, 0, tz())))
			Expect(phases[0].End).To(BeTemporally("==", time.Date(2024, 2, 5, 12, 0, 0, 0, tz())))

			// Tuesday and Wednesday trade the regular session.
			Expect(phases[1].Start).To(BeTemporally("==", time.Date(2024, 2, 6, 9, 0, 0, 0, tz())))
			Expect(phases[2].Start).To(BeTemporally("==", time.Date(2024, 2, 7, 9, 0, 0, 0, tz())))

			// Thursday: Special has no Thursday row; fallback borrows
			// Monday's hours. Friday is closed and yields nothing.
			Expect(phases[3].Start).To(BeTemporally("==", time.Date(2024, 2, 8, 10, 0, 0, 0, tz())))
			Expect(phases[3].End).To(BeTemporally("==", time.Date(2024, 2, 8, 12, 0, 0, 0, tz())))
		})
	})

	Context("window composition", func() {
		It("generates a single day as a prefix of a longer window", func() {
			m := testMarket("US.NYSE", "America/New_York")

			mockGeneration(dbPool, "US.NYSE", "2024-02-04", "2024-02-06")
			oneDay, err := m.Phases(ctx, "2024-02-06", "2024-02-06")
			Expect(err).To(BeNil())

			mockGeneration(dbPool, "US.NYSE", "2024-02-04", "2024-02-07")
			twoDays, err := m.Phases(ctx, "2024-02-06", "2024-02-07")
			Expect(err).To(BeNil())

			Expect(len(twoDays)).To(Equal(2 * len(oneDay)))
			for idx, phase := range oneDay {
				Expect(twoDays[idx].Start).To(BeTemporally("==", phase.Start))
				Expect(twoDays[idx].End).To(BeTemporally("==", phase.End))
				Expect(twoDays[idx].PhaseType).To(Equal(phase.PhaseType))
			}
		})
	})

	Context("iterating lazily", func() {
		It("yields phases one at a time", func() {
			m := testMarket("US.NYSE", "America/New_York")
			mockGeneration(dbPool, "US.NYSE", "2024-02-04", "2024-02-06")

			iter, err := m.GeneratePhases(ctx, "2024-02-06", "2024-02-06")
			Expect(err).To(BeNil())

			count := 0
			for iter.Next() {
				Expect(iter.Phase()).NotTo(BeNil())
				count++
			}
			Expect(iter.Err()).To(BeNil())
			Expect(count).To(Equal(3))
			Expect(iter.Next()).To(BeFalse())
		})

		It("stops when the context is cancelled", func() {
			m := testMarket("US.NYSE", "America/New_York")
			mockGeneration(dbPool, "US.NYSE", "2024-02-04", "2024-02-06")

			cancelCtx, cancel := context.WithCancel(ctx)
			iter, err := m.GeneratePhases(cancelCtx, "2024-02-06", "2024-02-06")
			Expect(err).To(BeNil())
			cancel()

			Expect(iter.Next()).To(BeFalse())
			Expect(iter.Err()).To(MatchError(context.Canceled))
		})
	})

	Context("with bad arguments", func() {
		It("rejects malformed dates", func() {
			m := testMarket("US.NYSE", "America/New_York")
			_, err := m.GeneratePhases(ctx, "02/06/2024", "2024-02-06")
			Expect(err).To(MatchError(data.ErrInvalidDate))
		})

		It("rejects a start after the end", func() {
			m := testMarket("US.NYSE", "America/New_York")
			_, err := m.GeneratePhases(ctx, "2024-02-07", "2024-02-06")
			Expect(err).To(MatchError(data.ErrBeginAfterEnd))
		})
	})
})

var _ = Describe("Season resolution", func() {
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

	It("maps a season name and year to a concrete date", func() {
		pgxmockhelper.MockSeasonQuery(dbPool, "First day of March", 2022)
		season, err := market.ResolveSeason(ctx, "First day of March", 2022)
		Expect(err).To(BeNil())
		Expect(season.Date).To(Equal("2022-03-01"))
		Expect(season.String()).To(Equal("SeasonDefinition: 2022-03-01 First day of March"))
	})

	It("reports a dataset gap for an undefined pair", func() {
		pgxmockhelper.MockSeasonQuery(dbPool, "First day of March", 1999)
		_, err := market.ResolveSeason(ctx, "First day of March", 1999)
		Expect(err).To(MatchError(data.ErrNotFound))
	})
})

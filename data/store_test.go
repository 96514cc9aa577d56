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

package data_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"

	"github.com/markethours/mh-api/data"
	"github.com/markethours/mh-api/data/database"
	"github.com/markethours/mh-api/pgxmockhelper"
)

var _ = Describe("Reference data store", func() {
	var (
		ctx    context.Context
		dbPool pgxmock.PgxConnIface
		store  *data.PgxStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = data.NewStore()

		var err error
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(dbPool)
	})

	Describe("market queries", func() {
		It("fetches a single market by FinID", func() {
			pgxmockhelper.MockMarketQuery(dbPool, "US.NYSE")
			m, err := store.MarketByFinID(ctx, "US.NYSE")
			Expect(err).To(BeNil())
			Expect(m).NotTo(BeNil())
			Expect(m.MIC).To(Equal("XNYS"))
			Expect(m.WeekendDefinition).To(Equal("Sat-Sun"))
		})

		It("returns nil without error when absent", func() {
			pgxmockhelper.MockMarketQuery(dbPool, "XX.MISSING")
			m, err := store.MarketByFinID(ctx, "XX.MISSING")
			Expect(err).To(BeNil())
			Expect(m).To(BeNil())
		})
	})

	Describe("schedule queries", func() {
		It("fetches every schedule row for a market", func() {
			pgxmockhelper.MockSchedulesQuery(dbPool, "US.NYSE")
			schedules, err := store.SchedulesForMarket(ctx, "US.NYSE")
			Expect(err).To(BeNil())
			Expect(len(schedules)).To(Equal(4))
			Expect(schedules[0].ScheduleGroup).To(Equal("Regular"))
			Expect(schedules[0].Start).To(Equal("04:00:00"))
			Expect(schedules[0].OffsetDays).To(Equal(0))
			Expect(schedules[3].ScheduleGroup).To(Equal("Thanksgiving"))
		})
	})

	Describe("holiday queries", func() {
		It("fetches holidays inside the date range", func() {
			pgxmockhelper.MockHolidaysQuery(dbPool, "US.NYSE", "2007-11-22", "2007-11-22")
			holidays, err := store.HolidaysForMarket(ctx, "US.NYSE", "2007-11-22", "2007-11-22")
			Expect(err).To(BeNil())
			Expect(len(holidays)).To(Equal(1))
			Expect(holidays[0].HolidayName).To(Equal("Thanksgiving Day"))
			Expect(holidays[0].Status).To(Equal("Closed"))
		})
	})

	Describe("season queries", func() {
		It("resolves a defined season", func() {
			pgxmockhelper.MockSeasonQuery(dbPool, "First day of March", 2022)
			season, err := store.Season(ctx, "First day of March", 2022)
			Expect(err).To(BeNil())
			Expect(season.Date).To(Equal("2022-03-01"))
			Expect(season.Year).To(Equal(2022))
		})

		It("errors on an undefined season year", func() {
			pgxmockhelper.MockSeasonQuery(dbPool, "First day of March", 1999)
			_, err := store.Season(ctx, "First day of March", 1999)
			Expect(err).To(MatchError(data.ErrNotFound))
		})
	})

	Describe("phase type catalog", func() {
		It("fetches the catalog keyed by name", func() {
			pgxmockhelper.MockPhaseTypesQuery(dbPool)
			phaseTypes, err := store.PhaseTypes(ctx)
			Expect(err).To(BeNil())
			Expect(len(phaseTypes)).To(Equal(11))

			primary := phaseTypes["Primary Trading Session"]
			Expect(primary).NotTo(BeNil())
			Expect(primary.IsOpen()).To(BeTrue())
			Expect(primary.HasSettlement()).To(BeTrue())

			pre := phaseTypes["Pre-Trading Session"]
			Expect(pre).NotTo(BeNil())
			Expect(pre.IsOpen()).To(BeFalse())

			noSettle := phaseTypes["Primary Trading Session (With No Settlement)"]
			Expect(noSettle).NotTo(BeNil())
			Expect(noSettle.IsOpen()).To(BeTrue())
			Expect(noSettle.HasSettlement()).To(BeFalse())
		})
	})

	Describe("mic mappings", func() {
		It("resolves a known MIC", func() {
			pgxmockhelper.MockMicQuery(dbPool, "XNYS")
			mapping, err := store.MicMapping(ctx, "XNYS")
			Expect(err).To(BeNil())
			Expect(mapping).NotTo(BeNil())
			Expect(mapping.FinID).To(Equal("US.NYSE"))
		})

		It("returns nil without error for an unknown MIC", func() {
			pgxmockhelper.MockMicQuery(dbPool, "ZZZZ")
			mapping, err := store.MicMapping(ctx, "ZZZZ")
			Expect(err).To(BeNil())
			Expect(mapping).To(BeNil())
		})
	})
})

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

package handler_test

import (
	"io"
	"net/http/httptest"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pashagolub/pgxmock"
	"github.com/spf13/viper"

	"github.com/markethours/mh-api/common"
	"github.com/markethours/mh-api/data"
	"github.com/markethours/mh-api/data/database"
	"github.com/markethours/mh-api/market"
	"github.com/markethours/mh-api/pgxmockhelper"
	"github.com/markethours/mh-api/router"
)

var _ = Describe("API endpoints", func() {
	var (
		app    *fiber.App
		dbPool pgxmock.PgxConnIface
	)

	BeforeEach(func() {
		viper.Set("cache.redis", false)
		viper.Set("cache.local_size", 16)
		common.SetupCache()

		var err error
		dbPool, err = pgxmock.NewConn()
		Expect(err).To(BeNil())
		database.SetPool(dbPool)

		app = fiber.New(fiber.Config{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		})
		router.SetupRoutes(app)
	})

	It("answers ping", func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/v1/", nil))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
	})

	It("lists markets", func() {
		pgxmockhelper.MockMarketsAllQuery(dbPool)

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/markets/", nil))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).To(BeNil())

		var markets []*data.MarketRecord
		Expect(json.Unmarshal(body, &markets)).To(Succeed())
		Expect(len(markets)).To(Equal(7))
	})

	It("gets a market by identifier", func() {
		pgxmockhelper.MockMarketQuery(dbPool, "US.NYSE")

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/markets/US.NYSE", nil))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).To(BeNil())

		var m data.MarketRecord
		Expect(json.Unmarshal(body, &m)).To(Succeed())
		Expect(m.FinID).To(Equal("US.NYSE"))
	})

	It("responds 404 for an unknown market", func() {
		pgxmockhelper.MockMarketQuery(dbPool, "XX.MISSING")

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/markets/XX.MISSING", nil))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
	})

	It("responds 400 for a malformed identifier", func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/v1/markets/US.", nil))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
	})

	It("lists holidays over a range", func() {
		pgxmockhelper.MockMarketQuery(dbPool, "US.NYSE")
		pgxmockhelper.MockHolidaysQuery(dbPool, "US.NYSE", "2007-11-01", "2007-11-30")

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/markets/US.NYSE/holidays?start=2007-11-01&end=2007-11-30", nil))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).To(BeNil())

		var holidays []*data.MarketHolidayRecord
		Expect(json.Unmarshal(body, &holidays)).To(Succeed())
		Expect(len(holidays)).To(Equal(2))
	})

	It("responds 400 for a reversed holiday range", func() {
		pgxmockhelper.MockMarketQuery(dbPool, "US.NYSE")

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/markets/US.NYSE/holidays?start=2007-12-01&end=2007-11-01", nil))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
	})

	It("generates phases and caches the response", func() {
		pgxmockhelper.MockMarketQuery(dbPool, "US.NYSE")
		pgxmockhelper.MockPhaseTypesQuery(dbPool)
		pgxmockhelper.MockSchedulesQuery(dbPool, "US.NYSE")
		pgxmockhelper.MockHolidaysQuery(dbPool, "US.NYSE", "2024-02-04", "2024-02-06")

		resp, err := app.Test(httptest.NewRequest("GET", "/v1/markets/US.NYSE/phases?start=2024-02-06&end=2024-02-06", nil))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		body, err := io.ReadAll(resp.Body)
		Expect(err).To(BeNil())

		var phases []*market.Phase
		Expect(json.Unmarshal(body, &phases)).To(Succeed())
		Expect(len(phases)).To(Equal(3))
		Expect(phases[0].PhaseType).To(Equal("Pre-Trading Session"))

		// second request is served from cache; no database expectations
		resp, err = app.Test(httptest.NewRequest("GET", "/v1/markets/US.NYSE/phases?start=2024-02-06&end=2024-02-06", nil))
		Expect(err).To(BeNil())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		cachedBody, err := io.ReadAll(resp.Body)
		Expect(err).To(BeNil())
		Expect(cachedBody).To(Equal(body))
	})
})

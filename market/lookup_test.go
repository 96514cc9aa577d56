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

	"github.com/markethours/mh-api/data/database"
	"github.com/markethours/mh-api/market"
	"github.com/markethours/mh-api/pgxmockhelper"
)

var _ = Describe("Market lookup", func() {
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

	Context("by FinID", func() {
		It("finds a market", func() {
			pgxmockhelper.MockMarketQuery(dbPool, "US.NYSE")
			m, err := market.Get(ctx, "US.NYSE")
			Expect(err).To(BeNil())
			Expect(m).NotTo(BeNil())
			Expect(m.FinID).To(Equal("US.NYSE"))
			Expect(m.ExchangeName).To(Equal("New York Stock Exchange"))
			Expect(m.Timezone).To(Equal("America/New_York"))
			Expect(m.CountryCode()).To(Equal("US"))
		})

		It("uppercases the identifier", func() {
			pgxmockhelper.MockMarketQuery(dbPool, "US.NYSE")
			m, err := market.Get(ctx, "us.nyse")
			Expect(err).To(BeNil())
			Expect(m).NotTo(BeNil())
			Expect(m.FinID).To(Equal("US.NYSE"))
		})

		It("returns nothing for an unknown FinID", func() {
			pgxmockhelper.MockMarketQuery(dbPool, "XX.UNKNOWN")
			m, err := market.Get(ctx, "XX.UNKNOWN")
			Expect(err).To(BeNil())
			Expect(m).To(BeNil())
		})

		It("rejects a malformed FinID", func() {
			_, err := market.Get(ctx, "US.")
			Expect(err).To(MatchError(market.ErrInvalidFinID))
		})

		It("rejects an empty identifier", func() {
			_, err := market.Get(ctx, "")
			Expect(err).To(MatchError(market.ErrInvalidIdentifier))
		})
	})

	Context("by MIC", func() {
		It("resolves a MIC through the mapping table", func() {
			pgxmockhelper.MockMicQuery(dbPool, "XNYS")
			pgxmockhelper.MockMarketQuery(dbPool, "US.NYSE")
			m, err := market.Get(ctx, "xnys")
			Expect(err).To(BeNil())
			Expect(m).NotTo(BeNil())
			Expect(m.FinID).To(Equal("US.NYSE"))
		})

		It("returns nothing for an unknown MIC", func() {
			pgxmockhelper.MockMicQuery(dbPool, "ZZZZ")
			m, err := market.Get(ctx, "ZZZZ")
			Expect(err).To(BeNil())
			Expect(m).To(BeNil())
		})
	})

	Context("with a retired market", func() {
		It("follows replaced_by one hop", func() {
			pgxmockhelper.MockMarketQuery(dbPool, "ZA.JSE.SAFEX")
			pgxmockhelper.MockMarketQuery(dbPool, "ZA.JSE.EQUITIES.DRV")
			m, err := market.Get(ctx, "ZA.JSE.SAFEX")
			Expect(err).To(BeNil())
			Expect(m).NotTo(BeNil())
			Expect(m.FinID).To(Equal("ZA.JSE.EQUITIES.DRV"))
			Expect(m.MarketName).To(Equal("Equity Derivatives"))
		})

		It("returns the retired row when not following", func() {
			pgxmockhelper.MockMarketQuery(dbPool, "ZA.JSE.SAFEX")
			m, err := market.GetNoFollow(ctx, "ZA.JSE.SAFEX")
			Expect(err).To(BeNil())
			Expect(m).NotTo(BeNil())
			Expect(m.FinID).To(Equal("ZA.JSE.SAFEX"))
			Expect(m.ReplacedBy).To(Equal("ZA.JSE.EQUITIES.DRV"))
		})
	})

	Context("listing all markets", func() {
		It("returns every market ordered by FinID", func() {
			pgxmockhelper.MockMarketsAllQuery(dbPool)
			markets, err := market.List(ctx)
			Expect(err).To(BeNil())
			Expect(len(markets)).To(Equal(7))
			Expect(markets[0].FinID).To(Equal("US.NYSE"))
			Expect(markets[0].String()).To(Equal("Market: US.NYSE New York Stock Exchange America/New_York"))
		})
	})
})

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

package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/markethours/mh-api/market"
	"github.com/rs/zerolog/log"
)

// ListMarkets handles GET /v1/markets
func ListMarkets(c *fiber.Ctx) error {
	markets, err := market.List(c.UserContext())
	if err != nil {
		log.Error().Stack().Err(err).Msg("could not list markets")
		return apiError(err)
	}
	return c.JSON(markets)
}

// GetMarket handles GET /v1/markets/:id where :id is a FinID or MIC.
// Retired markets redirect to their successor unless follow=false.
func GetMarket(c *fiber.Ctx) error {
	identifier := c.Params("id")
	subLog := log.With().Str("Identifier", identifier).Str("Endpoint", "GetMarket").Logger()

	follow, err := strconv.ParseBool(c.Query("follow", "true"))
	if err != nil {
		subLog.Warn().Err(err).Str("Follow", c.Query("follow")).Msg("invalid follow query parameter")
		return fiber.ErrBadRequest
	}

	var m *market.Market
	if follow {
		m, err = market.Get(c.UserContext(), identifier)
	} else {
		m, err = market.GetNoFollow(c.UserContext(), identifier)
	}
	if err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not get market")
		return apiError(err)
	}
	if m == nil {
		return fiber.ErrNotFound
	}
	return c.JSON(m)
}

// GetHolidays handles GET /v1/markets/:id/holidays?start=&end=
func GetHolidays(c *fiber.Ctx) error {
	identifier := c.Params("id")
	start := c.Query("start")
	end := c.Query("end")
	subLog := log.With().Str("Identifier", identifier).Str("Start", start).Str("End", end).Str("Endpoint", "GetHolidays").Logger()

	m, err := market.Get(c.UserContext(), identifier)
	if err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not get market")
		return apiError(err)
	}
	if m == nil {
		return fiber.ErrNotFound
	}

	holidays, err := m.ListHolidays(c.UserContext(), start, end)
	if err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not list holidays")
		return apiError(err)
	}
	return c.JSON(holidays)
}

// GetSchedules handles GET /v1/markets/:id/schedules
func GetSchedules(c *fiber.Ctx) error {
	identifier := c.Params("id")
	subLog := log.With().Str("Identifier", identifier).Str("Endpoint", "GetSchedules").Logger()

	m, err := market.Get(c.UserContext(), identifier)
	if err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not get market")
		return apiError(err)
	}
	if m == nil {
		return fiber.ErrNotFound
	}

	schedules, err := m.ListSchedules(c.UserContext())
	if err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not list schedules")
		return apiError(err)
	}
	return c.JSON(schedules)
}

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
	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/markethours/mh-api/common"
	"github.com/markethours/mh-api/market"
	"github.com/markethours/mh-api/observability/opentelemetry"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// GetPhases handles GET /v1/markets/:id/phases?start=&end=
//
// Phase generation over a wide window walks every day in the range, so
// responses are cached on (market, start, end). The dataset only moves
// on catalog refresh, which keeps stale entries harmless within the
// cache TTL.
func GetPhases(c *fiber.Ctx) error {
	identifier := c.Params("id")
	start := c.Query("start")
	end := c.Query("end")
	subLog := log.With().Str("Identifier", identifier).Str("Start", start).Str("End", end).Str("Endpoint", "GetPhases").Logger()

	_, span := otel.Tracer(opentelemetry.Name).Start(c.UserContext(), "GetPhases",
		trace.WithAttributes(opentelemetry.SpanAttributesFromFiber(c)...))
	defer span.End()

	cacheKey := common.CacheKey("phases", identifier, start, end)
	if cached, err := common.CacheGet(cacheKey); err == nil && len(cached) > 0 {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(cached)
	}

	m, err := market.Get(c.UserContext(), identifier)
	if err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not get market")
		return apiError(err)
	}
	if m == nil {
		return fiber.ErrNotFound
	}

	phases, err := m.Phases(c.UserContext(), start, end)
	if err != nil {
		subLog.Warn().Stack().Err(err).Msg("could not generate phases")
		return apiError(err)
	}

	body, err := json.Marshal(phases)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not marshal phases")
		return fiber.ErrInternalServerError
	}
	if err := common.CacheSet(cacheKey, body); err != nil {
		subLog.Warn().Err(err).Msg("could not cache phases response")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

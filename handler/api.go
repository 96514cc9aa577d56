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
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/markethours/mh-api/data"
	"github.com/markethours/mh-api/market"
	"github.com/rs/zerolog/log"
)

type PingResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"API is alive"`
	Time    string `json:"time" example:"2024-02-06T08:09:10.115924-05:00"`
}

func Ping(c *fiber.Ctx) error {
	var response PingResponse
	now, err := time.Now().MarshalText()
	if err != nil {
		log.Error().Err(err).Msg("error while getting time in ping")
		response = PingResponse{
			Status:  "error",
			Message: err.Error(),
			Time:    string(now),
		}
	} else {
		response = PingResponse{
			Status:  "success",
			Message: "API is alive",
			Time:    string(now),
		}
	}
	return c.JSON(response)
}

// apiError maps engine errors onto HTTP statuses. Malformed identifiers
// and date ranges are the caller's fault; everything else is ours.
func apiError(err error) error {
	switch {
	case errors.Is(err, data.ErrInvalidDate),
		errors.Is(err, data.ErrBeginAfterEnd),
		errors.Is(err, data.ErrInvalidArgument),
		errors.Is(err, market.ErrInvalidFinID),
		errors.Is(err, market.ErrInvalidIdentifier):
		return fiber.ErrBadRequest
	default:
		return fiber.ErrInternalServerError
	}
}

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

package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/markethours/mh-api/common"
	"github.com/markethours/mh-api/data/database"
	"github.com/markethours/mh-api/market"
)

func init() {
	rootCmd.AddCommand(holidaysCmd)
}

var holidaysCmd = &cobra.Command{
	Use:   "holidays <identifier> <start> <end>",
	Short: "List a market's holidays over a date range",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		ctx := context.Background()

		if err := database.Connect(ctx); err != nil {
			log.Fatal().Err(err).Msg("could not connect to database")
		}

		m, err := market.Get(ctx, args[0])
		if err != nil {
			log.Fatal().Err(err).Str("Identifier", args[0]).Msg("could not get market")
		}
		if m == nil {
			log.Fatal().Str("Identifier", args[0]).Msg("market not found")
		}

		holidays, err := m.ListHolidays(ctx, args[1], args[2])
		if err != nil {
			log.Fatal().Err(err).Msg("could not list holidays")
		}
		printJSON(holidays)
	},
}

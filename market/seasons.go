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

package market

import (
	"context"

	"github.com/markethours/mh-api/data"
)

// ResolveSeason maps a symbolic season name ("First day of March") and a
// year onto the concrete date the dataset defines for that pair.
func ResolveSeason(ctx context.Context, name string, year int) (*data.SeasonDefinitionRecord, error) {
	return store.Season(ctx, name, year)
}

type seasonKey struct {
	name string
	year int
}

// seasonResolver memoizes season lookups for the lifetime of one phase
// generation pass.
type seasonResolver struct {
	memo map[seasonKey]string
}

func newSeasonResolver() *seasonResolver {
	return &seasonResolver{memo: make(map[seasonKey]string, 4)}
}

func (r *seasonResolver) resolve(ctx context.Context, name string, year int) (string, error) {
	key := seasonKey{name: name, year: year}
	if date, ok := r.memo[key]; ok {
		return date, nil
	}
	season, err := store.Season(ctx, name, year)
	if err != nil {
		return "", err
	}
	r.memo[key] = season.Date
	return season.Date, nil
}

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
	"fmt"
	"strings"

	"github.com/markethours/mh-api/data"
	"github.com/rs/zerolog/log"
)

var store data.Store = data.NewStore()

// SetStore swaps the backing dataset store. Intended for alternate
// backends; tests normally inject at the database pool instead.
func SetStore(s data.Store) {
	store = s
}

// Get resolves a market by FinID (contains a dot) or MIC (no dot,
// case-insensitive). A replaced_by pointer is followed one hop, so a
// retired identifier lands on its successor. Returns (nil, nil) when
// the identifier is well formed but unknown.
func Get(ctx context.Context, identifier string) (*Market, error) {
	return lookup(ctx, identifier, true)
}

// GetNoFollow is Get without the replaced_by hop; it returns the retired
// row itself.
func GetNoFollow(ctx context.Context, identifier string) (*Market, error) {
	return lookup(ctx, identifier, false)
}

func lookup(ctx context.Context, identifier string, follow bool) (*Market, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("empty identifier: %w", ErrInvalidIdentifier)
	}
	if strings.Contains(identifier, ".") {
		return getByFinID(ctx, identifier, follow)
	}
	return getByMIC(ctx, identifier, follow)
}

func getByFinID(ctx context.Context, identifier string, follow bool) (*Market, error) {
	finID, err := ParseFinID(identifier)
	if err != nil {
		return nil, err
	}

	record, err := store.MarketByFinID(ctx, finID.String())
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	// Follow exactly one replaced_by hop; a self-redirect stays put.
	if follow && record.ReplacedBy != "" && record.ReplacedBy != record.FinID {
		log.Debug().Str("FinID", record.FinID).Str("ReplacedBy", record.ReplacedBy).Msg("following market redirect")
		replacement, err := store.MarketByFinID(ctx, record.ReplacedBy)
		if err != nil {
			return nil, err
		}
		if replacement == nil {
			return nil, nil
		}
		record = replacement
	}

	return &Market{MarketRecord: *record}, nil
}

func getByMIC(ctx context.Context, identifier string, follow bool) (*Market, error) {
	mapping, err := store.MicMapping(ctx, strings.ToUpper(identifier))
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		return nil, nil
	}
	return getByFinID(ctx, mapping.FinID, follow)
}

// List returns every market in the dataset ordered by FinID.
func List(ctx context.Context) ([]*Market, error) {
	records, err := store.MarketsAll(ctx)
	if err != nil {
		return nil, err
	}
	markets := make([]*Market, 0, len(records))
	for _, record := range records {
		markets = append(markets, &Market{MarketRecord: *record})
	}
	return markets, nil
}

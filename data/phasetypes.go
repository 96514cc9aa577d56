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

package data

import (
	"context"
	"sync"

	"github.com/markethours/mh-api/data/database"
	"github.com/rs/zerolog/log"
)

// The phase_types catalog is tiny and changes rarely, so it is cached in
// memory once loaded. RefreshPhaseTypes is scheduled periodically by the
// serve command; until the first successful load every call hits the
// database.

var (
	phaseTypeCache map[string]*PhaseTypeRecord
	phaseTypeLock  sync.RWMutex
)

// PhaseTypes returns the phase type catalog keyed by name.
func (store *PgxStore) PhaseTypes(ctx context.Context) (map[string]*PhaseTypeRecord, error) {
	phaseTypeLock.RLock()
	cached := phaseTypeCache
	phaseTypeLock.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return store.queryPhaseTypes(ctx)
}

// RefreshPhaseTypes re-reads the phase type catalog and publishes it to
// the cache. The stale catalog stays published if the read fails.
func (store *PgxStore) RefreshPhaseTypes(ctx context.Context) error {
	phaseTypes, err := store.queryPhaseTypes(ctx)
	if err != nil {
		return err
	}
	phaseTypeLock.Lock()
	phaseTypeCache = phaseTypes
	phaseTypeLock.Unlock()
	return nil
}

func (store *PgxStore) queryPhaseTypes(ctx context.Context) (map[string]*PhaseTypeRecord, error) {
	subLog := log.With().Str("Table", "phase_types").Logger()

	trx, err := database.ReaderTrx(ctx)
	if err != nil {
		subLog.Error().Stack().Err(err).Msg("could not get transaction for phase type query")
		return nil, err
	}

	sql, args := buildSelect("phase_types", []string{"name", "status", "settlement"}, nil, "name ASC")
	rows, err := trx.Query(ctx, sql, args...)
	if err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("phase type query failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	phaseTypes := make(map[string]*PhaseTypeRecord, 16)
	for rows.Next() {
		phaseType := &PhaseTypeRecord{}
		if err := rows.Scan(&phaseType.Name, &phaseType.Status, &phaseType.Settlement); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not scan phase type row")
			if err := trx.Rollback(ctx); err != nil {
				subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
			}
			return nil, err
		}
		phaseTypes[phaseType.Name] = phaseType
	}

	if err := rows.Err(); err != nil {
		subLog.Warn().Stack().Err(err).Str("SQL", sql).Msg("phase type query read failed")
		if err := trx.Rollback(ctx); err != nil {
			subLog.Error().Stack().Err(err).Msg("could not rollback transaction")
		}
		return nil, err
	}

	if err := trx.Commit(ctx); err != nil {
		subLog.Error().Stack().Err(err).Msg("could not commit transaction")
	}

	return phaseTypes, nil
}

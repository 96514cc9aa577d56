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
	"fmt"
	"strings"
)

// FinID is a dotted market identifier of the form
// COUNTRY.ACRONYM[.SUBMARKET...], e.g. "US.NYSE" or
// "ZA.JSE.EQUITIES.DRV". The first segment is the ISO country code.
type FinID struct {
	Country string
	Acronym string
	parts   []string
}

// ParseFinID validates and normalizes (uppercases) a FinID string.
func ParseFinID(value string) (FinID, error) {
	value = strings.ToUpper(strings.TrimSpace(value))
	parts := strings.Split(value, ".")
	if len(parts) < 2 {
		return FinID{}, fmt.Errorf("%q needs at least a country and an acronym: %w", value, ErrInvalidFinID)
	}
	for _, part := range parts {
		if part == "" {
			return FinID{}, fmt.Errorf("%q has an empty segment: %w", value, ErrInvalidFinID)
		}
		for _, r := range part {
			if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
				return FinID{}, fmt.Errorf("%q contains an invalid character: %w", value, ErrInvalidFinID)
			}
		}
	}
	if len(parts[0]) != 2 {
		return FinID{}, fmt.Errorf("%q country segment must be a two-letter code: %w", value, ErrInvalidFinID)
	}
	return FinID{
		Country: parts[0],
		Acronym: parts[1],
		parts:   parts,
	}, nil
}

func (f FinID) String() string {
	return strings.Join(f.parts, ".")
}

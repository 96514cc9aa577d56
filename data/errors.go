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

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrBeginAfterEnd    = errors.New("invalid range; start after end date")
	ErrDataInconsistent = errors.New("reference dataset is inconsistent")
)

/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"errors"
	"fmt"

	"github.com/tomoncle/datastudy/database"
)

var (
	ErrNotFound            = errors.New("repository: entity not found")
	ErrIncorrectResultSize = errors.New("repository: query returned more than one result")
	ErrInvalidSortProperty = errors.New("repository: invalid sort property")
	ErrDuplicateKey        = errors.New("repository: duplicate key")
)

// translateError maps driver errors onto the package sentinels and leaves
// anything else as it is.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	is, kind := database.IsSqlError(err)
	if !is {
		return err
	}
	switch kind {
	case database.NoRowsErr:
		return ErrNotFound
	case database.DuplicateKeyErr:
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}
	return err
}

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

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsSqlError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   bool
		kind SQLError
	}{
		{name: "nil", err: nil, is: false, kind: UnknownErr},
		{name: "no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), is: true, kind: NoRowsErr},
		{name: "mysql duplicate", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, is: true, kind: DuplicateKeyErr},
		{name: "mysql unknown", err: &mysql.MySQLError{Number: 9999}, is: true, kind: UnknownErr},
		{name: "sqlite unique", err: errors.New("constraint failed: UNIQUE constraint failed: member.username (2067)"), is: true, kind: DuplicateKeyErr},
		{name: "postgres duplicate", err: errors.New(`pq: duplicate key value violates unique constraint "member_pkey"`), is: true, kind: DuplicateKeyErr},
		{name: "sqlite no table", err: errors.New("SQL logic error: no such table: member (1)"), is: true, kind: NoTableErr},
		{name: "postgres relation exists", err: errors.New(`pq: relation "member" already exists`), is: true, kind: ExistTableErr},
		{name: "postgres missing column", err: errors.New(`pq: column "nickname" does not exist`), is: true, kind: NoColumnErr},
		{name: "foreign key", err: errors.New("FOREIGN KEY constraint failed"), is: true, kind: ForeignKeyViolationErr},
		{name: "other", err: errors.New("connection refused"), is: false, kind: UnknownErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is, kind := IsSqlError(tt.err)
			assert.Equal(t, tt.is, is)
			assert.Equal(t, tt.kind, kind)
		})
	}

	assert.True(t, IsSqlErrorOf(sql.ErrNoRows, NoRowsErr))
	assert.False(t, IsSqlErrorOf(sql.ErrNoRows, DuplicateKeyErr))
}

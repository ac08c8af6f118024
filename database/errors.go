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
	"strings"

	"github.com/go-sql-driver/mysql"
)

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
)

var mysqlErrorNumbers = map[uint16]SQLError{
	1091: NoIndexErr,
	1054: NoColumnErr,
	1061: ExistIndexErr,
	1060: ExistColumnErr,
	1062: DuplicateKeyErr,
	1048: NotNullViolationErr,
	1216: ForeignKeyViolationErr,
	1217: ForeignKeyViolationErr,
	1451: ForeignKeyViolationErr,
	1452: ForeignKeyViolationErr,
	3819: CheckConstraintViolationErr,
	1265: DataTruncatedErr,
	1146: NoTableErr,
	1050: ExistTableErr,
}

// messageRule matches lowercase driver messages from postgres (lib/pq
// prints "pq: ..." and the SQLSTATE) and sqlite.
type messageRule struct {
	kind SQLError
	any  []string
	all  []string
}

var messageRules = []messageRule{
	{kind: NoColumnErr, any: []string{"sqlstate 42703", "undefined column", "no such column"}},
	{kind: NoColumnErr, all: []string{"column", "does not exist"}},
	{kind: NoIndexErr, any: []string{"sqlstate 42704", "no such index"}},
	{kind: NoIndexErr, all: []string{"index", "does not exist"}},
	{kind: NoTableErr, any: []string{"sqlstate 42p01", "undefined table", "no such table"}},
	{kind: ExistIndexErr, all: []string{"index", "already exists"}},
	{kind: ExistTableErr, all: []string{"table", "already exists"}},
	{kind: ExistTableErr, all: []string{"relation", "already exists"}},
	{kind: DuplicateKeyErr, any: []string{"duplicate key value", "unique constraint failed", "sqlstate 23505"}},
	{kind: NotNullViolationErr, any: []string{"not-null constraint", "sqlstate 23502", "not null constraint failed"}},
	{kind: ForeignKeyViolationErr, any: []string{"foreign key violation", "violates foreign key constraint", "foreign key constraint failed", "sqlstate 23503"}},
	{kind: CheckConstraintViolationErr, any: []string{"check constraint", "sqlstate 23514"}},
	{kind: DataTruncatedErr, any: []string{"string data right truncation", "sqlstate 22001", "data truncated"}},
	{kind: InvalidTypeCastErr, any: []string{"datatype mismatch", "sqlstate 42804"}},
}

func (r messageRule) match(s string) bool {
	for _, sub := range r.any {
		if strings.Contains(s, sub) {
			return true
		}
	}
	if len(r.all) == 0 {
		return false
	}
	for _, sub := range r.all {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// IsSqlError classifies err as a driver error. MySQL errors are matched by
// number; everything else by message.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true, NoRowsErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		if kind, ok := mysqlErrorNumbers[mysqlErr.Number]; ok {
			return true, kind
		}
		return true, UnknownErr
	}
	s := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		if rule.match(s) {
			return true, rule.kind
		}
	}
	return false, UnknownErr
}

// IsSqlErrorOf reports whether err classifies as kind.
func IsSqlErrorOf(err error, kind SQLError) bool {
	is, got := IsSqlError(err)
	return is && got == kind
}

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
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/datastudy/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// sortColumn resolves a sort property against T's mapped columns. The
// property may be the json name, the Go field name or the column name.
// Relations and unmapped fields are rejected.
func sortColumn[T any](dialect schema.Dialect, property string) (string, error) {
	typ := reflect.TypeFor[T]()
	table := dialect.Tables().Get(typ)
	for _, f := range table.Fields {
		if strings.EqualFold(f.Name, property) || strings.EqualFold(f.GoName, property) {
			return f.Name, nil
		}
		jsonName, _, _ := strings.Cut(typ.FieldByIndex(f.Index).Tag.Get("json"), ",")
		if jsonName != "" && jsonName != "-" && jsonName == property {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q on %s", ErrInvalidSortProperty, property, table.TypeName)
}

// applySort appends ORDER BY terms for sort followed by the primary key, so
// that pages never overlap.
func applySort[T any](q *bun.SelectQuery, dialect schema.Dialect, sort types.Sort) (*bun.SelectQuery, error) {
	for _, order := range sort {
		column, err := sortColumn[T](dialect, order.Property)
		if err != nil {
			return nil, err
		}
		dir := types.ASC
		if order.IsDescending() {
			dir = types.DESC
		}
		q = q.OrderExpr("?TableAlias.? ?", bun.Ident(column), bun.Safe(dir))
	}
	return q.OrderExpr("?PKs"), nil
}

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
	"context"

	"github.com/tomoncle/datastudy/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// Persistable is implemented by entities that can tell an unsaved instance
// from a stored one. Save inserts new entities and updates the others.
type Persistable interface {
	IsNew() bool
}

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	Save(ctx context.Context, entity *T) (*T, error)

	SaveAll(ctx context.Context, entity ...*T) error

	FindByID(ctx context.Context, id any) (*T, error)

	ExistsByID(ctx context.Context, id any) (bool, error)

	FindAll(ctx context.Context) ([]*T, error)

	FindAllSorted(ctx context.Context, sort types.Sort) ([]*T, error)

	Count(ctx context.Context) (int64, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	Delete(ctx context.Context, entity *T) error

	DeleteByID(ctx context.Context, id any) error
}

// TransactionRepository binds a repository to a transaction.
type TransactionRepository[T any] interface {
	WithTx(tx bun.Tx) Repository[T]
	RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Page[*T], error)
}

// Repository combines CRUD, pagination, and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	DB() bun.IDB
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}

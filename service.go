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

// Package datastudy exposes a generic entity service over the repository
// layer, bound to the process-wide database.
package datastudy

import (
	"context"
	"sync"

	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/repository"
	"github.com/tomoncle/datastudy/types"
	"github.com/uptrace/bun"
)

type Service[T any] interface {
	// Get returns a single entity by its identifier, or
	// repository.ErrNotFound.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// List returns entities that match the provided filter.
	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	// Query selects entities matching a WHERE clause.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Page returns one page of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Page[*T], error)

	// Count returns the number of stored entities.
	Count(ctx context.Context) (int64, error)

	// Save inserts a new entity or updates a stored one.
	Save(ctx context.Context, model *T) (*T, error)

	// SaveAll inserts new entities in one statement.
	SaveAll(ctx context.Context, model ...*T) error

	// SaveOrUpdate upserts entities based on fields and duplicate keys.
	SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error

	// Delete removes an entity by its identifier.
	Delete(ctx context.Context, id any) error

	// InTx runs fn with a service bound to a new transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, svc Service[T]) error) error

	SelectBuilder() *bun.SelectQuery
	InsertBuilder() *bun.InsertQuery
	UpdateBuilder() *bun.UpdateQuery
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	db   bun.IDB
	repo repository.Repository[T]
	once sync.Once
}

// NewService returns a Service using the global database. The connection is
// looked up on first use, so the service may be built before InitDB runs.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

// NewServiceWithDB returns a Service bound to db.
func NewServiceWithDB[T any](db bun.IDB) Service[T] {
	return &baseServiceImpl[T]{db: db}
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.once.Do(func() {
		db := s.db
		if db == nil {
			db = database.GetDB()
		}
		s.repo = repository.NewRepository[T](db)
	})
	return s.repo
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().FindByID(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.baseRepo().FindAll(ctx)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	return s.baseRepo().List(ctx, filter)
}

func (s *baseServiceImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	return s.baseRepo().Query(ctx, query, args...)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Page[*T], error) {
	return s.baseRepo().Page(ctx, page)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context) (int64, error) {
	return s.baseRepo().Count(ctx)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model *T) (*T, error) {
	return s.baseRepo().Save(ctx, model)
}

func (s *baseServiceImpl[T]) SaveAll(ctx context.Context, model ...*T) error {
	return s.baseRepo().SaveAll(ctx, model...)
}

func (s *baseServiceImpl[T]) SaveOrUpdate(ctx context.Context, fields []string, duplicateKeys []string, model ...*T) error {
	return s.baseRepo().Upsert(ctx, fields, duplicateKeys, model...)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.baseRepo().DeleteByID(ctx, id)
}

func (s *baseServiceImpl[T]) InTx(ctx context.Context, fn func(ctx context.Context, svc Service[T]) error) error {
	return s.baseRepo().RunInTx(ctx, func(ctx context.Context, repo repository.Repository[T]) error {
		return fn(ctx, NewServiceWithDB[T](repo.DB()))
	})
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.baseRepo().NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.baseRepo().NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.baseRepo().NewDelete()
}

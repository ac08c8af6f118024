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
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/datastudy/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db bun.IDB
}

// NewRepository returns a generic repository backed by db, which may be a
// *bun.DB, a bun.Tx or a bun.Conn.
func NewRepository[T any](db bun.IDB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) DB() bun.IDB { return r.db }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect().Model((*T)(nil)) }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert().Model((*T)(nil)) }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate().Model((*T)(nil)) }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete().Model((*T)(nil)) }

func (r *baseRepositoryImpl[T]) WithTx(tx bun.Tx) Repository[T] {
	return &baseRepositoryImpl[T]{db: tx}
}

func (r *baseRepositoryImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, repo Repository[T]) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, r.WithTx(tx))
	})
}

func (r *baseRepositoryImpl[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if p, ok := any(entity).(Persistable); ok && !p.IsNew() {
		if _, err := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); err != nil {
			return nil, translateError(err)
		}
		return entity, nil
	}
	if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
		return nil, translateError(err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) SaveAll(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := append([]*T(nil), entity...)
	_, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	return translateError(err)
}

func (r *baseRepositoryImpl[T]) FindByID(ctx context.Context, id any) (*T, error) {
	entity := new(T)
	err := r.db.NewSelect().Model(entity).Where("?PKs = ?", id).Scan(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) ExistsByID(ctx context.Context, id any) (bool, error) {
	exists, err := r.NewSelect().Where("?PKs = ?", id).Exists(ctx)
	return exists, translateError(err)
}

func (r *baseRepositoryImpl[T]) FindAll(ctx context.Context) ([]*T, error) {
	return r.FindAllSorted(ctx, types.Unsorted)
}

func (r *baseRepositoryImpl[T]) FindAllSorted(ctx context.Context, sort types.Sort) ([]*T, error) {
	var entities []*T
	q, err := applySort[T](r.db.NewSelect().Model(&entities), r.db.Dialect(), sort)
	if err != nil {
		return nil, err
	}
	if err := q.Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context) (int64, error) {
	n, err := r.NewSelect().Count(ctx)
	return int64(n), translateError(err)
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	var entities []*T
	query := r.db.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.OrderExpr("?PKs").Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	return r.List(ctx, types.NewQueryFilter(query, args...))
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Page[*T], error) {
	return findPage[T](ctx, r.db, pageRequest, nil)
}

// findPage runs a count query and then the offset/limit query for req.
// customize adds joins or conditions shared by both.
func findPage[T any](ctx context.Context, db bun.IDB, req *types.PageRequest, customize func(*bun.SelectQuery) *bun.SelectQuery) (*types.Page[*T], error) {
	var entities []*T
	query := db.NewSelect().Model(&entities)
	if customize != nil {
		query = customize(query)
	}
	if f := req.GetFilter(); f != nil {
		query = query.Where(f.Schema, f.Args...)
	}
	total, err := query.Count(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	query, err = applySort[T](query, db.Dialect(), req.GetSort())
	if err != nil {
		return nil, err
	}
	if total == 0 || req.GetOffset() >= total {
		return types.NewPage[*T](nil, req, int64(total)), nil
	}
	err = query.
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return types.NewPage(entities, req, int64(total)), nil
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, entity *T) error {
	_, err := r.db.NewDelete().Model(entity).WherePK().Exec(ctx)
	return translateError(err)
}

func (r *baseRepositoryImpl[T]) DeleteByID(ctx context.Context, id any) error {
	_, err := r.NewDelete().Where("?PKs = ?", id).Exec(ctx)
	return translateError(err)
}

// Upsert inserts entity and, on a conflict over duplicateKeys, overwrites
// fields. MySQL ignores duplicateKeys and uses the table's unique keys.
func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	if len(entity) == 0 {
		return nil
	}
	entities := append([]*T(nil), entity...)
	features := r.db.Dialect().Features()

	switch {
	case features.Has(feature.InsertOnConflict):
		return r.upsertOnConflict(ctx, fields, duplicateKeys, entities)
	case features.Has(feature.InsertOnDuplicateKey):
		return r.upsertOnDuplicateKey(ctx, fields, entities)
	default:
		return r.upsertFallback(ctx, entities)
	}
}

func (r *baseRepositoryImpl[T]) upsertOnDuplicateKey(ctx context.Context, fields []string, entities []*T) error {
	q := r.db.NewInsert().Model(&entities).On("DUPLICATE KEY UPDATE")
	for _, field := range fields {
		q = q.Set("? = VALUES(?)", bun.Ident(field), bun.Ident(field))
	}
	_, err := q.Exec(ctx)
	return translateError(err)
}

func (r *baseRepositoryImpl[T]) upsertOnConflict(ctx context.Context, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		for _, pk := range r.db.Dialect().Tables().Get(reflect.TypeFor[T]()).PKs {
			duplicateKeys = append(duplicateKeys, pk.Name)
		}
	}
	placeholders := make([]string, len(duplicateKeys))
	keys := make([]interface{}, len(duplicateKeys))
	for i, k := range duplicateKeys {
		placeholders[i] = "?"
		keys[i] = bun.Ident(k)
	}
	q := r.db.NewInsert().
		Model(&entities).
		On("CONFLICT ("+strings.Join(placeholders, ", ")+") DO UPDATE", keys...)
	for _, field := range fields {
		q = q.Set("? = EXCLUDED.?", bun.Ident(field), bun.Ident(field))
	}
	_, err := q.Exec(ctx)
	return translateError(err)
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, entities []*T) error {
	for _, entity := range entities {
		_, err := r.db.NewInsert().Model(entity).Exec(ctx)
		if err == nil {
			continue
		}
		if _, updateErr := r.db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
			return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %w", err, updateErr)
		}
	}
	return nil
}

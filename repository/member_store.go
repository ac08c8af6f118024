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
	"errors"

	"github.com/tomoncle/datastudy/entity"
	"github.com/uptrace/bun"
)

// MemberStore is the hand-written counterpart of MemberRepository: each
// method is one explicit statement against the member table.
type MemberStore struct {
	db bun.IDB
}

func NewMemberStore(db bun.IDB) *MemberStore {
	return &MemberStore{db: db}
}

// Save inserts member and fills in its generated id.
func (s *MemberStore) Save(ctx context.Context, member *entity.Member) (*entity.Member, error) {
	if _, err := s.db.NewInsert().Model(member).Exec(ctx); err != nil {
		return nil, translateError(err)
	}
	return member, nil
}

func (s *MemberStore) Delete(ctx context.Context, member *entity.Member) error {
	_, err := s.db.NewDelete().Model(member).WherePK().Exec(ctx)
	return translateError(err)
}

func (s *MemberStore) FindAll(ctx context.Context) ([]*entity.Member, error) {
	members := []*entity.Member{}
	if err := s.db.NewSelect().Model(&members).OrderExpr("?PKs").Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	return members, nil
}

// Find returns nil when no member has id.
func (s *MemberStore) Find(ctx context.Context, id int64) (*entity.Member, error) {
	m, err := s.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return m, err
}

func (s *MemberStore) FindByID(ctx context.Context, id int64) (*entity.Member, error) {
	member := new(entity.Member)
	if err := s.db.NewSelect().Model(member).Where("?PKs = ?", id).Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	return member, nil
}

func (s *MemberStore) Count(ctx context.Context) (int64, error) {
	n, err := s.db.NewSelect().Model((*entity.Member)(nil)).Count(ctx)
	return int64(n), translateError(err)
}

func (s *MemberStore) FindByUsernameAndAgeGreaterThan(ctx context.Context, username string, age int) ([]*entity.Member, error) {
	members := []*entity.Member{}
	err := s.db.NewSelect().
		Model(&members).
		Where("?TableAlias.username = ?", username).
		Where("?TableAlias.age > ?", age).
		OrderExpr("?PKs").
		Scan(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return members, nil
}

// FindByPage returns limit members of the given age starting at offset,
// ordered by username descending.
func (s *MemberStore) FindByPage(ctx context.Context, age, offset, limit int) ([]*entity.Member, error) {
	members := []*entity.Member{}
	err := s.db.NewSelect().
		Model(&members).
		Where("?TableAlias.age = ?", age).
		OrderExpr("?TableAlias.username DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return members, nil
}

// TotalCount counts the members of the given age, the total behind FindByPage.
func (s *MemberStore) TotalCount(ctx context.Context, age int) (int64, error) {
	n, err := s.db.NewSelect().
		Model((*entity.Member)(nil)).
		Where("?TableAlias.age = ?", age).
		Count(ctx)
	return int64(n), translateError(err)
}

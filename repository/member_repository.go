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

	"github.com/tomoncle/datastudy/dto"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/types"
	"github.com/uptrace/bun"
)

// MemberRepository adds member specific queries to the generic repository.
type MemberRepository struct {
	Repository[entity.Member]
	db bun.IDB
}

func NewMemberRepository(db bun.IDB) *MemberRepository {
	return &MemberRepository{Repository: NewRepository[entity.Member](db), db: db}
}

// WithTx returns the repository bound to tx, e.g. to hold locks taken by
// FindLockByUsername.
func (r *MemberRepository) WithTx(tx bun.Tx) *MemberRepository {
	return NewMemberRepository(tx)
}

func (r *MemberRepository) selectMembers(dest *[]*entity.Member) *bun.SelectQuery {
	return r.db.NewSelect().Model(dest)
}

func (r *MemberRepository) scanMembers(ctx context.Context, q *bun.SelectQuery, dest *[]*entity.Member) ([]*entity.Member, error) {
	if err := q.OrderExpr("?PKs").Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	if *dest == nil {
		*dest = []*entity.Member{}
	}
	return *dest, nil
}

func (r *MemberRepository) FindByUsernameAndAgeGreaterThan(ctx context.Context, username string, age int) ([]*entity.Member, error) {
	var members []*entity.Member
	q := r.selectMembers(&members).
		Where("?TableAlias.username = ?", username).
		Where("?TableAlias.age > ?", age)
	return r.scanMembers(ctx, q, &members)
}

func (r *MemberRepository) FindUser(ctx context.Context, username string, age int) ([]*entity.Member, error) {
	var members []*entity.Member
	q := r.selectMembers(&members).
		Where("?TableAlias.username = ?", username).
		Where("?TableAlias.age = ?", age)
	return r.scanMembers(ctx, q, &members)
}

func (r *MemberRepository) FindUsernameList(ctx context.Context) ([]string, error) {
	names := []string{}
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		Column("username").
		OrderExpr("?PKs").
		Scan(ctx, &names)
	if err != nil {
		return nil, translateError(err)
	}
	return names, nil
}

// FindMemberDto returns members that have a team, with the team name.
func (r *MemberRepository) FindMemberDto(ctx context.Context) ([]dto.MemberDto, error) {
	dtos := []dto.MemberDto{}
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		ColumnExpr("m.member_id AS id").
		ColumnExpr("m.username").
		ColumnExpr("t.name AS team_name").
		Join("JOIN team AS t ON t.team_id = m.team_id").
		OrderExpr("m.member_id").
		Scan(ctx, &dtos)
	if err != nil {
		return nil, translateError(err)
	}
	return dtos, nil
}

// FindByNames returns members whose username is one of names. An empty
// names list matches nothing and runs no query.
func (r *MemberRepository) FindByNames(ctx context.Context, names []string) ([]*entity.Member, error) {
	if len(names) == 0 {
		return []*entity.Member{}, nil
	}
	var members []*entity.Member
	q := r.selectMembers(&members).Where("?TableAlias.username IN (?)", bun.In(names))
	return r.scanMembers(ctx, q, &members)
}

func (r *MemberRepository) FindByUsername(ctx context.Context, username string) ([]*entity.Member, error) {
	var members []*entity.Member
	q := r.selectMembers(&members).Where("?TableAlias.username = ?", username)
	return r.scanMembers(ctx, q, &members)
}

// FindMemberByUsername returns the only member called username, nil when
// there is none and ErrIncorrectResultSize when there are several.
func (r *MemberRepository) FindMemberByUsername(ctx context.Context, username string) (*entity.Member, error) {
	return r.findSingle(ctx, r.db, username, types.LockNone)
}

// FindOptionalByUsername is FindMemberByUsername with an explicit found flag.
func (r *MemberRepository) FindOptionalByUsername(ctx context.Context, username string) (*entity.Member, bool, error) {
	m, err := r.FindMemberByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	return m, m != nil, nil
}

func (r *MemberRepository) findSingle(ctx context.Context, db bun.IDB, username string, mode types.LockMode) (*entity.Member, error) {
	var members []*entity.Member
	q := db.NewSelect().
		Model(&members).
		Where("?TableAlias.username = ?", username).
		OrderExpr("?PKs").
		Limit(2)
	q = withLock(q, db.Dialect().Name(), mode)
	if err := q.Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	switch len(members) {
	case 0:
		return nil, nil
	case 1:
		return members[0], nil
	}
	return nil, fmt.Errorf("%w: username %q", ErrIncorrectResultSize, username)
}

func (r *MemberRepository) FindByAge(ctx context.Context, age int, req *types.PageRequest) (*types.Page[*entity.Member], error) {
	return findPage[entity.Member](ctx, r.db, req, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.age = ?", age)
	})
}

// FindAllPaged pages through all members with their team loaded.
func (r *MemberRepository) FindAllPaged(ctx context.Context, req *types.PageRequest) (*types.Page[*entity.Member], error) {
	return findPage[entity.Member](ctx, r.db, req, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Relation("Team")
	})
}

// BulkAgePlus increments the age of every member aged age or older in one
// statement and returns the number of rows changed. Member values already
// loaded in memory are not refreshed.
func (r *MemberRepository) BulkAgePlus(ctx context.Context, age int) (int, error) {
	res, err := r.db.NewUpdate().
		Model((*entity.Member)(nil)).
		Set("age = age + 1").
		Where("age >= ?", age).
		Exec(ctx)
	if err != nil {
		return 0, translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// FindMemberFetchJoin loads members and their teams in a single query.
func (r *MemberRepository) FindMemberFetchJoin(ctx context.Context) ([]*entity.Member, error) {
	var members []*entity.Member
	return r.scanMembers(ctx, r.selectMembers(&members).Relation("Team"), &members)
}

// FindAllWithTeam is FindAll with the team relation loaded, ordered like
// FindAll.
func (r *MemberRepository) FindAllWithTeam(ctx context.Context) ([]*entity.Member, error) {
	return r.FindMemberFetchJoin(ctx)
}

// FindReadOnlyByUsername looks a member up inside a read-only transaction.
func (r *MemberRepository) FindReadOnlyByUsername(ctx context.Context, username string) (*entity.Member, error) {
	var member *entity.Member
	err := readOnly(ctx, r.db, func(ctx context.Context, db bun.IDB) error {
		var err error
		member, err = r.findSingle(ctx, db, username, types.LockNone)
		return err
	})
	return member, err
}

// FindLockByUsername selects members FOR UPDATE. The lock lasts until the
// surrounding transaction ends, so call it on a repository from WithTx.
func (r *MemberRepository) FindLockByUsername(ctx context.Context, username string) ([]*entity.Member, error) {
	return r.FindWithLock(ctx, username, types.LockPessimisticWrite)
}

func (r *MemberRepository) FindWithLock(ctx context.Context, username string, mode types.LockMode) ([]*entity.Member, error) {
	if !mode.IsValid() {
		return nil, fmt.Errorf("repository: invalid lock mode %d", mode)
	}
	var members []*entity.Member
	q := r.selectMembers(&members).
		Where("?TableAlias.username = ?", username).
		OrderExpr("?PKs")
	q = withLock(q, r.db.Dialect().Name(), mode)
	if err := q.Scan(ctx); err != nil {
		return nil, translateError(err)
	}
	if members == nil {
		members = []*entity.Member{}
	}
	return members, nil
}

// FindMemberCustom is the hand-written query: every member, as plain SQL.
func (r *MemberRepository) FindMemberCustom(ctx context.Context) ([]*entity.Member, error) {
	members := []*entity.Member{}
	err := r.db.NewRaw("SELECT * FROM ? ORDER BY ?", bun.Ident("member"), bun.Ident("member_id")).
		Scan(ctx, &members)
	if err != nil {
		return nil, translateError(err)
	}
	return members, nil
}

func (r *MemberRepository) FindProjectionsByUsername(ctx context.Context, username string) ([]dto.UsernameOnly, error) {
	projections := []dto.UsernameOnly{}
	err := r.db.NewSelect().
		Model((*entity.Member)(nil)).
		Column("username", "age").
		Where("?TableAlias.username = ?", username).
		OrderExpr("?PKs").
		Scan(ctx, &projections)
	if err != nil {
		return nil, translateError(err)
	}
	return projections, nil
}

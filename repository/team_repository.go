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

	"github.com/tomoncle/datastudy/entity"
	"github.com/uptrace/bun"
)

type TeamRepository struct {
	Repository[entity.Team]
	db bun.IDB
}

func NewTeamRepository(db bun.IDB) *TeamRepository {
	return &TeamRepository{Repository: NewRepository[entity.Team](db), db: db}
}

func (r *TeamRepository) WithTx(tx bun.Tx) *TeamRepository {
	return NewTeamRepository(tx)
}

func (r *TeamRepository) FindByName(ctx context.Context, name string) ([]*entity.Team, error) {
	return r.Query(ctx, "?TableAlias.name = ?", name)
}

// FindWithMembers loads a team and its members, ordered by member id.
func (r *TeamRepository) FindWithMembers(ctx context.Context, id int64) (*entity.Team, error) {
	team := new(entity.Team)
	err := r.db.NewSelect().
		Model(team).
		Relation("Members", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.member_id")
		}).
		Where("?PKs = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	for _, m := range team.Members {
		m.Team = team
	}
	return team, nil
}

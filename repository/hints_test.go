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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// setupMockDB returns a Postgres flavoured bun.DB over sqlmock so that the
// generated SQL can be asserted.
func setupMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func memberRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"member_id", "username", "age", "team_id"}).
		AddRow(1, "member1", 10, nil)
}

func TestFindWithLock(t *testing.T) {
	tests := []struct {
		name   string
		mode   types.LockMode
		suffix string
	}{
		{name: "pessimistic write", mode: types.LockPessimisticWrite, suffix: `FOR UPDATE$`},
		{name: "pessimistic read", mode: types.LockPessimisticRead, suffix: `FOR SHARE$`},
		{name: "none", mode: types.LockNone, suffix: `ORDER BY "m"."member_id"$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewMemberRepository(db)

			mock.ExpectQuery(`SELECT .* FROM "member" AS "m" WHERE .*'member1'.* ` + tt.suffix).
				WillReturnRows(memberRows())

			members, err := repo.FindWithLock(context.Background(), "member1", tt.mode)
			require.NoError(t, err)
			require.Len(t, members, 1)
			assert.Equal(t, "member1", members[0].Username)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFindReadOnlyByUsername_RunsInTransaction(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMemberRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "member" AS "m" WHERE .*'member1'.* LIMIT 2$`).
		WillReturnRows(memberRows())
	mock.ExpectCommit()

	member, err := repo.FindReadOnlyByUsername(context.Background(), "member1")
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.EqualValues(t, 1, member.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_OnConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMemberRepository(db)

	mock.ExpectQuery(`INSERT INTO "member" .* ON CONFLICT \("member_id"\) DO UPDATE SET "age" = EXCLUDED\."age"`).
		WillReturnRows(sqlmock.NewRows([]string{"member_id"}).AddRow(1))

	member := entity.NewMember("member1", entity.WithAge(10))
	err := repo.Upsert(context.Background(), []string{"age"}, nil, member)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

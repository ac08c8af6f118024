//go:build integration
// +build integration

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/types"
	"github.com/uptrace/bun"
)

func setupPostgres(t *testing.T) *bun.DB {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("datastudy"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.Type = "postgres"
	cfg.ConnectionConfig.Host = host
	cfg.ConnectionConfig.Port = port.Int()
	cfg.ConnectionConfig.Username = "test"
	cfg.ConnectionConfig.Password = "test"
	cfg.ConnectionConfig.DBName = "datastudy"
	cfg.DataMigrateConfig.EnableForeignKey = true

	manager := database.NewDatabaseManager(cfg)
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))
	return manager.GetDB()
}

func TestPostgres_MemberRepository(t *testing.T) {
	ctx := context.Background()
	db := setupPostgres(t)
	members := NewMemberRepository(db)
	teams := NewTeamRepository(db)

	team := entity.NewTeam("teamA")
	_, err := teams.Save(ctx, team)
	require.NoError(t, err)
	assert.NotEmpty(t, team.CreatedBy)

	for i := 1; i <= 5; i++ {
		m := entity.NewMember(fmt.Sprintf("member%d", i), entity.WithAge(10), entity.WithTeam(team))
		_, err := members.Save(ctx, m)
		require.NoError(t, err)
	}

	page, err := members.FindByAge(ctx, 10, types.NewPageRequestWithSort(0, 3, types.Sort{types.Desc("username")}))
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages())
	assert.Equal(t, "member5", page.Content[0].Username)

	found, err := members.FindReadOnlyByUsername(ctx, "member1")
	require.NoError(t, err)
	require.NotNil(t, found)

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		locked, err := members.WithTx(tx).FindWithLock(ctx, "member1", types.LockPessimisticRead)
		if err != nil {
			return err
		}
		assert.Len(t, locked, 1)
		return nil
	})
	require.NoError(t, err)

	n, err := members.BulkAgePlus(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	require.NoError(t, members.Upsert(ctx, []string{"age"}, nil, &entity.Member{ID: found.ID, Username: "member1", Age: 99}))
	updated, err := members.FindByID(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, 99, updated.Age)
}

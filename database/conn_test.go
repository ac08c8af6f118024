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

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/entity"
)

func TestGlobalDatabase(t *testing.T) {
	ctx := context.Background()
	t.Cleanup(func() { _ = database.CloseDB() })

	_, err := database.InitDB(ctx, nil)
	require.Error(t, err)

	db, err := database.InitDB(ctx, database.DefaultConfig())
	require.NoError(t, err)
	assert.Same(t, db, database.GetDB())
	require.NotNil(t, database.GetDatabaseManager())

	status := database.GetHealthStatus(ctx)
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.MaxOpenConns)

	_, err = db.NewInsert().Model(entity.NewTeam("teamA")).Exec(ctx)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(ctx))
	assert.NotNil(t, database.GetDatabaseStats())

	require.NoError(t, database.CloseDB())
	assert.Nil(t, database.GetDB())
	assert.False(t, database.GetHealthStatus(ctx).Healthy)
	assert.Error(t, database.RunMigrations(ctx))
}

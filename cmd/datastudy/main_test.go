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

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/internal/dbtest"
	"github.com/tomoncle/datastudy/repository"
)

func TestSeedMembers(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	require.NoError(t, seedMembers(ctx, db, 0))
	require.NoError(t, seedMembers(ctx, db, 100))

	repo := repository.NewMemberRepository(db)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 100, count)

	found, err := repo.FindUser(ctx, "user42", 42)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.IsType(t, &entity.Member{}, found[0])
}

func TestConfigFromContext(t *testing.T) {
	cfg := configFromContext(context.Background())
	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
}

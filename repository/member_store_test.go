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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/internal/dbtest"
)

func TestMemberStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemberStore(dbtest.Open(t))

	t.Run("save and find", func(t *testing.T) {
		member, err := store.Save(ctx, entity.NewMember("memberA"))
		require.NoError(t, err)

		found, err := store.Find(ctx, member.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "memberA", found.Username)

		missing, err := store.Find(ctx, member.ID+1)
		require.NoError(t, err)
		assert.Nil(t, missing)

		_, err = store.FindByID(ctx, member.ID+1)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, store.Delete(ctx, member))
	})

	t.Run("crud", func(t *testing.T) {
		member1, err := store.Save(ctx, entity.NewMember("member1"))
		require.NoError(t, err)
		member2, err := store.Save(ctx, entity.NewMember("member2"))
		require.NoError(t, err)

		all, err := store.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)

		require.NoError(t, store.Delete(ctx, member1))
		require.NoError(t, store.Delete(ctx, member2))
		count, err = store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("username and age", func(t *testing.T) {
		for _, m := range []*entity.Member{
			entity.NewMember("AAA", entity.WithAge(10)),
			entity.NewMember("AAA", entity.WithAge(20)),
		} {
			_, err := store.Save(ctx, m)
			require.NoError(t, err)
		}
		result, err := store.FindByUsernameAndAgeGreaterThan(ctx, "AAA", 15)
		require.NoError(t, err)
		require.Len(t, result, 1)
		assert.Equal(t, 20, result[0].Age)
	})

	t.Run("paging", func(t *testing.T) {
		for _, name := range []string{"member1", "member2", "member3", "member4", "member5"} {
			_, err := store.Save(ctx, entity.NewMember(name, entity.WithAge(30)))
			require.NoError(t, err)
		}

		members, err := store.FindByPage(ctx, 30, 0, 3)
		require.NoError(t, err)
		require.Len(t, members, 3)
		assert.Equal(t, "member5", members[0].Username)
		assert.Equal(t, "member3", members[2].Username)

		total, err := store.TotalCount(ctx, 30)
		require.NoError(t, err)
		assert.EqualValues(t, 5, total)
	})
}

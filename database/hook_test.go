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

package database

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
)

func TestQueryHook(t *testing.T) {
	ctx := context.Background()
	event := func(query string, err error) *bun.QueryEvent {
		return &bun.QueryEvent{Query: query, Err: err, StartTime: time.Now()}
	}

	t.Run("verbose", func(t *testing.T) {
		var buf bytes.Buffer
		h := NewQueryHook(WithQueryHookWriter(&buf), WithQueryHookEnv("DATASTUDY_TEST_SQL_UNSET"))
		h.AfterQuery(ctx, event(`SELECT * FROM "member"`, nil))
		assert.Contains(t, buf.String(), `SELECT * FROM "member"`)
		assert.Contains(t, buf.String(), "[BUN]")
	})

	t.Run("errors only", func(t *testing.T) {
		var buf bytes.Buffer
		t.Setenv("DATASTUDY_TEST_SQL", "1")
		h := NewQueryHook(WithQueryHookWriter(&buf), WithQueryHookEnv("DATASTUDY_TEST_SQL"))
		h.AfterQuery(ctx, event("SELECT 1", nil))
		h.AfterQuery(ctx, event("SELECT 2", sql.ErrNoRows))
		assert.Empty(t, buf.String())

		h.AfterQuery(ctx, event("INSERT INTO member", errors.New("boom")))
		assert.Contains(t, buf.String(), "INSERT INTO member")
		assert.Contains(t, buf.String(), "boom")
	})

	t.Run("disabled by env", func(t *testing.T) {
		var buf bytes.Buffer
		t.Setenv("DATASTUDY_TEST_SQL", "0")
		h := NewQueryHook(WithQueryHookWriter(&buf), WithQueryHookEnv("DATASTUDY_TEST_SQL"))
		h.AfterQuery(ctx, event("SELECT 1", errors.New("boom")))
		assert.Empty(t, buf.String())
	})

	t.Run("silent", func(t *testing.T) {
		var buf bytes.Buffer
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
		h := NewQueryHook(WithQueryHookWriter(&buf), WithQueryHookVerbose(true), WithQueryHookEnv("DATASTUDY_TEST_SQL_UNSET"))
		h.AfterQuery(ctx, event("SELECT 1", nil))
		assert.Empty(t, buf.String())
	})
}

func TestMetricsHook(t *testing.T) {
	ctx := context.Background()
	ok := queryCounter.WithLabelValues("DELETE", "ok")
	failed := queryCounter.WithLabelValues("DELETE", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	var h MetricsHook
	h.AfterQuery(ctx, &bun.QueryEvent{Query: "DELETE FROM member", StartTime: time.Now()})
	h.AfterQuery(ctx, &bun.QueryEvent{Query: "DELETE FROM member", StartTime: time.Now(), Err: sql.ErrNoRows})
	h.AfterQuery(ctx, &bun.QueryEvent{Query: "DELETE FROM member", StartTime: time.Now(), Err: errors.New("boom")})

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

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

// Package dbtest opens migrated in-memory databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datastudy/database"
	_ "github.com/tomoncle/datastudy/entity" // registers member and team
	"github.com/uptrace/bun"
)

// Open returns a fresh in-memory SQLite database with the schema applied.
// It is closed when the test ends.
func Open(t testing.TB) *bun.DB {
	t.Helper()
	return OpenWithConfig(t, database.DefaultConfig())
}

// OpenWithConfig is Open with explicit settings. The connection settings
// must select SQLite in memory.
func OpenWithConfig(t testing.TB, cfg *database.Config) *bun.DB {
	t.Helper()
	ctx := context.Background()

	manager := database.NewDatabaseManager(cfg)
	require.NoError(t, manager.Connect(ctx))
	t.Cleanup(func() { _ = manager.Disconnect() })
	require.NoError(t, manager.RunMigrations(ctx))
	return manager.GetDB()
}

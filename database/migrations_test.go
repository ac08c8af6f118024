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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/internal/dbtest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestMigrationManager(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	mm := database.NewMigrationManager(db, nil, nil)

	applied, err := mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, "001", applied[0].Version)

	// a second run is a no-op
	require.NoError(t, mm.RunMigrations(ctx))
	applied, err = mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, 1)

	_, err = db.NewInsert().Model(entity.NewTeam("teamA")).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, mm.RollbackMigration(ctx, "001"))
	_, err = db.NewSelect().Model((*entity.Team)(nil)).Count(ctx)
	assert.True(t, database.IsSqlErrorOf(err, database.NoTableErr), "table dropped: %v", err)

	assert.Error(t, mm.RollbackMigration(ctx, "042"))
}

func TestMigrationManager_ForeignKeysAndSeed(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "common", "001_teams.sql"), `
-- demo teams
INSERT INTO team (name) VALUES ('teamA');
INSERT INTO team (name) VALUES ('teamB');
`)
	writeFile(t, filepath.Join(root, "environments", "test", "001_members.sql"), `
INSERT INTO member (username, age, team_id) VALUES ('{{.ENVIRONMENT}}-member', 10, 1);
`)
	writeFile(t, filepath.Join(root, "environments", "prod", "001_members.sql"), `
INSERT INTO member (username, age) VALUES ('prod-only', 99);
`)

	cfg := database.DefaultConfig()
	cfg.DataMigrateConfig.EnableForeignKey = true
	cfg.DataInitConfig.AutoInitOnMigration = true
	cfg.DataInitConfig.Filepath = root
	cfg.DataInitConfig.Environment = "test"
	cfg.DataInitConfig.ExpandTemplates = true

	db := dbtest.OpenWithConfig(t, cfg)

	var names []string
	require.NoError(t, db.NewSelect().Model((*entity.Member)(nil)).Column("username").Scan(ctx, &names))
	assert.Equal(t, []string{"test-member"}, names)

	teams, err := db.NewSelect().Model((*entity.Team)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, teams)

	applied, err := database.NewMigrationManager(db, cfg, nil).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 3)
	assert.Equal(t, "003", applied[2].Version)

	_, err = db.ExecContext(ctx, "INSERT INTO member (username, age, team_id) VALUES ('orphan', 1, 999)")
	assert.Error(t, err, "unknown team_id is rejected")

	_, err = db.NewDelete().Model((*entity.Team)(nil)).Where("team_id = ?", 1).Exec(ctx)
	require.NoError(t, err)
	var member entity.Member
	require.NoError(t, db.NewSelect().Model(&member).Where("username = ?", "test-member").Scan(ctx))
	assert.Nil(t, member.TeamID, "team delete sets team_id to NULL")
}

func TestSQLInitManager(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "common", "010_second.sql"), "INSERT INTO team (name) VALUES ('second');\n")
	writeFile(t, filepath.Join(root, "common", "002_first.sql"), "INSERT INTO team (name) VALUES ('first');\n")
	writeFile(t, filepath.Join(root, "common", "notes.txt"), "ignored")
	writeFile(t, filepath.Join(root, "environments", "dev", "broken.sql"), "INSERT INTO nowhere VALUES (1);\n")

	s := database.NewSQLInitManager(db, "")
	s.SetSQLRootPath(root)

	files, err := s.GetSQLFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "002_first.sql", files[0].Name)
	assert.Equal(t, "010_second.sql", files[1].Name)

	require.NoError(t, s.ExecuteInitialization(ctx))
	history := s.GetExecutionHistory()
	require.Len(t, history, 2)
	assert.True(t, history[0].Success)
	assert.EqualValues(t, 1, history[0].RowsAffected)

	var names []string
	require.NoError(t, db.NewSelect().Model((*entity.Team)(nil)).Column("name").OrderExpr("team_id").Scan(ctx, &names))
	assert.Equal(t, []string{"first", "second"}, names)

	broken := database.NewSQLInitManager(db, "dev")
	broken.SetSQLRootPath(root)
	err = broken.ExecuteInitialization(ctx)
	assert.ErrorContains(t, err, "broken.sql")

	missing := database.NewSQLInitManager(db, "dev")
	missing.SetSQLRootPath(filepath.Join(root, "absent"))
	assert.NoError(t, missing.ExecuteInitialization(ctx))
}

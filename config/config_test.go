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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
	assert.Equal(t, 5, cfg.HTTP.DefaultPageSize)
	assert.Equal(t, 2000, cfg.HTTP.MaxPageSize)
	assert.Equal(t, "sqlite", cfg.Database.ConnectionConfig.Type)
	assert.True(t, cfg.Database.ConnectionConfig.IsMemory())
	assert.True(t, cfg.Database.DataMigrateConfig.EnableMigrateOnStartup)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: demo
http:
  listen_addr: ":9090"
  default_page_size: 10
  shutdown_timeout: 5s
log:
  level: debug
  format: JSON
database:
  connection:
    type: postgres
    host: db.internal
    port: 5432
  migrate:
    enable_foreign_key: true
seed:
  members: 100
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATASTUDY_HTTP_MAX_PAGE_SIZE=50\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DATASTUDY_HTTP_MAX_PAGE_SIZE") })
	t.Setenv("DATASTUDY_HTTP_LISTEN_ADDR", ":7070")
	t.Setenv("DATASTUDY_LOG_LOGGERS", "DATABASE:warn,WEB:debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, ":7070", cfg.HTTP.ListenAddr)
	assert.Equal(t, 10, cfg.HTTP.DefaultPageSize)
	assert.Equal(t, 50, cfg.HTTP.MaxPageSize)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, map[string]string{"DATABASE": "warn", "WEB": "debug"}, cfg.Log.Loggers)
	assert.Equal(t, "postgres", cfg.Database.ConnectionConfig.Type)
	assert.Equal(t, "db.internal", cfg.Database.ConnectionConfig.Host)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectionConfig.ConnectTimeout)
	assert.True(t, cfg.Database.DataMigrateConfig.EnableForeignKey)
	assert.Equal(t, 100, cfg.Seed.Members)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HTTP.ListenAddr = ""
	cfg.HTTP.DefaultPageSize = 0
	cfg.Log.Format = "xml"
	cfg.Seed.Members = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "listen_addr")
	assert.ErrorContains(t, err, "default_page_size")
	assert.ErrorContains(t, err, "log.format")
	assert.ErrorContains(t, err, "seed.members")

	cfg = DefaultConfig()
	cfg.HTTP.MaxPageSize = 3000
	assert.ErrorContains(t, cfg.Validate(), "max_page_size")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

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
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// AbstractDatabaseManager defines the operations for managing a database
// connection, running migrations, initializing data, and reporting health.
type AbstractDatabaseManager interface {
	Connect(ctx context.Context) error
	Disconnect() error
	Reconnect(ctx context.Context) error
	Ping(ctx context.Context) error
	HealthCheck(ctx context.Context) *HealthStatus
	GetDB() *bun.DB
	GetSQLDB() *sql.DB
	RunMigrations(ctx context.Context) error
	InitData(ctx context.Context) error
	GetStats() *DBStats
	SetLogger(logger Logger)
}

// HealthStatus holds the result of a health check against the database.
type HealthStatus struct {
	Healthy       bool          `json:"healthy"`
	Connected     bool          `json:"connected"`
	ResponseTime  time.Duration `json:"response_time"`
	ActiveConns   int           `json:"active_conns"`
	IdleConns     int           `json:"idle_conns"`
	MaxOpenConns  int           `json:"max_open_conns"`
	LastError     string        `json:"last_error,omitempty"`
	LastCheckTime time.Time     `json:"last_check_time"`
}

// DBStats mirrors database/sql stats returned by the manager.
type DBStats struct {
	MaxOpenConns      int           `json:"max_open_conns"`
	OpenConns         int           `json:"open_conns"`
	InUse             int           `json:"in_use"`
	Idle              int           `json:"idle"`
	WaitCount         int64         `json:"wait_count"`
	WaitDuration      time.Duration `json:"wait_duration"`
	MaxIdleClosed     int64         `json:"max_idle_closed"`
	MaxIdleTimeClosed int64         `json:"max_idle_time_closed"`
	MaxLifetimeClosed int64         `json:"max_lifetime_closed"`
}

// MemoryDBName selects a private in-memory SQLite database.
const MemoryDBName = ":memory:"

// ConnectionConfig describes how to connect to a database and tune its pool.
type ConnectionConfig struct {
	Type                string        `json:"type" yaml:"type"` // postgres, mysql, sqlite
	Host                string        `json:"host" yaml:"host"`
	Port                int           `json:"port" yaml:"port"`
	Username            string        `json:"username" yaml:"username"`
	Password            string        `json:"password" yaml:"password"`
	DBName              string        `json:"dbname" yaml:"dbname"`
	SSLMode             string        `json:"sslmode" yaml:"sslmode"`
	MaxIdleConns        int           `json:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns        int           `json:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime     time.Duration `json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
	ConnMaxIdleTime     time.Duration `json:"conn_max_idle_time" yaml:"conn_max_idle_time"`
	ConnectTimeout      time.Duration `json:"connect_timeout" yaml:"connect_timeout"`
	ReadTimeout         time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout        time.Duration `json:"write_timeout" yaml:"write_timeout"`
	EnableReconnect     bool          `json:"enable_reconnect" yaml:"enable_reconnect"`
	ReconnectInterval   time.Duration `json:"reconnect_interval" yaml:"reconnect_interval"`
	MaxReconnectTries   int           `json:"max_reconnect_tries" yaml:"max_reconnect_tries"`
	HealthCheckInterval time.Duration `json:"health_check_interval" yaml:"health_check_interval"`
	EnableQueryLog      bool          `json:"enable_query_log" yaml:"enable_query_log"`
	EnableMetrics       bool          `json:"enable_metrics" yaml:"enable_metrics"`
	SlowQueryTime       time.Duration `json:"slow_query_time" yaml:"slow_query_time"`
}

// IsMemory reports whether the config points at an in-memory SQLite database.
func (c *ConnectionConfig) IsMemory() bool {
	return isSQLite(c.Type) && (c.DBName == MemoryDBName || c.DBName == "")
}

func isSQLite(typ string) bool {
	return typ == "sqlite" || typ == "sqlite3"
}

// DataMigrateConfig controls schema migration behavior on startup.
type DataMigrateConfig struct {
	EnableMigrateOnStartup bool   `json:"enable_migrate_on_startup" yaml:"enable_migrate_on_startup"`
	EnableForeignKey       bool   `json:"enable_foreign_key" yaml:"enable_foreign_key"`
	ForeignKeyFile         string `json:"foreign_key_file" yaml:"foreign_key_file"`
}

// DataInitConfig controls data seeding behavior and environment selection.
type DataInitConfig struct {
	AutoInitOnStartup   bool   `json:"auto_init_on_startup" yaml:"auto_init_on_startup"`
	AutoInitOnMigration bool   `json:"auto_init_on_migration" yaml:"auto_init_on_migration"`
	Filepath            string `json:"filepath" yaml:"filepath"`
	Environment         string `json:"environment" yaml:"environment"`
	ExpandTemplates     bool   `json:"expand_templates" yaml:"expand_templates"`
}

// Config aggregates connection, migration, and data initialization settings.
type Config struct {
	ConnectionConfig  ConnectionConfig  `json:"connection_config" yaml:"connection"`
	DataMigrateConfig DataMigrateConfig `json:"data_migrate_config" yaml:"migrate"`
	DataInitConfig    DataInitConfig    `json:"data_init_config" yaml:"init"`
}

// DefaultConnectionConfig returns a connection config with sensible defaults.
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Type:                "sqlite",
		DBName:              MemoryDBName,
		MaxIdleConns:        10,
		MaxOpenConns:        100,
		ConnMaxLifetime:     time.Hour,
		ConnMaxIdleTime:     time.Minute * 30,
		ConnectTimeout:      time.Second * 10,
		ReadTimeout:         time.Second * 30,
		WriteTimeout:        time.Second * 30,
		EnableReconnect:     true,
		ReconnectInterval:   time.Second * 5,
		MaxReconnectTries:   3,
		HealthCheckInterval: 0,
		EnableQueryLog:      false,
		SlowQueryTime:       time.Second * 2,
	}
}

// DefaultConfig returns an in-memory SQLite configuration that migrates on
// startup, the setup used by the demo server and the tests.
func DefaultConfig() *Config {
	return &Config{
		ConnectionConfig: *DefaultConnectionConfig(),
		DataMigrateConfig: DataMigrateConfig{
			EnableMigrateOnStartup: true,
		},
		DataInitConfig: DataInitConfig{
			Filepath:    "configs/sql",
			Environment: "dev",
		},
	}
}

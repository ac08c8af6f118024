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
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

// ErrMemoryReconnect is returned by Reconnect for in-memory SQLite, where a
// fresh connection would be a new, empty database.
var ErrMemoryReconnect = errors.New("in-memory database cannot be reconnected")

// sqliteParams turns on foreign key enforcement for every pooled connection.
// modernc reads _pragma, mattn reads _foreign_keys.
const sqliteParams = "?_pragma=foreign_keys(1)&_foreign_keys=1"

// defaultDatabaseManager owns one *bun.DB for the lifetime of a connection.
// Reconnect recycles the pool underneath it, so handles returned by GetDB
// stay valid until Disconnect.
type defaultDatabaseManager struct {
	settings        *Config
	config          *ConnectionConfig
	db              *bun.DB
	sqlDB           *sql.DB
	logger          Logger
	mu              sync.RWMutex
	connected       bool
	lastError       error
	lastHealthCheck time.Time
	healthStatus    *HealthStatus
	reconnectTries  int
	stopHealthCheck chan struct{}
	healthCheckDone chan struct{}
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun. A nil
// settings value selects DefaultConfig.
func NewDatabaseManager(settings *Config) AbstractDatabaseManager {
	if settings == nil {
		settings = DefaultConfig()
	}
	return &defaultDatabaseManager{
		settings:     settings,
		config:       &settings.ConnectionConfig,
		healthStatus: &HealthStatus{},
	}
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.connected && dm.db != nil {
		return nil
	}

	var err error
	dm.sqlDB, dm.db, err = dm.createConnection()
	if err != nil {
		dm.lastError = err
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	dm.configureConnectionPool(dm.sqlDB)

	ctxTimeout, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()

	if err := dm.db.PingContext(ctxTimeout); err != nil {
		dm.lastError = err
		_ = dm.db.Close()
		dm.db, dm.sqlDB = nil, nil
		return fmt.Errorf("database connection test failed: %w", err)
	}

	dm.db.RegisterModel(RegisteredModelInstances()...)

	dm.connected = true
	dm.lastError = nil
	dm.reconnectTries = 0

	if dm.config.HealthCheckInterval > 0 && dm.stopHealthCheck == nil {
		dm.stopHealthCheck = make(chan struct{})
		dm.healthCheckDone = make(chan struct{})
		go dm.healthCheckLoop(dm.stopHealthCheck, dm.healthCheckDone)
	}

	if dm.logger != nil {
		dm.logger.Info("Database connected", "type", dm.config.Type, "host", dm.config.Host, "dbname", dm.config.DBName)
	}
	return nil
}

func (dm *defaultDatabaseManager) createConnection() (*sql.DB, *bun.DB, error) {
	var sqlDB *sql.DB
	var db *bun.DB
	var err error

	if dm.config.ConnectTimeout.Seconds() <= 0 {
		dm.config.ConnectTimeout = 30 * time.Second
	}

	switch dm.config.Type {
	case "mysql":
		sqlDB, db, err = dm.createMySQLConnection()
	case "postgres", "postgresql":
		sqlDB, db, err = dm.createPostgreSQLConnection()
	case "sqlite", "sqlite3":
		sqlDB, db, err = dm.createSQLiteConnection()
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}

	if err != nil {
		return nil, nil, err
	}

	// BUNDEBUG=1 or 2 turns on bun's own tracer regardless of configuration.
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(false),
		bundebug.FromEnv("BUNDEBUG"),
	))
	if dm.config.EnableQueryLog {
		db.AddQueryHook(NewQueryHook())
	}
	if dm.config.EnableMetrics {
		db.AddQueryHook(MetricsHook{})
	}

	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(&slowQueryHook{
			slowTime: dm.config.SlowQueryTime,
			logger:   dm.logger,
		})
	}

	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createMySQLConnection() (*sql.DB, *bun.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s&readTimeout=%s&writeTimeout=%s",
		dm.config.Username,
		dm.config.Password,
		dm.config.Host,
		dm.config.Port,
		dm.config.DBName,
		dm.config.ConnectTimeout,
		dm.config.ReadTimeout,
		dm.config.WriteTimeout,
	)

	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, mysqldialect.New())
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createPostgreSQLConnection() (*sql.DB, *bun.DB, error) {
	sslMode := dm.config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&connect_timeout=%d",
		dm.config.Username,
		dm.config.Password,
		dm.config.Host,
		dm.config.Port,
		dm.config.DBName,
		sslMode,
		int(dm.config.ConnectTimeout.Seconds()),
	)

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, pgdialect.New())
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) createSQLiteConnection() (*sql.DB, *bun.DB, error) {
	dsn := dm.config.DBName
	switch {
	case dm.config.IsMemory():
		dsn = MemoryDBName
	case !strings.HasSuffix(dsn, ".db"):
		dsn += ".db"
	}

	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn+sqliteParams)
	if err != nil {
		return nil, nil, err
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	return sqlDB, db, nil
}

func (dm *defaultDatabaseManager) configureConnectionPool(sqlDB *sql.DB) {
	if sqlDB == nil {
		return
	}

	if dm.config.IsMemory() {
		// every connection to ":memory:" is a separate database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return
	}
	sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)
}

func (dm *defaultDatabaseManager) Disconnect() error {
	dm.mu.Lock()
	stop, done := dm.stopHealthCheck, dm.healthCheckDone
	dm.stopHealthCheck, dm.healthCheckDone = nil, nil
	dm.mu.Unlock()

	// the loop takes dm.mu, so wait for it without holding the lock
	if stop != nil {
		close(stop)
		<-done
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.db != nil {
		err := dm.db.Close()
		dm.db = nil
		dm.sqlDB = nil
		dm.connected = false

		if dm.logger != nil {
			if err != nil {
				dm.logger.Error("Failed to close database connection", "error", err)
			} else {
				dm.logger.Info("Database connection closed")
			}
		}

		return err
	}

	return nil
}

// Reconnect closes the idle pooled connections and pings through a new one.
// Without a connection it behaves like Connect.
func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	dm.mu.RLock()
	db, sqlDB := dm.db, dm.sqlDB
	dm.mu.RUnlock()

	if db == nil {
		return dm.Connect(ctx)
	}
	if dm.config.IsMemory() {
		return ErrMemoryReconnect
	}

	if dm.logger != nil {
		dm.logger.Info("Attempting to reconnect to the database")
	}

	sqlDB.SetMaxIdleConns(0)
	dm.configureConnectionPool(sqlDB)

	ctxTimeout, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()
	err := db.PingContext(ctxTimeout)

	dm.mu.Lock()
	defer dm.mu.Unlock()
	if err != nil {
		dm.connected = false
		dm.lastError = err
		return fmt.Errorf("database reconnect failed: %w", err)
	}
	dm.connected = true
	dm.lastError = nil
	dm.reconnectTries = 0
	return nil
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	dm.mu.RLock()
	db := dm.db
	dm.mu.RUnlock()

	if db == nil {
		return fmt.Errorf("database not connected")
	}

	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	dm.mu.RLock()
	db, sqlDB, connected := dm.db, dm.sqlDB, dm.connected
	dm.mu.RUnlock()

	start := time.Now()
	status := &HealthStatus{
		LastCheckTime: start,
		Connected:     connected,
	}

	if db == nil {
		status.Healthy = false
		status.LastError = "Database not initialized"
		return status
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()

	err := db.PingContext(ctxTimeout)
	status.ResponseTime = time.Since(start)

	if err != nil {
		status.Healthy = false
		status.Connected = false
		status.LastError = err.Error()
	} else {
		status.Healthy = true
		status.Connected = true
	}

	stats := sqlDB.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections

	dm.mu.Lock()
	dm.lastError = err
	dm.healthStatus = status
	dm.lastHealthCheck = start
	dm.mu.Unlock()

	return status
}

func (dm *defaultDatabaseManager) healthCheckLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(dm.config.HealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
			status := dm.HealthCheck(ctx)
			cancel()
			if !status.Healthy && dm.config.EnableReconnect {
				dm.handleReconnect(stop)
			}

		case <-stop:
			return
		}
	}
}

func (dm *defaultDatabaseManager) handleReconnect(stop <-chan struct{}) {
	if dm.config.IsMemory() {
		if dm.logger != nil {
			dm.logger.Warn("In-memory database is unhealthy, not reconnecting")
		}
		return
	}

	dm.mu.Lock()
	if dm.reconnectTries >= dm.config.MaxReconnectTries {
		tries := dm.reconnectTries
		dm.mu.Unlock()
		if dm.logger != nil {
			dm.logger.Error("Max reconnect attempts reached, stopping", "tries", tries)
		}
		return
	}
	dm.reconnectTries++
	try := dm.reconnectTries
	dm.mu.Unlock()

	if dm.logger != nil {
		dm.logger.Info("Starting database reconnect", "try", try)
	}

	timer := time.NewTimer(dm.config.ReconnectInterval)
	defer timer.Stop()
	select {
	case <-stop:
		return
	case <-timer.C:
	}

	ctx, cancel := context.WithTimeout(context.Background(), dm.config.ConnectTimeout)
	defer cancel()

	if err := dm.Reconnect(ctx); err != nil {
		if dm.logger != nil {
			dm.logger.Error("Reconnect failed", "error", err, "try", try)
		}
	} else if dm.logger != nil {
		dm.logger.Info("Reconnect succeeded")
	}
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	dm.mu.RLock()
	sqlDB := dm.sqlDB
	dm.mu.RUnlock()

	if sqlDB == nil {
		return &DBStats{}
	}

	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}

	return NewMigrationManager(db, dm.settings, dm.logger).RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) InitData(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return NewMigrationManager(db, dm.settings, dm.logger).InitData(ctx)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}

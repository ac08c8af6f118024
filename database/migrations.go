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
	"fmt"
	"os"
	"reflect"
	"slices"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// MigrationManager coordinates schema migrations and data initialization.
type MigrationManager struct {
	db       *bun.DB
	logger   Logger
	settings *Config
}

// Migration represents an applied migration record stored in the database.
type Migration struct {
	bun.BaseModel `bun:"table:migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version with up/down functions.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// NewMigrationManager constructs a MigrationManager. A nil settings value
// selects DefaultConfig.
func NewMigrationManager(db *bun.DB, settings *Config, logger Logger) *MigrationManager {
	if settings == nil {
		settings = DefaultConfig()
	}
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{
		db:       db,
		logger:   logger,
		settings: settings,
	}
}

// SetEnvironment sets the environment used when initializing data from SQL.
func (mm *MigrationManager) SetEnvironment(env string) {
	mm.settings.DataInitConfig.Environment = env
}

// RunMigrations creates the migration tracking table if needed and executes
// every pending migration in ascending version order. Statement tracing is
// muted unless BUNDEBUG_MIGRATION is set.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if err := mm.createMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, migration := range mm.getAllMigrations() {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}
	mm.logger.Info("Database migrations completed")
	return nil
}

func (mm *MigrationManager) createMigrationTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	migrations := []MigrationItem{
		{
			Version:     "001",
			Name:        "create_base_tables",
			Description: "Create base table structure",
			Up:          mm.createBaseTables,
			Down:        mm.dropBaseTables,
		},
	}
	if mm.settings.DataMigrateConfig.EnableForeignKey {
		migrations = append(migrations, MigrationItem{
			Version:     "002",
			Name:        "add_foreign_keys",
			Description: "Add table foreign key constraints",
			Up:          mm.addForeignKeys,
			Down:        mm.dropForeignKeys,
		})
	}
	if mm.settings.DataInitConfig.AutoInitOnMigration {
		migrations = append(migrations, MigrationItem{
			Version:     "003",
			Name:        "seed_initial_data",
			Description: "Seed initial data",
			Up:          mm.seedInitialData,
		})
	}
	slices.SortFunc(migrations, func(a, b MigrationItem) int {
		if a.Version < b.Version {
			return -1
		}
		if a.Version > b.Version {
			return 1
		}
		return 0
	})
	return migrations
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := migration.Up(ctx, tx); err != nil {
			return err
		}
		record := &Migration{
			Version:     migration.Version,
			Name:        migration.Name,
			AppliedAt:   time.Now(),
			Description: migration.Description,
		}
		_, err := tx.NewInsert().Model(record).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	mm.logger.Info("Migration executed successfully", "version", migration.Version, "name", migration.Name)
	return nil
}

func (mm *MigrationManager) createBaseTables(ctx context.Context, db bun.IDB) error {
	var fkManager *ForeignKeyManager
	if mm.settings.DataMigrateConfig.EnableForeignKey && db.Dialect().Name() == dialect.SQLite {
		fkManager = mm.foreignKeyManager()
	}
	for _, model := range RegisteredModelInstances() {
		q := db.NewCreateTable().
			Model(model).
			IfNotExists()
		if fkManager != nil {
			table := db.Dialect().Tables().Get(modelType(model))
			for _, clause := range fkManager.CreateTableClauses(table.Name) {
				q = q.ForeignKey(clause)
			}
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %s: %w", getModelName(model), err)
		}
	}
	return nil
}

func (mm *MigrationManager) dropBaseTables(ctx context.Context, db bun.IDB) error {
	models := RegisteredModelInstances()
	for i := len(models) - 1; i >= 0; i-- {
		_, err := db.NewDropTable().
			Model(models[i]).
			IfExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop table %s: %w", getModelName(models[i]), err)
		}
	}
	return nil
}

func (mm *MigrationManager) foreignKeyManager() *ForeignKeyManager {
	configPath := mm.settings.DataMigrateConfig.ForeignKeyFile
	if configPath == "" {
		return NewForeignKeyManager(mm.logger)
	}
	fkManager, err := NewConfigurableForeignKeyManager(mm.logger, configPath)
	if err != nil {
		mm.logger.Warn("Falling back to code-defined foreign keys", "config_path", configPath, "error", err)
		return NewForeignKeyManager(mm.logger)
	}
	mm.logger.Debug("Managing foreign key constraints using config file", "config_path", configPath)
	return fkManager
}

func (mm *MigrationManager) addForeignKeys(ctx context.Context, db bun.IDB) error {
	fkManager := mm.foreignKeyManager()
	if errs := fkManager.ValidateConstraints(); len(errs) > 0 {
		for _, err := range errs {
			mm.logger.Debug("Foreign key constraint validation failed", "error", err)
		}
		return fmt.Errorf("foreign key constraint validation failed, %d errors in total", len(errs))
	}
	return fkManager.AddAllForeignKeys(ctx, db)
}

func (mm *MigrationManager) dropForeignKeys(ctx context.Context, db bun.IDB) error {
	return mm.foreignKeyManager().DropAllForeignKeys(ctx, db)
}

// InitData executes the configured SQL seed files outside of the migration
// bookkeeping.
func (mm *MigrationManager) InitData(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	return mm.seedInitialData(ctx, mm.db)
}

func (mm *MigrationManager) seedInitialData(ctx context.Context, db bun.IDB) error {
	initCfg := mm.settings.DataInitConfig
	sqlManager := NewSQLInitManager(db, initCfg.Environment)
	sqlManager.SetLogger(mm.logger)
	sqlManager.SetExpandTemplates(initCfg.ExpandTemplates)
	if initCfg.Filepath != "" {
		sqlManager.SetSQLRootPath(initCfg.Filepath)
	}

	mm.logger.Info("Starting data initialization using SQL files", "environment", initCfg.Environment)
	if err := sqlManager.ExecuteInitialization(ctx); err != nil {
		return fmt.Errorf("SQL file initialization failed: %w", err)
	}
	mm.logger.Info("SQL file initialization completed")
	return nil
}

func modelType(model interface{}) reflect.Type {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func getModelName(model interface{}) string {
	return modelType(model).Name()
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}

// RollbackMigration runs the Down step of an applied migration and removes
// its record.
func (mm *MigrationManager) RollbackMigration(ctx context.Context, version string) error {
	idx := slices.IndexFunc(mm.getAllMigrations(), func(m MigrationItem) bool {
		return m.Version == version
	})
	if idx < 0 {
		return fmt.Errorf("unknown migration version %s", version)
	}
	migration := mm.getAllMigrations()[idx]
	if migration.Down == nil {
		return fmt.Errorf("migration %s cannot be rolled back", version)
	}

	err := mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := migration.Down(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*Migration)(nil)).
			Where("version = ?", version).
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to roll back migration %s: %w", version, err)
	}
	mm.logger.Info("Migration rolled back", "version", version, "name", migration.Name)
	return nil
}

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
	"slices"
	"strings"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"gopkg.in/yaml.v3"
)

var (
	codeForeignKeys   []ForeignKeyConstraint
	codeForeignKeysMu sync.RWMutex
)

var validReferentialActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// RegisterForeignKey adds a code-defined constraint, used when no foreign key
// file is configured.
func RegisterForeignKey(fk ForeignKeyConstraint) {
	codeForeignKeysMu.Lock()
	defer codeForeignKeysMu.Unlock()
	codeForeignKeys = append(codeForeignKeys, fk)
}

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string `yaml:"table"`
	Column          string `yaml:"column"`
	ReferenceTable  string `yaml:"reference_table"`
	ReferenceColumn string `yaml:"reference_column"`
	OnDelete        string `yaml:"on_delete"` // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string `yaml:"on_update"`
	ConstraintName  string `yaml:"constraint_name"`
	Description     string `yaml:"description"`
}

// ForeignKeyConfig is the YAML document listing foreign key constraints.
type ForeignKeyConfig struct {
	ForeignKeys []ForeignKeyConstraint `yaml:"foreign_keys"`
}

// GenerateConstraintName returns the explicit name or a derived name.
func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// referenceClause renders the part shared by ALTER TABLE and CREATE TABLE.
func (fk *ForeignKeyConstraint) referenceClause() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(%s) REFERENCES %s (%s)", fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE " + strings.ToUpper(fk.OnDelete))
	}
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE " + strings.ToUpper(fk.OnUpdate))
	}
	return b.String()
}

// GenerateSQL returns the ALTER TABLE statement to add the constraint.
func (fk *ForeignKeyConstraint) GenerateSQL() string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY %s",
		fk.Table, fk.GenerateConstraintName(), fk.referenceClause())
}

// ForeignKeyManager manages adding and validating foreign key constraints.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager creates a manager with the code-defined constraints.
func NewForeignKeyManager(logger Logger) *ForeignKeyManager {
	codeForeignKeysMu.RLock()
	defer codeForeignKeysMu.RUnlock()
	return &ForeignKeyManager{
		constraints: slices.Clone(codeForeignKeys),
		logger:      logger,
	}
}

// NewConfigurableForeignKeyManager loads constraints from a YAML file.
func NewConfigurableForeignKeyManager(logger Logger, path string) (*ForeignKeyManager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read foreign key config: %w", err)
	}
	var cfg ForeignKeyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse foreign key config %s: %w", path, err)
	}
	return &ForeignKeyManager{constraints: cfg.ForeignKeys, logger: logger}, nil
}

// AddAllForeignKeys adds every constraint with ALTER TABLE. Failures are
// logged and skipped. SQLite cannot alter constraints; there they are
// declared when the table is created (see CreateTableClauses).
func (fkm *ForeignKeyManager) AddAllForeignKeys(ctx context.Context, db bun.IDB) error {
	if db.Dialect().Name() == dialect.SQLite {
		return nil
	}
	for _, constraint := range fkm.constraints {
		if _, err := db.ExecContext(ctx, constraint.GenerateSQL()); err != nil {
			fkm.debug("Failed to add foreign key constraint", "constraint", constraint.GenerateConstraintName(), "error", err)
			continue
		}
		fkm.debug("Added foreign key constraint", "constraint", constraint.GenerateConstraintName())
	}
	return nil
}

// DropAllForeignKeys removes every constraint, ignoring missing ones.
func (fkm *ForeignKeyManager) DropAllForeignKeys(ctx context.Context, db bun.IDB) error {
	if db.Dialect().Name() == dialect.SQLite {
		return nil
	}
	for _, constraint := range fkm.constraints {
		if err := fkm.RemoveForeignKey(ctx, db, constraint.Table, constraint.GenerateConstraintName()); err != nil {
			fkm.debug("Failed to drop foreign key constraint", "constraint", constraint.GenerateConstraintName(), "error", err)
		}
	}
	return nil
}

// RemoveForeignKey drops a named foreign key from a table.
func (fkm *ForeignKeyManager) RemoveForeignKey(ctx context.Context, db bun.IDB, tableName, constraintName string) error {
	keyword := "CONSTRAINT"
	if db.Dialect().Name() == dialect.MySQL {
		keyword = "FOREIGN KEY"
	}
	_, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s DROP %s %s", tableName, keyword, constraintName))
	return err
}

// CreateTableClauses returns FOREIGN KEY clauses for CREATE TABLE on table.
func (fkm *ForeignKeyManager) CreateTableClauses(tableName string) []string {
	var clauses []string
	for _, constraint := range fkm.GetConstraintsByTable(tableName) {
		clauses = append(clauses, constraint.referenceClause())
	}
	return clauses
}

// GetConstraintsByTable returns the constraints defined for a table.
func (fkm *ForeignKeyManager) GetConstraintsByTable(tableName string) []ForeignKeyConstraint {
	var result []ForeignKeyConstraint
	for _, constraint := range fkm.constraints {
		if strings.EqualFold(constraint.Table, tableName) {
			result = append(result, constraint)
		}
	}
	return result
}

// ListAllConstraints returns all configured constraints.
func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}

// ValidateConstraints checks the configured constraints for common issues.
func (fkm *ForeignKeyManager) ValidateConstraints() []error {
	var errs []error
	for _, c := range fkm.constraints {
		if c.Table == "" {
			errs = append(errs, fmt.Errorf("table name cannot be empty"))
		}
		if c.Column == "" {
			errs = append(errs, fmt.Errorf("column name cannot be empty: %s", c.Table))
		}
		if c.ReferenceTable == "" {
			errs = append(errs, fmt.Errorf("reference table name cannot be empty: %s.%s", c.Table, c.Column))
		}
		if c.ReferenceColumn == "" {
			errs = append(errs, fmt.Errorf("reference column name cannot be empty: %s.%s -> %s", c.Table, c.Column, c.ReferenceTable))
		}
		for _, action := range []string{c.OnDelete, c.OnUpdate} {
			if action != "" && !slices.Contains(validReferentialActions, strings.ToUpper(action)) {
				errs = append(errs, fmt.Errorf("invalid referential action: %s, constraint: %s", action, c.GenerateConstraintName()))
			}
		}
	}
	return errs
}

func (fkm *ForeignKeyManager) debug(msg string, fields ...interface{}) {
	if fkm.logger != nil {
		fkm.logger.Debug(msg, fields...)
	}
}

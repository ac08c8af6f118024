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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/utils"
)

var rollbackVersion string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		cfg := configFromContext(ctx)
		logger := utils.NewLogger("MAIN")

		db, err := database.InitDatabaseWithOptions(ctx, &cfg.Database, false)
		if err != nil {
			return err
		}
		defer database.CloseDB() // nolint: errcheck

		mm := database.NewMigrationManager(db, &cfg.Database, database.GetLogger())
		if rollbackVersion != "" {
			if err := mm.RollbackMigration(ctx, rollbackVersion); err != nil {
				return fmt.Errorf("rollback %s: %w", rollbackVersion, err)
			}
			logger.WithField("version", rollbackVersion).Info("migration rolled back")
			return nil
		}

		if err := mm.RunMigrations(ctx); err != nil {
			return fmt.Errorf("migration error: %w", err)
		}
		applied, err := mm.GetAppliedMigrations(ctx)
		if err != nil {
			return err
		}
		for _, m := range applied {
			logger.WithField("version", m.Version).Info(m.Name)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&rollbackVersion, "rollback", "", "roll back the migration with this version")
}

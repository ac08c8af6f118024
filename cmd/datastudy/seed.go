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
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tomoncle/datastudy"
	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/utils"
	"github.com/uptrace/bun"
)

var (
	seedCount int
	seedSQL   bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo members",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		cfg := configFromContext(ctx)

		db, err := database.InitDB(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer database.CloseDB() // nolint: errcheck

		if seedSQL {
			if err := database.InitData(ctx); err != nil {
				return fmt.Errorf("run seed files: %w", err)
			}
		}
		return seedMembers(ctx, db, seedCount)
	},
}

func init() {
	seedCmd.Flags().IntVarP(&seedCount, "members", "n", 100, "number of members to insert")
	seedCmd.Flags().BoolVar(&seedSQL, "sql", false, "also run the configured SQL seed files")
}

// seedMembers inserts user0..user<n-1>, each aged by its index.
func seedMembers(ctx context.Context, db bun.IDB, n int) error {
	if n <= 0 {
		return nil
	}
	members := make([]*entity.Member, 0, n)
	for i := 0; i < n; i++ {
		members = append(members, entity.NewMember(fmt.Sprintf("user%d", i), entity.WithAge(i)))
	}
	if err := datastudy.NewServiceWithDB[entity.Member](db).SaveAll(ctx, members...); err != nil {
		return err
	}
	utils.NewLogger("MAIN").WithField("count", n).Info("members seeded")
	return nil
}

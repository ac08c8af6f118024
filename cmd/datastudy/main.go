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
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/tomoncle/datastudy/config"
	"github.com/tomoncle/datastudy/utils"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	configPath string

	rootCmd = &cobra.Command{
		Use:               "datastudy",
		Short:             "Members and teams over bun",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
)

type configKey struct{}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(
		serveCmd,
		migrateCmd,
		seedCmd,
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyLogging()
	cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
	return nil
}

func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		utils.NewLogger("MAIN").Error(err)
		os.Exit(1)
	}
}

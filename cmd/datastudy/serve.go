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
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/utils"
	"github.com/tomoncle/datastudy/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		cfg := configFromContext(ctx)
		logger := utils.NewLogger("MAIN")

		db, err := database.InitDB(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer database.CloseDB() // nolint: errcheck

		if cfg.Seed.Members > 0 {
			if err := seedMembers(ctx, db, cfg.Seed.Members); err != nil {
				return fmt.Errorf("seed members: %w", err)
			}
		}

		handler := web.NewRouter(db, web.Options{
			Paging: web.Paging{
				DefaultSize: cfg.HTTP.DefaultPageSize,
				MaxSize:     cfg.HTTP.MaxPageSize,
			},
		})
		s := web.NewHTTPServer(&cfg.HTTP, handler)

		lch := make(chan error, 1)
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(done)

		go func() {
			logger.WithField("addr", cfg.HTTP.ListenAddr).Info("starting HTTP server")
			lch <- s.ListenAndServe()
		}()

		select {
		case err := <-lch:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-done:
		}

		ctx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down HTTP server")
		if err := s.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

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
	"io"
	"os"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var bunSqlSilentMode atomic.Bool

// EnableBunSqlSilent mutes QueryHook and the slow query hook, e.g. during
// bulk seeding.
func EnableBunSqlSilent(b bool) {
	bunSqlSilentMode.Store(b)
}

var operationColors = map[string]*color.Color{
	"SELECT": color.New(color.FgGreen),
	"INSERT": color.New(color.FgBlue),
	"UPDATE": color.New(color.FgYellow),
	"DELETE": color.New(color.FgMagenta),
}

var (
	otherOperationColor = color.New(color.FgRed)
	traceTagColor       = color.New(color.FgCyan)
	traceErrorColor     = color.New(color.BgRed, color.FgHiWhite)
)

// QueryHook prints each statement, coloured by operation. The env variable
// (DATASTUDY_SQL by default) overrides the static setting: "0" disables,
// "1" prints failed statements only, "2" prints everything.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

type QueryHookOption func(*QueryHook)

func WithQueryHookWriter(w io.Writer) QueryHookOption {
	return func(h *QueryHook) { h.writer = w }
}

func WithQueryHookVerbose(v bool) QueryHookOption {
	return func(h *QueryHook) { h.verbose = v }
}

func WithQueryHookEnv(name string) QueryHookOption {
	return func(h *QueryHook) { h.envName = name }
}

func NewQueryHook(opts ...QueryHookOption) *QueryHook {
	h := &QueryHook{
		envName: "DATASTUDY_SQL",
		enabled: true,
		verbose: true,
		writer:  os.Stdout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ bun.QueryHook = (*QueryHook)(nil)

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if bunSqlSilentMode.Load() {
		return
	}
	enabled, verbose := h.enabled, h.verbose
	if env, ok := os.LookupEnv(h.envName); ok {
		enabled = env != "" && env != "0"
		verbose = env == "2"
	}
	if !enabled {
		return
	}
	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		traceTagColor.Sprintf("%8s", "[BUN]"),
		fmt.Sprintf("%12s", now.Sub(event.StartTime).Round(time.Microsecond)),
		" ", operationColor(event.Operation()).Sprint(event.Query),
	}
	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		args = append(args, "\t", traceErrorColor.Sprintf(" %s: %s ", typ, event.Err.Error()))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func operationColor(op string) *color.Color {
	if c, ok := operationColors[op]; ok {
		return c
	}
	return otherOperationColor
}

// slowQueryHook warns through the database logger about statements that run
// longer than slowTime.
type slowQueryHook struct {
	slowTime time.Duration
	logger   Logger
}

func (h *slowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *slowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if event.Err != nil || h.logger == nil || bunSqlSilentMode.Load() {
		return
	}
	if duration := time.Since(event.StartTime); duration > h.slowTime {
		h.logger.Warn("Database slow query detected",
			"operation", event.Operation(),
			"duration", duration,
			"slow_threshold", h.slowTime,
			"query", event.Query,
		)
	}
}

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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/uptrace/bun"
)

var (
	queryCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "datastudy",
		Subsystem: "db",
		Name:      "queries_total",
		Help:      "The total number of executed statements",
	}, []string{"operation", "status"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "datastudy",
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "Statement latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// MetricsHook records statement counts and latencies.
type MetricsHook struct{}

var _ bun.QueryHook = MetricsHook{}

func (MetricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (MetricsHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	op := event.Operation()
	status := "ok"
	if event.Err != nil {
		if is, kind := IsSqlError(event.Err); !is || kind != NoRowsErr {
			status = "error"
		}
	}
	queryCounter.WithLabelValues(op, status).Inc()
	queryDuration.WithLabelValues(op).Observe(time.Since(event.StartTime).Seconds())
}

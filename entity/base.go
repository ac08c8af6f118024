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

package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AuditorAware supplies the identity recorded in created_by and
// last_modified_by.
type AuditorAware interface {
	CurrentAuditor(ctx context.Context) (string, bool)
}

// AuditorFunc adapts a function to AuditorAware.
type AuditorFunc func(ctx context.Context) (string, bool)

func (f AuditorFunc) CurrentAuditor(ctx context.Context) (string, bool) { return f(ctx) }

// RandomAuditor returns a fresh random id on every call. It stands in for a
// real user lookup.
var RandomAuditor AuditorAware = AuditorFunc(func(context.Context) (string, bool) {
	return uuid.NewString(), true
})

var defaultAuditor = RandomAuditor

// SetDefaultAuditor replaces the auditor used when the context carries none.
// A nil auditor restores RandomAuditor.
func SetDefaultAuditor(a AuditorAware) {
	if a == nil {
		a = RandomAuditor
	}
	defaultAuditor = a
}

type auditorKey struct{}

// WithAuditor returns a context whose writes are attributed by a.
func WithAuditor(ctx context.Context, a AuditorAware) context.Context {
	return context.WithValue(ctx, auditorKey{}, a)
}

func currentAuditor(ctx context.Context) string {
	a, ok := ctx.Value(auditorKey{}).(AuditorAware)
	if !ok || a == nil {
		a = defaultAuditor
	}
	id, _ := a.CurrentAuditor(ctx)
	return id
}

var now = time.Now

// BaseTimeEntity carries creation and modification timestamps.
type BaseTimeEntity struct {
	CreatedDate      time.Time `bun:"created_date,nullzero" json:"createdDate"`
	LastModifiedDate time.Time `bun:"last_modified_date,nullzero" json:"lastModifiedDate"`
}

var _ bun.BeforeAppendModelHook = (*BaseTimeEntity)(nil)

func (e *BaseTimeEntity) BeforeAppendModel(_ context.Context, query bun.Query) error {
	e.touch(query)
	return nil
}

// touch reports whether query is an insert or an update.
func (e *BaseTimeEntity) touch(query bun.Query) bool {
	t := now()
	switch query.(type) {
	case *bun.InsertQuery:
		e.CreatedDate = t
		e.LastModifiedDate = t
	case *bun.UpdateQuery:
		e.LastModifiedDate = t
	default:
		return false
	}
	return true
}

// BaseEntity adds the acting identities to BaseTimeEntity.
type BaseEntity struct {
	BaseTimeEntity

	CreatedBy      string `bun:"created_by" json:"createdBy"`
	LastModifiedBy string `bun:"last_modified_by" json:"lastModifiedBy"`
}

var _ bun.BeforeAppendModelHook = (*BaseEntity)(nil)

func (e *BaseEntity) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if !e.touch(query) {
		return nil
	}
	actor := currentAuditor(ctx)
	if _, ok := query.(*bun.InsertQuery); ok {
		e.CreatedBy = actor
	}
	e.LastModifiedBy = actor
	return nil
}

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
	"cmp"
	"reflect"
	"slices"
	"sync"
)

var defaultRegistry = newModelRegistry()

// SQLModel is a bun model taking part in migrations. Instance returns a
// struct pointer; Priority orders table creation (lower first), so
// referenced tables come before the tables pointing at them.
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

// ModelRegistry stores SQL models and exposes them in a deterministic order.
type ModelRegistry interface {
	Register(model SQLModel)
	Models() []SQLModel
}

type modelRegistry struct {
	models []SQLModel
	seen   map[reflect.Type]struct{}
	mutex  sync.RWMutex
}

func newModelRegistry() ModelRegistry {
	return &modelRegistry{seen: make(map[reflect.Type]struct{})}
}

// Register ignores a second registration of the same model type.
func (r *modelRegistry) Register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	typ := reflect.TypeOf(model.Instance())
	if _, ok := r.seen[typ]; ok {
		return
	}
	r.seen[typ] = struct{}{}
	r.models = append(r.models, model)
}

func (r *modelRegistry) Models() []SQLModel {
	r.mutex.RLock()
	result := slices.Clone(r.models)
	r.mutex.RUnlock()

	slices.SortStableFunc(result, func(a, b SQLModel) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})
	return result
}

type ModelAdapter struct {
	instance interface{}
	priority int
}

// NewModelAdapter wraps a struct pointer and priority into an SQLModel.
func NewModelAdapter(instance interface{}, priority int) SQLModel {
	return &ModelAdapter{instance: instance, priority: priority}
}

func (a *ModelAdapter) Instance() interface{} { return a.instance }

func (a *ModelAdapter) Priority() int { return a.priority }

// GetRegisteredModels returns the default registry sorted by priority.
func GetRegisteredModels() []SQLModel {
	return defaultRegistry.Models()
}

// RegisteredModel adds a model to the default registry.
func RegisteredModel(model SQLModel) {
	defaultRegistry.Register(model)
}

// RegisterModel is shorthand for RegisteredModel(NewModelAdapter(...)).
func RegisterModel(instance interface{}, priority int) {
	defaultRegistry.Register(NewModelAdapter(instance, priority))
}

func RegisteredModelInstances() []interface{} {
	models := GetRegisteredModels()
	instances := make([]interface{}, len(models))
	for i, model := range models {
		instances[i] = model.Instance()
	}
	return instances
}

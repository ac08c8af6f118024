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

package types

// LockMode is the row lock taken by a select.
type LockMode int

const (
	LockNone LockMode = iota
	LockPessimisticRead
	LockPessimisticWrite
)

var lockModes = map[LockMode][2]string{
	LockNone:             {"NONE", "no row lock"},
	LockPessimisticRead:  {"PESSIMISTIC_READ", "shared row lock"},
	LockPessimisticWrite: {"PESSIMISTIC_WRITE", "exclusive row lock"},
}

var _ BaseEnum = LockMode(0)

func (m LockMode) IsValid() bool {
	_, ok := lockModes[m]
	return ok
}

func (m LockMode) Number() int {
	if !m.IsValid() {
		return IllegalValue
	}
	return int(m)
}

func (m LockMode) Name() string {
	if v, ok := lockModes[m]; ok {
		return v[0]
	}
	return IllegalName
}

func (m LockMode) String() string { return m.Name() }

func (m LockMode) Desc() string {
	if v, ok := lockModes[m]; ok {
		return v[1]
	}
	return IllegalDesc
}

// LockModes lists every lock mode in ascending order.
func LockModes() []LockMode {
	return []LockMode{LockNone, LockPessimisticRead, LockPessimisticWrite}
}

// ParseLockMode looks a mode up by name, ignoring case.
func ParseLockMode(name string) (LockMode, bool) {
	return ParseEnum(name, LockModes()...)
}

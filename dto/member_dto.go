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

// Package dto holds read-only views of entities handed out of the
// repository and web layers.
package dto

import (
	"fmt"

	"github.com/tomoncle/datastudy/entity"
)

// MemberDto is the listing view of a member. TeamName is empty when the
// team was not loaded or the member has none.
type MemberDto struct {
	ID       int64  `bun:"id" json:"id"`
	Username string `bun:"username" json:"username"`
	TeamName string `bun:"team_name" json:"teamName"`
}

func NewMemberDto(m *entity.Member) MemberDto {
	d := MemberDto{ID: m.ID, Username: m.Username}
	if m.Team != nil {
		d.TeamName = m.Team.Name
	}
	return d
}

func (d MemberDto) String() string {
	return fmt.Sprintf("MemberDto(id=%d, username=%s, teamName=%s)", d.ID, d.Username, d.TeamName)
}

// UsernameOnly is an open projection: Username is computed from the
// selected columns rather than mapped to one.
type UsernameOnly struct {
	RawUsername string `bun:"username"`
	Age         int    `bun:"age"`
}

// Username renders "<username> <age>".
func (u UsernameOnly) Username() string {
	return fmt.Sprintf("%s %d", u.RawUsername, u.Age)
}

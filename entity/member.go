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
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// ErrTransientTeam is returned when a member refers to a team that has not
// been saved yet.
var ErrTransientTeam = errors.New("entity: member references an unsaved team")

// Member belongs to at most one Team. The team_id column is owned by Member;
// Team.Members is its inverse side.
type Member struct {
	bun.BaseModel `bun:"table:member,alias:m"`

	ID       int64  `bun:"member_id,pk,autoincrement" json:"id"`
	Username string `bun:"username" json:"username"`
	Age      int    `bun:"age,notnull" json:"age"`
	TeamID   *int64 `bun:"team_id" json:"teamId,omitempty"`
	Team     *Team  `bun:"rel:belongs-to,join:team_id=team_id" json:"-"`
}

// MemberOption sets an optional field in NewMember.
type MemberOption func(*Member)

// WithAge sets the member's age.
func WithAge(age int) MemberOption {
	return func(m *Member) { m.Age = age }
}

// WithTeam joins the member to team through ChangeTeam. A nil team is
// ignored.
func WithTeam(team *Team) MemberOption {
	return func(m *Member) {
		if team != nil {
			m.ChangeTeam(team)
		}
	}
}

// NewMember creates an unsaved member with the given username.
func NewMember(username string, opts ...MemberOption) *Member {
	m := &Member{Username: username}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ChangeTeam moves the member to team and keeps both sides of the
// association in step: the member leaves its previous team's Members and
// joins the new one exactly once. A nil team detaches the member.
func (m *Member) ChangeTeam(team *Team) {
	if m.Team != nil && m.Team != team {
		m.Team.removeMember(m)
	}
	m.Team = team
	if team == nil {
		m.TeamID = nil
		return
	}
	m.syncTeamID()
	team.addMember(m)
}

func (m *Member) syncTeamID() {
	if m.Team == nil || m.Team.ID == 0 {
		return
	}
	id := m.Team.ID
	m.TeamID = &id
}

func (m *Member) IsNew() bool { return m.ID == 0 }

var _ bun.BeforeAppendModelHook = (*Member)(nil)

// BeforeAppendModel copies the team's id into team_id before writes.
func (m *Member) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery, *bun.UpdateQuery:
	default:
		return nil
	}
	if m.Team == nil {
		return nil
	}
	if m.Team.ID == 0 {
		return fmt.Errorf("%w: %s", ErrTransientTeam, m.Team.Name)
	}
	m.syncTeamID()
	return nil
}

// String leaves out the team so that printing never walks the association.
func (m *Member) String() string {
	return fmt.Sprintf("Member(id=%d, username=%s, age=%d)", m.ID, m.Username, m.Age)
}

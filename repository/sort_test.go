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

package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datastudy/entity"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestSortColumn(t *testing.T) {
	dialect := sqlitedialect.New()

	tests := []struct {
		property string
		column   string
		wantErr  bool
	}{
		{property: "username", column: "username"},
		{property: "Username", column: "username"},
		{property: "id", column: "member_id"},
		{property: "ID", column: "member_id"},
		{property: "member_id", column: "member_id"},
		{property: "teamId", column: "team_id"},
		{property: "team", wantErr: true},
		{property: "password", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.property, func(t *testing.T) {
			column, err := sortColumn[entity.Member](dialect, tt.property)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSortProperty)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.column, column)
		})
	}
}

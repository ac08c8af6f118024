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

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/datastudy/database"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/internal/dbtest"
	"github.com/tomoncle/datastudy/repository"
	"github.com/tomoncle/datastudy/types"
)

type memberPage struct {
	Content []struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		TeamName string `json:"teamName"`
	} `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
}

func setupServer(t *testing.T, members int) (*httptest.Server, []*entity.Member) {
	ctx := context.Background()
	db := dbtest.Open(t)

	team := entity.NewTeam("teamA")
	_, err := repository.NewTeamRepository(db).Save(ctx, team)
	require.NoError(t, err)

	repo := repository.NewMemberRepository(db)
	saved := make([]*entity.Member, 0, members)
	for i := 0; i < members; i++ {
		opts := []entity.MemberOption{entity.WithAge(i)}
		if i%2 == 0 {
			opts = append(opts, entity.WithTeam(team))
		}
		m, err := repo.Save(ctx, entity.NewMember(fmt.Sprintf("user%d", i), opts...))
		require.NoError(t, err)
		saved = append(saved, m)
	}

	srv := httptest.NewServer(NewRouter(db, Options{
		Health: func(context.Context) *database.HealthStatus {
			return &database.HealthStatus{Healthy: true, Connected: true}
		},
	}))
	t.Cleanup(srv.Close)
	return srv, saved
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func getPage(t *testing.T, url string) memberPage {
	t.Helper()
	code, body := get(t, url)
	require.Equal(t, http.StatusOK, code, body)
	var page memberPage
	require.NoError(t, json.Unmarshal([]byte(body), &page))
	return page
}

func TestFindMember(t *testing.T) {
	srv, members := setupServer(t, 3)

	code, body := get(t, fmt.Sprintf("%s/member/%d", srv.URL, members[1].ID))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user1", body)

	code, body = get(t, fmt.Sprintf("%s/members2/%d", srv.URL, members[2].ID))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user2", body)

	for _, path := range []string{"/member/999", "/members2/999"} {
		code, body = get(t, srv.URL+path)
		assert.Equal(t, http.StatusInternalServerError, code, path)
		assert.Contains(t, body, "No value present", path)
	}

	for _, path := range []string{"/member/abc", "/members2/abc"} {
		code, body = get(t, srv.URL+path)
		assert.Equal(t, http.StatusBadRequest, code, path)
		assert.Contains(t, body, "invalid member id", path)
	}
}

func TestListMembers(t *testing.T) {
	srv, _ := setupServer(t, 12)

	t.Run("defaults", func(t *testing.T) {
		page := getPage(t, srv.URL+"/members")
		assert.Len(t, page.Content, 5)
		assert.Equal(t, 5, page.Size)
		assert.EqualValues(t, 12, page.TotalElements)
		assert.Equal(t, 3, page.TotalPages)
		assert.True(t, page.First)
		assert.Equal(t, "user0", page.Content[0].Username)
		assert.Equal(t, "teamA", page.Content[0].TeamName)
		assert.Empty(t, page.Content[1].TeamName)
	})

	t.Run("page size sort", func(t *testing.T) {
		page := getPage(t, srv.URL+"/members?page=1&size=3&sort=id,desc")
		require.Len(t, page.Content, 3)
		assert.Equal(t, 1, page.Number)
		assert.Equal(t, "user8", page.Content[0].Username)
		assert.Equal(t, 4, page.TotalPages)
	})

	t.Run("sort by username", func(t *testing.T) {
		page := getPage(t, srv.URL+"/members?size=2&sort=username,desc")
		require.Len(t, page.Content, 2)
		assert.Equal(t, "user9", page.Content[0].Username)
		assert.Equal(t, "user8", page.Content[1].Username)
	})

	t.Run("lenient parameters", func(t *testing.T) {
		page := getPage(t, srv.URL+"/members?page=-4&size=abc")
		assert.Equal(t, 0, page.Number)
		assert.Equal(t, 5, page.Size)
	})

	t.Run("beyond last page", func(t *testing.T) {
		page := getPage(t, srv.URL+"/members?page=10")
		assert.Empty(t, page.Content)
		assert.True(t, page.Last)
	})

	t.Run("page index overflow", func(t *testing.T) {
		page := getPage(t, srv.URL+"/members?page=4611686018427387904&size=4")
		assert.Empty(t, page.Content)
		assert.Equal(t, types.MaxPage, page.Number)
		assert.True(t, page.Last)
	})

	t.Run("invalid sort", func(t *testing.T) {
		code, body := get(t, srv.URL+"/members?sort=password")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body, "invalid_sort")
	})
}

func TestOperationalEndpoints(t *testing.T) {
	srv, _ := setupServer(t, 1)

	code, body := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"healthy":true`)

	get(t, srv.URL+"/members")
	code, body = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `datastudy_http_requests_total{code="200",method="GET",route="/members"}`)

	code, _ = get(t, srv.URL+"/nowhere")
	assert.Equal(t, http.StatusNotFound, code)

	resp, err := http.Post(srv.URL+"/members", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(func(context.Context) *database.HealthStatus {
		return &database.HealthStatus{LastError: "Database not initialized"}
	})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Database not initialized")
}

func TestPageRequestParsing(t *testing.T) {
	p := Paging{DefaultSize: 5, MaxSize: 20}
	req := p.pageRequest(httptest.NewRequest(http.MethodGet, "/members?page=2&size=500&sort=id,desc&sort=username", nil))
	assert.Equal(t, 2, req.GetPage())
	assert.Equal(t, 20, req.GetPageSize())
	assert.Equal(t, "id: DESC,username: ASC", req.GetSort().String())

	req = p.pageRequest(httptest.NewRequest(http.MethodGet, "/members?page=4611686018427387904&size=4", nil))
	assert.Equal(t, types.MaxPage, req.GetPage())
	assert.Equal(t, types.MaxPage*4, req.GetOffset())
	assert.Positive(t, req.GetOffset())

	req = p.pageRequest(httptest.NewRequest(http.MethodGet, "/members?page=99999999999999999999999", nil))
	assert.Equal(t, 0, req.GetPage())
}

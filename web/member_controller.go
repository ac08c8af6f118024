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
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tomoncle/datastudy"
	"github.com/tomoncle/datastudy/dto"
	"github.com/tomoncle/datastudy/entity"
	"github.com/tomoncle/datastudy/repository"
	"github.com/tomoncle/datastudy/types"
)

type memberController struct {
	members  *repository.MemberRepository
	resolver datastudy.Service[entity.Member]
	paging   Paging
}

// MemberController registers the member routes.
func MemberController(r *mux.Router, members *repository.MemberRepository, resolver datastudy.Service[entity.Member], paging Paging) {
	c := &memberController{members: members, resolver: resolver, paging: paging}
	r.HandleFunc("/member/{id}", c.findMember).Methods(http.MethodGet)
	r.HandleFunc("/members2/{id}", c.findMember2).Methods(http.MethodGet)
	r.HandleFunc("/members", c.list).Methods(http.MethodGet)
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, badRequest("invalid member id: " + raw)
	}
	return id, nil
}

// findMember answers with the username. A missing member is a server error.
func (c *memberController) findMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	member, err := c.members.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, noValuePresent(err))
		return
	}
	writeText(w, http.StatusOK, member.Username)
}

// findMember2 resolves the path id to a member through the entity service
// before the handler body runs.
func (c *memberController) findMember2(w http.ResponseWriter, r *http.Request) {
	member, err := c.resolveMember(r.Context(), r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, member.Username)
}

func (c *memberController) resolveMember(ctx context.Context, r *http.Request) (*entity.Member, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	member, err := c.resolver.Get(ctx, id)
	if err != nil {
		return nil, noValuePresent(err)
	}
	return member, nil
}

func (c *memberController) list(w http.ResponseWriter, r *http.Request) {
	page, err := c.members.FindAllPaged(r.Context(), c.paging.pageRequest(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, types.MapPage(page, dto.NewMemberDto))
}

func noValuePresent(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errNoValuePresent
	}
	return err
}

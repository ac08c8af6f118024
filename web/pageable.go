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
	"net/http"
	"strconv"

	"github.com/tomoncle/datastudy/types"
)

// Paging holds the page size limits applied to list endpoints.
type Paging struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPaging serves five items per page unless asked otherwise.
var DefaultPaging = Paging{DefaultSize: 5, MaxSize: types.MaxPageSize}

// pageRequest reads ?page=&size=&sort=. Values that do not parse fall back
// to the defaults, a negative page becomes 0, a page past types.MaxPage is
// clamped to it and size is capped at MaxSize.
// sort may repeat: sort=id,desc&sort=username.
func (p Paging) pageRequest(r *http.Request) *types.PageRequest {
	q := r.URL.Query()

	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size < 1 {
		size = p.DefaultSize
	}
	if p.MaxSize > 0 && size > p.MaxSize {
		size = p.MaxSize
	}
	return types.NewPageRequestWithSort(page, size, types.ParseSort(q["sort"]...))
}

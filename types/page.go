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

import (
	"encoding/json"
	"math"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 2000
	// MaxPage is the largest page index; page*MaxPageSize stays below
	// math.MaxInt32 so offsets never overflow.
	MaxPage = math.MaxInt32 / MaxPageSize
)

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// ParseDirection accepts "asc" or "desc" in any case.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(ASC):
		return ASC, true
	case string(DESC):
		return DESC, true
	}
	return "", false
}

// Order sorts by one property. Property is the json name of an entity field
// or its column name.
type Order struct {
	Property  string    `json:"property"`
	Direction Direction `json:"direction"`
}

func Asc(property string) Order { return Order{Property: property, Direction: ASC} }
func Desc(property string) Order { return Order{Property: property, Direction: DESC} }

func (o Order) IsDescending() bool { return o.Direction == DESC }

func (o Order) String() string {
	dir := o.Direction
	if dir == "" {
		dir = ASC
	}
	return o.Property + ": " + string(dir)
}

// Sort is an ordered list of orders; earlier entries take precedence.
type Sort []Order

// Unsorted is the empty Sort.
var Unsorted = Sort{}

// By sorts ascending by each property.
func By(properties ...string) Sort {
	s := make(Sort, 0, len(properties))
	for _, p := range properties {
		s = append(s, Asc(p))
	}
	return s
}

func (s Sort) And(other Sort) Sort {
	out := make(Sort, 0, len(s)+len(other))
	return append(append(out, s...), other...)
}

func (s Sort) IsSorted() bool { return len(s) > 0 }

func (s Sort) String() string {
	if len(s) == 0 {
		return "UNSORTED"
	}
	parts := make([]string, len(s))
	for i, o := range s {
		parts[i] = o.String()
	}
	return strings.Join(parts, ",")
}

// ParseSort reads query parameter values of the form
// "property[,property...][,asc|desc]". A trailing direction applies to every
// property in the same value; without one the order is ascending.
func ParseSort(values ...string) Sort {
	var s Sort
	for _, value := range values {
		parts := strings.Split(value, ",")
		dir := ASC
		if d, ok := ParseDirection(parts[len(parts)-1]); ok {
			dir = d
			parts = parts[:len(parts)-1]
		}
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				s = append(s, Order{Property: p, Direction: dir})
			}
		}
	}
	return s
}

// PageRequest asks for one page of results. Pages are numbered from 0.
type PageRequest struct {
	page     int
	pageSize int
	filter   *QueryFilter
	sort     Sort
}

// NewPageRequest clamps page to 0..MaxPage and pageSize to 1..MaxPageSize,
// using DefaultPageSize when pageSize < 1.
func NewPageRequest(page int, pageSize int, filter *QueryFilter, sort Sort) *PageRequest {
	switch {
	case page < 0:
		page = 0
	case page > MaxPage:
		page = MaxPage
	}
	switch {
	case pageSize < 1:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}
	return &PageRequest{page: page, pageSize: pageSize, filter: filter, sort: sort}
}

func NewPageRequestWithFilter(page int, pageSize int, filter *QueryFilter) *PageRequest {
	return NewPageRequest(page, pageSize, filter, Unsorted)
}

func NewPageRequestWithSort(page int, pageSize int, sort Sort) *PageRequest {
	return NewPageRequest(page, pageSize, nil, sort)
}

func NewDefaultPageRequest(page int, pageSize int) *PageRequest {
	return NewPageRequest(page, pageSize, nil, Unsorted)
}

func (p *PageRequest) GetPage() int { return p.page }
func (p *PageRequest) GetPageSize() int { return p.pageSize }
func (p *PageRequest) GetOffset() int { return p.page * p.pageSize }
func (p *PageRequest) GetFilter() *QueryFilter { return p.filter }
func (p *PageRequest) GetSort() Sort { return p.sort }

// Next returns the request for the following page.
func (p *PageRequest) Next() *PageRequest {
	return NewPageRequest(p.page+1, p.pageSize, p.filter, p.sort)
}

// Page is one slice of a larger result together with its position.
type Page[T any] struct {
	Content       []T
	TotalElements int64
	Number        int
	Size          int
	Sort          Sort
}

// NewPage builds a page for req out of its content and the total count.
func NewPage[T any](content []T, req *PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	return &Page[T]{
		Content:       content,
		TotalElements: total,
		Number:        req.GetPage(),
		Size:          req.GetPageSize(),
		Sort:          req.GetSort(),
	}
}

func (p *Page[T]) NumberOfElements() int { return len(p.Content) }

func (p *Page[T]) TotalPages() int {
	if p.Size < 1 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

func (p *Page[T]) IsFirst() bool { return p.Number == 0 }
func (p *Page[T]) IsLast() bool { return p.Number+1 >= p.TotalPages() }
func (p *Page[T]) HasNext() bool { return !p.IsLast() }
func (p *Page[T]) HasPrevious() bool { return p.Number > 0 }
func (p *Page[T]) IsEmpty() bool { return len(p.Content) == 0 }

type pageJSON[T any] struct {
	Content          []T    `json:"content"`
	TotalElements    int64  `json:"totalElements"`
	TotalPages       int    `json:"totalPages"`
	Number           int    `json:"number"`
	Size             int    `json:"size"`
	NumberOfElements int    `json:"numberOfElements"`
	First            bool   `json:"first"`
	Last             bool   `json:"last"`
	Empty            bool   `json:"empty"`
	Sort             string `json:"sort"`
}

// MarshalJSON adds the derived fields.
func (p *Page[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(pageJSON[T]{
		Content:          p.Content,
		TotalElements:    p.TotalElements,
		TotalPages:       p.TotalPages(),
		Number:           p.Number,
		Size:             p.Size,
		NumberOfElements: p.NumberOfElements(),
		First:            p.IsFirst(),
		Last:             p.IsLast(),
		Empty:            p.IsEmpty(),
		Sort:             p.Sort.String(),
	})
}

// MapPage converts the content of p with fn, keeping the page metadata.
func MapPage[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	content := make([]R, len(p.Content))
	for i, item := range p.Content {
		content[i] = fn(item)
	}
	return &Page[R]{
		Content:       content,
		TotalElements: p.TotalElements,
		Number:        p.Number,
		Size:          p.Size,
		Sort:          p.Sort,
	}
}

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
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tomoncle/datastudy/repository"
)

// errNoValuePresent is what a lookup by id reports when the row is missing.
// It maps to 500, not 404.
var errNoValuePresent = errors.New("No value present")

// httpError carries a status and a stable code for the JSON body.
type httpError struct {
	status  int
	code    string
	message string
}

func (e *httpError) Error() string { return e.message }

func badRequest(message string) error {
	return &httpError{status: http.StatusBadRequest, code: "bad_request", message: message}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError renders err as {"error":{"code","message"}}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := http.StatusInternalServerError, "internal_error", "internal server error"

	var he *httpError
	switch {
	case errors.As(err, &he):
		status, code, message = he.status, he.code, he.message
	case errors.Is(err, errNoValuePresent):
		message = errNoValuePresent.Error()
	case errors.Is(err, repository.ErrInvalidSortProperty):
		status, code, message = http.StatusBadRequest, "invalid_sort", err.Error()
	case errors.Is(err, repository.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, repository.ErrDuplicateKey):
		status, code, message = http.StatusConflict, "conflict", repository.ErrDuplicateKey.Error()
	}

	if status >= http.StatusInternalServerError {
		webLogger().WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		webLogger().WithError(err).Warn("failed to encode response")
	}
}

func writeText(w http.ResponseWriter, status int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(s))
}

func renderNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, &httpError{status: http.StatusNotFound, code: "not_found", message: "no route for " + r.URL.Path})
}

func renderMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, &httpError{status: http.StatusMethodNotAllowed, code: "method_not_allowed", message: r.Method + " is not allowed"})
}

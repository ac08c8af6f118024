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
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tomoncle/datastudy/utils"
)

const loggerName = "WEB"

func webLogger() *logrus.Logger {
	return utils.NewLogger(loggerName)
}

// logWriter captures the status code and bytes written to the response.
type logWriter struct {
	http.ResponseWriter
	code, bytes int
}

var (
	_ http.ResponseWriter = (*logWriter)(nil)
	_ http.Flusher        = (*logWriter)(nil)
	_ http.Hijacker       = (*logWriter)(nil)
)

func (w *logWriter) Write(p []byte) (int, error) {
	written, err := w.ResponseWriter.Write(p)
	w.bytes += written
	return written, err
}

// WriteHeader is only called for explicit statuses; code starts at 200.
func (w *logWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *logWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *logWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *logWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := w.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("http.Hijacker not implemented")
}

// NewLoggingMiddleware logs one line per request.
func NewLoggingMiddleware(next http.Handler, logger *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		writer := &logWriter{code: http.StatusOK, ResponseWriter: w}
		next.ServeHTTP(writer, r)

		entry := logger.WithFields(logrus.Fields{
			"method":  r.Method,
			"path":    r.URL.RequestURI(),
			"status":  writer.code,
			"latency": time.Since(start),
			"bytes":   writer.bytes,
			"addr":    r.RemoteAddr,
		})
		if writer.code >= http.StatusInternalServerError {
			entry.Warn("response")
			return
		}
		entry.Debug("response")
	})
}

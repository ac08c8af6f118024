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

package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug":   logrus.DebugLevel,
		" WARN ":  logrus.WarnLevel,
		"warning": logrus.WarnLevel,
		"":        logrus.InfoLevel,
		"bogus":   logrus.InfoLevel,
		"error":   logrus.ErrorLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestNewLogger_Registry(t *testing.T) {
	a := NewLogger("TEST_REGISTRY")
	assert.Same(t, a, NewLogger("TEST_REGISTRY"))

	assert.True(t, SetLoggerLevel("TEST_REGISTRY", "debug"))
	assert.Equal(t, logrus.DebugLevel, a.GetLevel())
	assert.False(t, SetLoggerLevel("TEST_MISSING", "debug"))
}

func TestJSONLogFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "WEB"}
	entry := logrus.NewEntry(logrus.New()).WithFields(logrus.Fields{
		"method":  http.MethodGet,
		"path":    "/members?page=1",
		"status":  http.StatusOK,
		"latency": 3 * time.Millisecond,
		"error":   errors.New("boom"),
	})
	entry.Level = logrus.InfoLevel
	entry.Message = "response"

	out, err := f.Format(entry)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "WEB", rec["logger"])
	assert.Equal(t, "info", rec["level"])
	assert.Equal(t, "GET", rec["method"])
	assert.Equal(t, "/members?page=1", rec["path"])
	assert.EqualValues(t, 200, rec["status_code"])
	assert.Equal(t, "3ms", rec["latency"])
	assert.Equal(t, map[string]interface{}{"error": "boom"}, rec["fields"])
}

func TestLog4jColorFormatter(t *testing.T) {
	f := &Log4jColorFormatter{LoggerName: "DATABASE", NameWidth: 10}
	entry := logrus.NewEntry(logrus.New()).WithField("version", "001")
	entry.Level = logrus.WarnLevel
	entry.Message = "migrated"

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "DATABASE")
	assert.Contains(t, string(out), "migrated version=001")
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("DATASTUDY_TEST_STRING", "value")
	t.Setenv("DATASTUDY_TEST_BOOL", "true")
	t.Setenv("DATASTUDY_TEST_BAD_BOOL", "maybe")
	t.Setenv("DATASTUDY_TEST_INT", "42")
	t.Setenv("DATASTUDY_TEST_SECONDS", "5")

	assert.Equal(t, "value", EnvDefaultString("DATASTUDY_TEST_STRING", "def"))
	assert.Equal(t, "def", EnvDefaultString("DATASTUDY_TEST_UNSET", "def"))
	assert.True(t, EnvDefaultBool("DATASTUDY_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("DATASTUDY_TEST_BAD_BOOL", true))
	assert.Equal(t, 42, EnvDefaultInt("DATASTUDY_TEST_INT", 1))
	assert.Equal(t, 1, EnvDefaultInt("DATASTUDY_TEST_STRING", 1))
	assert.Equal(t, 5*time.Second, EnvDefaultSeconds("DATASTUDY_TEST_SECONDS", time.Second))
}

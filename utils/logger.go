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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type Logger = logrus.Logger

const defaultTimestampFormat = "2006-01-02 15:04:05.000"

var (
	consoleLevel     = logrus.InfoLevel
	consoleLogFormat = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
	consoleOutput    io.Writer = os.Stdout
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
)

// ConfigureConsoleLogFormat switches newly created loggers between "text" and "json".
func ConfigureConsoleLogFormat(format string) {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		consoleLogFormat = "json"
	} else {
		consoleLogFormat = "text"
	}
	loggerRegistryMu.RLock()
	defer loggerRegistryMu.RUnlock()
	for name, lg := range loggerRegistry {
		lg.SetFormatter(newFormatter(name))
	}
}

// ConfigureOutput redirects every registered logger. Tests point it at a buffer.
func ConfigureOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	consoleOutput = w
	for _, lg := range loggerRegistry {
		lg.SetOutput(w)
	}
}

func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	loggerRegistry[name] = l
}

// ConfigureLogLevel sets the level of every registered logger and of loggers
// created afterwards.
func ConfigureLogLevel(levelStr string) {
	lvl := ParseLogLevel(levelStr)
	loggerRegistryMu.Lock()
	consoleLevel = lvl
	for _, lg := range loggerRegistry {
		lg.SetLevel(lvl)
	}
	loggerRegistryMu.Unlock()
	logrus.SetLevel(lvl)
}

// SetLoggerLevel changes a single named logger. It reports false when no
// logger with that name was created.
func SetLoggerLevel(name string, lvlStr string) bool {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	lg.SetLevel(ParseLogLevel(lvlStr))
	return true
}

// NewLogger returns the named logger, creating and registering it on first use.
func NewLogger(name string) *logrus.Logger {
	loggerRegistryMu.RLock()
	lg, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if ok {
		return lg
	}

	l := logrus.New()
	l.SetOutput(consoleOutput)
	l.SetLevel(consoleLevel)
	l.SetReportCaller(true)
	l.SetFormatter(newFormatter(name))
	RegisterLogger(name, l)
	return l
}

func newFormatter(name string) logrus.Formatter {
	if consoleLogFormat == "json" {
		return &JSONLogFormatter{LoggerName: name, TimestampFormat: defaultTimestampFormat}
	}
	return &Log4jColorFormatter{
		LoggerName:      name,
		TimestampFormat: defaultTimestampFormat,
		ColorCaller:     true,
		NameWidth:       10,
		CallerWidth:     25,
	}
}

// Log4jColorFormatter renders "ts LEVEL pid --- [main] name caller : msg k=v".
type Log4jColorFormatter struct {
	LoggerName      string
	TimestampFormat string
	ColorCaller     bool
	NameWidth       int
	CallerWidth     int
}

func (f *Log4jColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	ts := entry.Time.Format(tsFormat(f.TimestampFormat))
	lvl := colorLevel(padLeft(strings.ToUpper(entry.Level.String()), 7), entry.Level)
	pid := colorMagenta(fmt.Sprintf("%-6d", os.Getpid()))
	name := colorCyan(padLeft(limitRunes(f.LoggerName, f.NameWidth), f.NameWidth))

	callerInfo := ""
	if entry.Caller != nil {
		fileLine := fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
		if f.CallerWidth > 0 {
			fileLine = padLeft(limitRunes(fileLine, f.CallerWidth), f.CallerWidth)
		}
		callerInfo = " " + fileLine
		if f.ColorCaller {
			callerInfo = colorFaint(callerInfo)
		}
	}

	line := fmt.Sprintf("%s %s %s - %s %s%s %s %s%s\n",
		ts, lvl, pid, colorMagenta("[main]"), name, callerInfo, colorFaint(":"), entry.Message, formatFields(entry.Data))
	return []byte(line), nil
}

// JSONLogFormatter renders one JSON object per line. Request fields written by
// the web access log are lifted to top-level keys.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	type jsonLogRecord struct {
		Time       string                 `json:"time"`
		Level      string                 `json:"level"`
		Logger     string                 `json:"logger"`
		Caller     string                 `json:"caller,omitempty"`
		Message    string                 `json:"message"`
		Method     string                 `json:"method,omitempty"`
		Path       string                 `json:"path,omitempty"`
		StatusCode int                    `json:"status_code,omitempty"`
		Latency    string                 `json:"latency,omitempty"`
		Fields     map[string]interface{} `json:"fields,omitempty"`
	}

	rec := jsonLogRecord{
		Time:    entry.Time.Format(tsFormat(f.TimestampFormat)),
		Level:   strings.ToLower(entry.Level.String()),
		Logger:  f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	extra := make(map[string]interface{}, len(entry.Data))
	for k, v := range entry.Data {
		switch k {
		case "method":
			rec.Method, _ = v.(string)
		case "path":
			rec.Path = fmt.Sprint(v)
		case "status":
			rec.StatusCode, _ = v.(int)
		case "latency":
			rec.Latency = fmt.Sprint(v)
		default:
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		rec.Fields = extra
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func tsFormat(s string) string {
	if s != "" {
		return s
	}
	return defaultTimestampFormat
}

func formatFields(data logrus.Fields) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, data[k])
	}
	return sb.String()
}

const (
	ansiReset   = "\x1b[0m"
	ansiFaint   = "\x1b[2m"
	ansiRed     = "\x1b[31m"
	ansiYellow  = "\x1b[33m"
	ansiGreen   = "\x1b[32m"
	ansiBlue    = "\x1b[34m"
	ansiMagenta = "\x1b[35m"
	ansiCyan    = "\x1b[36m"
)

func colorWrap(s, code string) string { return code + s + ansiReset }

func colorMagenta(s string) string { return colorWrap(s, ansiMagenta) }

func colorCyan(s string) string { return colorWrap(s, ansiCyan) }

func colorFaint(s string) string { return colorWrap(s, ansiFaint) }

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return colorWrap(s, ansiRed)
	case logrus.WarnLevel:
		return colorWrap(s, ansiYellow)
	case logrus.InfoLevel:
		return colorWrap(s, ansiGreen)
	default:
		return colorWrap(s, ansiBlue)
	}
}

func padLeft(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", width-n) + s
}

// limitRunes keeps the last n runes, which is the interesting end of a path.
func limitRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// Package logger writes thu-timetable's structured log lines and keeps the
// metrics of a run.
//
// Every line is one JSON object:
//
//	{"timestamp":"2025-02-17T00:30:00Z","level":"WARN","message":"Skipping malformed course entry","fields":{"index":7,"run_id":"..."}}
//
// A Logger built with With carries base fields into every line; the CLI
// uses that for the run_id and command name.
//
// Metrics are counters, gauges and timings collected in-process. The CLI
// logs a Snapshot at the end of a verbose run:
//
//	logger.IncrCounter("parse.courses")
//	logger.RecordTiming("render.html", time.Since(start))
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

func (l Level) rank() int {
	switch l {
	case LevelDebug:
		return 0
	case LevelInfo:
		return 1
	case LevelWarn:
		return 2
	case LevelError:
		return 3
	}
	return -1
}

// ParseLevel converts a level name (any case) to a Level
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	if level.rank() < 0 {
		return "", fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}

// Fields are the structured values attached to a log line
type Fields map[string]any

// LogEntry is one line of output
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Fields    Fields    `json:"fields,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger writes LogEntry lines at or above a minimum level. Loggers derived
// with With share the writer and its lock.
type Logger struct {
	out      *lockedWriter
	minLevel Level
	base     Fields
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a logger writing to output. Lines below level are dropped.
func New(level Level, output io.Writer) *Logger {
	return &Logger{out: &lockedWriter{w: output}, minLevel: level}
}

// With returns a logger that adds fields to every line. Fields passed to
// individual calls take precedence.
func (l *Logger) With(fields Fields) *Logger {
	base := make(Fields, len(l.base)+len(fields))
	maps.Copy(base, l.base)
	maps.Copy(base, fields)
	return &Logger{out: l.out, minLevel: l.minLevel, base: base}
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if level.rank() < l.minLevel.rank() {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Level:     level,
		Message:   message,
		Fields:    fields,
	}
	if len(l.base) > 0 {
		entry.Fields = make(Fields, len(l.base)+len(fields))
		maps.Copy(entry.Fields, l.base)
		maps.Copy(entry.Fields, fields)
	}
	if err != nil {
		entry.Error = err.Error()
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	enc := json.NewEncoder(l.out.w)
	enc.SetEscapeHTML(false)
	if encErr := enc.Encode(entry); encErr != nil {
		// unencodable field values still leave a readable line
		fmt.Fprintf(l.out.w, "%s %s %s (fields not encodable: %v)\n",
			entry.Timestamp.Format(time.RFC3339), level, message, encErr)
	}
}

func (l *Logger) Debug(message string, fields Fields) { l.log(LevelDebug, message, fields, nil) }
func (l *Logger) Info(message string, fields Fields) { l.log(LevelInfo, message, fields, nil) }
func (l *Logger) Warn(message string, fields Fields) { l.log(LevelWarn, message, fields, nil) }

// Error logs at ERROR with err in the entry's error field
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

var defaultLogger = New(LevelInfo, os.Stderr)

// SetDefault replaces the logger behind the package-level functions
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger
}

func Debug(message string, fields Fields) { defaultLogger.Debug(message, fields) }
func Info(message string, fields Fields) { defaultLogger.Info(message, fields) }
func Warn(message string, fields Fields) { defaultLogger.Warn(message, fields) }

func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}

// Metrics collects counters, gauges and timings. Safe for concurrent use.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string][]time.Duration
}

// TimingStats summarizes the durations recorded under one name
type TimingStats struct {
	Count   int           `json:"count"`
	Total   time.Duration `json:"total"`
	Average time.Duration `json:"average"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
}

// Snapshot is a copy of a Metrics' values at one point in time
type Snapshot struct {
	Counters map[string]int64       `json:"counters"`
	Gauges   map[string]float64     `json:"gauges"`
	Timings  map[string]TimingStats `json:"timings"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string][]time.Duration),
	}
}

func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// SetGauge overwrites the gauge's previous value
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

func (m *Metrics) RecordTiming(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], d)
}

// Snapshot copies the current values and aggregates each timing series
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		Counters: maps.Clone(m.counters),
		Gauges:   maps.Clone(m.gauges),
		Timings:  make(map[string]TimingStats, len(m.timings)),
	}
	for name, series := range m.timings {
		if len(series) == 0 {
			continue
		}
		stats := TimingStats{Count: len(series), Min: series[0], Max: series[0]}
		for _, d := range series {
			stats.Total += d
			stats.Min = min(stats.Min, d)
			stats.Max = max(stats.Max, d)
		}
		stats.Average = stats.Total / time.Duration(stats.Count)
		s.Timings[name] = stats
	}
	return s
}

var defaultMetrics = NewMetrics()

func IncrCounter(name string) { defaultMetrics.IncrCounter(name) }
func SetGauge(name string, value float64) { defaultMetrics.SetGauge(name, value) }
func RecordTiming(name string, d time.Duration) { defaultMetrics.RecordTiming(name, d) }

// MetricsSnapshot snapshots the package-level metrics
func MetricsSnapshot() Snapshot {
	return defaultMetrics.Snapshot()
}

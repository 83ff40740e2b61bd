package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/satishbabariya/dbkit/query"
)

// Param is a bound parameter as it was when the statement ran.
type Param struct {
	Key   string
	Type  query.ParameterType
	Value any
}

// LoggingMonitor logs every statement at debug level and keeps an in-memory
// record of statements, timings and bound parameters.
type LoggingMonitor struct {
	log *slog.Logger

	mu      sync.Mutex
	logs    []string
	timings []time.Duration
	params  [][]Param
}

type callKey struct{ m *LoggingMonitor }

type call struct {
	id    string
	index int
	start time.Time
}

// NewLoggingMonitor returns a monitor logging to log, or slog.Default when
// log is nil.
func NewLoggingMonitor(log *slog.Logger) *LoggingMonitor {
	if log == nil {
		log = slog.Default()
	}
	return &LoggingMonitor{log: log}
}

func (m *LoggingMonitor) StartQuery(ctx context.Context, sql string, bounded []query.Binding) context.Context {
	params := make([]Param, len(bounded))
	for i, b := range bounded {
		params[i] = Param{Key: b.Key, Type: b.Type, Value: b.Value()}
	}

	m.mu.Lock()
	m.logs = append(m.logs, sql)
	m.timings = append(m.timings, 0)
	m.params = append(m.params, params)
	c := &call{id: uuid.NewString(), index: len(m.logs) - 1, start: time.Now()}
	m.mu.Unlock()

	return context.WithValue(ctx, callKey{m}, c)
}

func (m *LoggingMonitor) StopQuery(ctx context.Context, err error) {
	c, ok := ctx.Value(callKey{m}).(*call)
	if !ok {
		return
	}
	elapsed := time.Since(c.start)

	m.mu.Lock()
	m.timings[c.index] = elapsed
	sql := m.logs[c.index]
	m.mu.Unlock()

	if err != nil {
		m.log.DebugContext(ctx, "Query failed", "id", c.id, "sql", sql, "duration", elapsed, "error", err)
		return
	}
	m.log.DebugContext(ctx, "Query executed", "id", c.id, "sql", sql, "duration", elapsed)
}

// Logs returns the statements seen so far, retries included.
func (m *LoggingMonitor) Logs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.logs...)
}

// Timings returns the duration of each statement in Logs. A statement still
// running reports zero.
func (m *LoggingMonitor) Timings() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.timings...)
}

// BoundParams returns the parameters bound to each statement in Logs.
func (m *LoggingMonitor) BoundParams() [][]Param {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]Param(nil), m.params...)
}

// Reset forgets everything recorded so far.
func (m *LoggingMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs, m.timings, m.params = nil, nil, nil
}

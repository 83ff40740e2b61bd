package monitor

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/satishbabariya/dbkit/database"
	_ "github.com/satishbabariya/dbkit/database/sqlite"
	"github.com/satishbabariya/dbkit/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func openSQLite(t *testing.T, m database.QueryMonitor) *database.Driver {
	t.Helper()
	db, err := database.New(database.Options{Driver: "sqlite"}, database.WithMonitor(m))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLoggingMonitor(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	m := NewLoggingMonitor(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	db := openSQLite(t, m)

	_, err := db.ExecuteUnprepared(ctx, "CREATE TABLE t (id INTEGER, name TEXT)")
	require.NoError(t, err)

	name := "bob"
	q := db.CreateQuery().Insert("t").Columns("name").Values(":name").Bind("name", &name, query.ParamString)
	require.NoError(t, db.SetQuery(ctx, q))
	require.NoError(t, db.Execute(ctx))
	name = "alice"
	require.NoError(t, db.Execute(ctx))

	assert.Equal(t, []string{
		"CREATE TABLE t (id INTEGER, name TEXT)",
		"INSERT INTO t\n(name)\nVALUES (:name)",
		"INSERT INTO t\n(name)\nVALUES (:name)",
	}, m.Logs())
	assert.Len(t, m.Timings(), 3)

	params := m.BoundParams()
	require.Len(t, params, 3)
	assert.Empty(t, params[0])
	assert.Equal(t, []Param{{Key: "name", Type: query.ParamString, Value: "bob"}}, params[1])
	assert.Equal(t, []Param{{Key: "name", Type: query.ParamString, Value: "alice"}}, params[2])
	assert.Contains(t, buf.String(), "Query executed")

	_, err = db.ExecuteUnprepared(ctx, "DROP TABLE missing")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Query failed")

	m.Reset()
	assert.Empty(t, m.Logs())
}

func TestLoggingMonitorIgnoresForeignContext(t *testing.T) {
	m := NewLoggingMonitor(nil)
	assert.NotPanics(t, func() { m.StopQuery(context.Background(), nil) })
}

func TestPrometheusMonitor(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMonitor(reg, "dbkit")
	require.NoError(t, err)

	sctx := m.StartQuery(ctx, "SELECT 1", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
	m.StopQuery(sctx, nil)
	assert.Zero(t, testutil.ToFloat64(m.inFlight))

	ictx := m.StartQuery(ctx, "  insert INTO t VALUES (1)", nil)
	m.StopQuery(ictx, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.statementsTotal.WithLabelValues("select", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statementsTotal.WithLabelValues("insert", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.statementDuration))

	_, err = NewPrometheusMonitor(reg, "dbkit")
	assert.Error(t, err)
}

func TestTracingMonitor(t *testing.T) {
	ctx := context.Background()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	m := NewTracingMonitor(tp, "sqlite")

	sctx := m.StartQuery(ctx, "SELECT * FROM t WHERE id = :id", []query.Binding{{Key: "id", Type: query.ParamInt}})
	m.StopQuery(sctx, nil)
	dctx := m.StartQuery(ctx, "DELETE FROM t", nil)
	m.StopQuery(dctx, errors.New("locked"))

	spans := sr.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "db.select", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String("db.system", "sqlite"))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("db.dbkit.params", 1))

	assert.Equal(t, "db.delete", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "locked", spans[1].Status().Description)
	assert.Len(t, spans[1].Events(), 1)
}

type recorder struct {
	name  string
	calls *[]string
}

func (r recorder) StartQuery(ctx context.Context, _ string, _ []query.Binding) context.Context {
	*r.calls = append(*r.calls, "start "+r.name)
	return ctx
}

func (r recorder) StopQuery(context.Context, error) {
	*r.calls = append(*r.calls, "stop "+r.name)
}

func TestChain(t *testing.T) {
	var calls []string
	m := Chain(recorder{"a", &calls}, nil, recorder{"b", &calls})

	ctx := m.StartQuery(context.Background(), "SELECT 1", nil)
	m.StopQuery(ctx, nil)
	assert.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, calls)
}

func TestChainDrivesEveryMonitor(t *testing.T) {
	ctx := context.Background()
	logs := NewLoggingMonitor(nil)
	prom, err := NewPrometheusMonitor(prometheus.NewRegistry(), "dbkit")
	require.NoError(t, err)
	sr := tracetest.NewSpanRecorder()
	traces := NewTracingMonitor(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)), "sqlite")

	db := openSQLite(t, Chain(logs, prom, traces))
	require.NoError(t, db.SetQuery(ctx, "SELECT 1"))
	v, err := db.LoadResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	assert.Equal(t, []string{"SELECT 1"}, logs.Logs())
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.statementsTotal.WithLabelValues("select", "success")))
	assert.Len(t, sr.Ended(), 1)
}

func TestOperation(t *testing.T) {
	assert.Equal(t, "select", operation("(SELECT 1)"))
	assert.Equal(t, "update", operation("-- note\nUPDATE t SET a = 1"))
	assert.Equal(t, "other", operation("   "))
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMonitor(reg, "app")
	require.NoError(t, err)

	ctx := m.StartQuery(context.Background(), "DELETE FROM t", nil)
	m.StopQuery(ctx, errors.New("locked"))

	var buf bytes.Buffer
	require.NoError(t, WriteMetrics(&buf, reg))
	assert.Contains(t, buf.String(), "# TYPE app_statements_total counter")
	assert.Contains(t, buf.String(), `app_statements_total{operation="delete",status="error"} 1`)
	assert.Contains(t, buf.String(), "app_statements_in_flight 0")
}

func TestNewOTLPTracerProvider(t *testing.T) {
	ctx := context.Background()
	tp, err := NewOTLPTracerProvider(ctx, "127.0.0.1:4318", "dbkit-test")
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(ctx))
}

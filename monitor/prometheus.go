package monitor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/satishbabariya/dbkit/query"
)

// Default histogram buckets for statement duration (in seconds)
var defaultBuckets = []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}

// PrometheusMonitor counts statements by operation and outcome and observes
// their duration.
type PrometheusMonitor struct {
	statementsTotal   *prometheus.CounterVec
	statementDuration *prometheus.HistogramVec
	inFlight          prometheus.Gauge
}

type promKey struct{ m *PrometheusMonitor }

type promCall struct {
	op    string
	start time.Time
}

// NewPrometheusMonitor creates the collectors under namespace and registers
// them with reg.
func NewPrometheusMonitor(reg prometheus.Registerer, namespace string) (*PrometheusMonitor, error) {
	m := &PrometheusMonitor{
		statementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "statements_total",
				Help:      "Total number of executed statements",
			},
			[]string{"operation", "status"},
		),
		statementDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "statement_duration_seconds",
				Help:      "Statement execution duration in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation"},
		),
		inFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "statements_in_flight",
				Help:      "Number of statements currently executing",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.statementsTotal, m.statementDuration, m.inFlight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMonitor) StartQuery(ctx context.Context, sql string, _ []query.Binding) context.Context {
	m.inFlight.Inc()
	return context.WithValue(ctx, promKey{m}, promCall{op: operation(sql), start: time.Now()})
}

func (m *PrometheusMonitor) StopQuery(ctx context.Context, err error) {
	c, ok := ctx.Value(promKey{m}).(promCall)
	if !ok {
		return
	}
	m.inFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.statementsTotal.WithLabelValues(c.op, status).Inc()
	m.statementDuration.WithLabelValues(c.op).Observe(time.Since(c.start).Seconds())
}

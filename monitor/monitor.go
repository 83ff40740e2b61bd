// Package monitor provides database.QueryMonitor implementations: an slog
// debug log, Prometheus metrics and OpenTelemetry spans. Chain combines them.
package monitor

import (
	"context"
	"strings"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/query"
	"github.com/satishbabariya/dbkit/sqltext"
)

// Chain returns a monitor that calls each of ms in order on start and in
// reverse order on stop. Nil monitors are skipped.
func Chain(ms ...database.QueryMonitor) database.QueryMonitor {
	var out chain
	for _, m := range ms {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

type chain []database.QueryMonitor

func (c chain) StartQuery(ctx context.Context, sql string, bounded []query.Binding) context.Context {
	for _, m := range c {
		ctx = m.StartQuery(ctx, sql, bounded)
	}
	return ctx
}

func (c chain) StopQuery(ctx context.Context, err error) {
	for i := len(c) - 1; i >= 0; i-- {
		c[i].StopQuery(ctx, err)
	}
}

// operation returns the lower-cased leading keyword of sql, or "other".
func operation(sql string) string {
	if kw := sqltext.LeadingKeyword(sql); kw != "" {
		return strings.ToLower(kw)
	}
	return "other"
}

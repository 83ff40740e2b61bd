package database

import (
	"context"

	"github.com/satishbabariya/dbkit/query"
)

// QueryMonitor observes every statement execution attempt, retries
// included. StartQuery may return a derived context; the driver hands that
// context to StopQuery.
type QueryMonitor interface {
	StartQuery(ctx context.Context, sql string, bounded []query.Binding) context.Context
	StopQuery(ctx context.Context, err error)
}

type noopMonitor struct{}

func (noopMonitor) StartQuery(ctx context.Context, _ string, _ []query.Binding) context.Context {
	return ctx
}

func (noopMonitor) StopQuery(context.Context, error) {}

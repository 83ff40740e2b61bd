package database

import (
	"log/slog"

	"github.com/satishbabariya/dbkit/query"
)

// Factory builds drivers, queries, exporters and importers by driver name.
// Every call returns a new instance.
type Factory struct {
	options []Option
}

// NewFactory returns a factory applying options to every driver it builds.
func NewFactory(options ...Option) *Factory {
	return &Factory{options: options}
}

// NewFactoryWith is a shorthand for a factory with a logger and a monitor.
func NewFactoryWith(log *slog.Logger, monitor QueryMonitor) *Factory {
	return NewFactory(WithLogger(log), WithMonitor(monitor))
}

// GetDriver returns a disconnected driver. A non-empty name overrides
// opts.Driver.
func (f *Factory) GetDriver(name string, opts Options) (*Driver, error) {
	if name != "" {
		opts.Driver = name
	}
	return New(opts, f.options...)
}

// GetExporter returns an exporter reading from db. name must be a
// registered driver name.
func (f *Factory) GetExporter(name string, db *Driver) (*Exporter, error) {
	if _, err := lookup(name); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, invalidArgument("exporter needs a driver")
	}
	return NewExporter(db), nil
}

// GetImporter returns an importer writing to db. name must be a registered
// driver name.
func (f *Factory) GetImporter(name string, db *Driver) (*Importer, error) {
	if _, err := lookup(name); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, invalidArgument("importer needs a driver")
	}
	return NewImporter(db), nil
}

// CreateQuery returns an empty query in the dialect of the named driver.
func (f *Factory) CreateQuery(name string) (*query.Query, error) {
	b, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return query.New(b.Dialect()), nil
}

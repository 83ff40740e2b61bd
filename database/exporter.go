package database

import (
	"context"
	"io"
)

// Exporter writes the structure and, optionally, the data of tables as a
// Dump.
type Exporter struct {
	db        *Driver
	tables    []string
	structure bool
	data      bool
	format    Format
}

// NewExporter returns an exporter of structure only, in XML.
func NewExporter(db *Driver) *Exporter {
	return &Exporter{db: db, structure: true, format: FormatXML}
}

// From limits the export to tables. Names may use the #__ token. Without it
// every table is exported.
func (e *Exporter) From(tables ...string) *Exporter {
	e.tables = append(e.tables, tables...)
	return e
}

func (e *Exporter) WithStructure(on bool) *Exporter {
	e.structure = on
	return e
}

func (e *Exporter) WithData(on bool) *Exporter {
	e.data = on
	return e
}

func (e *Exporter) AsXML() *Exporter  { return e.As(FormatXML) }
func (e *Exporter) AsYAML() *Exporter { return e.As(FormatYAML) }

func (e *Exporter) As(format Format) *Exporter {
	e.format = format
	return e
}

// Check reports whether the exporter has something to do.
func (e *Exporter) Check() error {
	if e.db == nil {
		return invalidArgument("exporter has no driver")
	}
	if !e.structure && !e.data {
		return invalidArgument("exporter has neither structure nor data enabled")
	}
	return nil
}

// Build reads the tables into a Dump.
func (e *Exporter) Build(ctx context.Context) (*Dump, error) {
	if err := e.Check(); err != nil {
		return nil, err
	}

	tables := make([]string, 0, len(e.tables))
	for _, t := range e.tables {
		tables = append(tables, e.db.ReplacePrefix(t))
	}
	if len(tables) == 0 {
		all, err := e.db.TableList(ctx)
		if err != nil {
			return nil, err
		}
		tables = all
	}

	dump := &Dump{Database: DumpDatabase{Name: e.db.Options().Database}}
	for _, table := range tables {
		name := e.db.tokenName(table)

		if e.structure {
			cols, err := e.db.TableColumns(ctx, table)
			if err != nil {
				return nil, err
			}
			keys, err := e.db.TableKeys(ctx, table)
			if err != nil {
				return nil, err
			}
			dump.Database.Structure = append(dump.Database.Structure, TableStructure{Name: name, Fields: cols, Keys: keys})
		}

		if e.data {
			data, err := e.tableData(ctx, table)
			if err != nil {
				return nil, err
			}
			data.Name = name
			dump.Database.Data = append(dump.Database.Data, data)
		}
	}
	return dump, nil
}

func (e *Exporter) tableData(ctx context.Context, table string) (TableData, error) {
	q := e.db.CreateQuery().Select("*").From(e.db.QuoteName(table))
	if err := e.db.SetQuery(ctx, q); err != nil {
		return TableData{}, err
	}
	it, err := e.db.Iterator(ctx)
	if err != nil {
		return TableData{}, err
	}
	defer it.Close()

	var data TableData
	for it.Next() {
		row := it.Row()
		fields := make([]DataField, len(row.Columns()))
		for i, col := range row.Columns() {
			fields[i] = DataField{Name: col}
			if v := row.values[i]; v.Valid {
				fields[i].Value = v.String
			} else {
				fields[i].Null = true
			}
		}
		data.Rows = append(data.Rows, DataRow{Fields: fields})
	}
	return data, it.Err()
}

// Bytes returns the encoded dump.
func (e *Exporter) Bytes(ctx context.Context) ([]byte, error) {
	dump, err := e.Build(ctx)
	if err != nil {
		return nil, err
	}
	return dump.Encode(e.format)
}

// Export writes the encoded dump to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer) error {
	out, err := e.Bytes(ctx)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

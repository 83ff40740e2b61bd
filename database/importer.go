package database

import (
	"context"
	"io"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/satishbabariya/dbkit/query"
)

// Importer merges the structure of a Dump into a database and loads its
// data.
type Importer struct {
	db          *Driver
	raw         []byte
	dump        *Dump
	format      Format
	structure   bool
	dropColumns bool
}

// NewImporter returns an importer reading XML that merges structure and
// drops columns missing from the dump.
func NewImporter(db *Driver) *Importer {
	return &Importer{db: db, format: FormatXML, structure: true, dropColumns: true}
}

// From sets the encoded dump to import.
func (im *Importer) From(data []byte) *Importer {
	im.raw, im.dump = data, nil
	return im
}

// FromReader reads the encoded dump from r.
func (im *Importer) FromReader(r io.Reader) (*Importer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return im, err
	}
	return im.From(data), nil
}

// FromDump sets an already decoded dump.
func (im *Importer) FromDump(dump *Dump) *Importer {
	im.raw, im.dump = nil, dump
	return im
}

func (im *Importer) AsXML() *Importer  { return im.As(FormatXML) }
func (im *Importer) AsYAML() *Importer { return im.As(FormatYAML) }

func (im *Importer) As(format Format) *Importer {
	im.format = format
	if im.raw != nil {
		im.dump = nil
	}
	return im
}

// WithStructure controls whether MergeStructure alters tables that already
// exist. Missing tables are always created.
func (im *Importer) WithStructure(on bool) *Importer {
	im.structure = on
	return im
}

// DropColumns controls whether columns absent from the dump are dropped.
func (im *Importer) DropColumns(on bool) *Importer {
	im.dropColumns = on
	return im
}

// Check decodes the dump and reports whether there is something to import.
func (im *Importer) Check() error {
	_, err := im.load()
	return err
}

func (im *Importer) load() (*Dump, error) {
	if im.db == nil {
		return nil, invalidArgument("importer has no driver")
	}
	if im.dump != nil {
		return im.dump, nil
	}
	if len(im.raw) == 0 {
		return nil, invalidArgument("importer has no source")
	}
	dump, err := DecodeDump(im.raw, im.format)
	if err != nil {
		return nil, err
	}
	im.dump = dump
	return dump, nil
}

// MergeStructure creates the tables of the dump that do not exist and, with
// structure enabled, adds, changes and drops columns of those that do.
func (im *Importer) MergeStructure(ctx context.Context) error {
	dump, err := im.load()
	if err != nil {
		return err
	}
	existing, err := im.db.TableList(ctx)
	if err != nil {
		return err
	}

	for _, ts := range dump.Database.Structure {
		table := im.db.ReplacePrefix(ts.Name)
		exists := slices.ContainsFunc(existing, func(t string) bool { return strings.EqualFold(t, table) })

		var stmts []string
		if !exists {
			stmts = im.db.CreateTableSQL(table, ts.Fields, ts.Keys)
			im.db.log.Info("Creating table", "table", table)
		} else if im.structure {
			current, err := im.db.TableColumns(ctx, table)
			if err != nil {
				return err
			}
			stmts = im.alterTable(table, current, ts.Fields)
		}

		for _, sql := range stmts {
			if _, err := im.db.ExecuteUnprepared(ctx, sql); err != nil {
				return err
			}
		}
	}
	return nil
}

// ImportData inserts every row of the dump inside one transaction.
func (im *Importer) ImportData(ctx context.Context) error {
	dump, err := im.load()
	if err != nil {
		return err
	}

	return im.db.Transaction(ctx, func(ctx context.Context) error {
		for _, td := range dump.Database.Data {
			table := im.db.ReplacePrefix(td.Name)
			for _, row := range td.Rows {
				if len(row.Fields) == 0 {
					continue
				}
				if err := im.insertRow(ctx, table, row); err != nil {
					return err
				}
			}
			im.db.log.Debug("Imported rows", "table", table, "rows", len(td.Rows))
		}
		return nil
	})
}

func (im *Importer) insertRow(ctx context.Context, table string, row DataRow) error {
	q := im.db.CreateQuery().Insert(im.db.QuoteName(table))
	names := make([]string, len(row.Fields))
	markers := make([]string, len(row.Fields))
	for i, f := range row.Fields {
		names[i] = im.db.QuoteName(f.Name)
		markers[i] = ":import" + strconv.Itoa(i)
		if f.Null {
			q.Bind(markers[i], nil, query.ParamNull)
		} else {
			q.Bind(markers[i], f.Value, query.ParamString)
		}
	}
	q.Columns(names...).Values(strings.Join(markers, ", "))

	if err := im.db.SetQuery(ctx, q); err != nil {
		return err
	}
	return im.db.Execute(ctx)
}

// CreateTableSQL returns the statements creating table with the given
// columns and keys. MySQL gets its indexes inline, the other servers get one
// CREATE INDEX statement per secondary index.
func (d *Driver) CreateTableSQL(table string, columns []Column, keys []Key) []string {
	defs := make([]string, 0, len(columns)+1)
	for _, c := range columns {
		defs = append(defs, d.columnDefinition(c))
	}

	indexes := groupKeys(keys)
	primary := indexes.primary()
	if len(primary) == 0 {
		for _, c := range columns {
			if c.Key == "PRI" {
				primary = append(primary, c.Name)
			}
		}
	}
	if len(primary) > 0 {
		defs = append(defs, "PRIMARY KEY ("+d.quoteNames(primary)+")")
	}

	var after []string
	for _, ix := range indexes.secondary() {
		cols := d.quoteNames(ix.columns)
		if d.serverType == ServerMySQL {
			kind := "KEY "
			if ix.unique {
				kind = "UNIQUE KEY "
			}
			defs = append(defs, kind+d.QuoteName(ix.name)+" ("+cols+")")
			continue
		}
		kind := "CREATE INDEX "
		if ix.unique {
			kind = "CREATE UNIQUE INDEX "
		}
		after = append(after, kind+d.QuoteName(ix.name)+" ON "+d.QuoteName(table)+" ("+cols+")")
	}

	create := "CREATE TABLE " + d.QuoteName(table) + " (\n  " + strings.Join(defs, ",\n  ") + "\n)"
	return append([]string{create}, after...)
}

// alterTable returns the statements turning current into want.
func (im *Importer) alterTable(table string, current, want []Column) []string {
	have := make(map[string]Column, len(current))
	for _, c := range current {
		have[strings.ToLower(c.Name)] = c
	}
	wanted := make(map[string]bool, len(want))

	qt := im.db.QuoteName(table)
	var out []string
	for _, c := range want {
		wanted[strings.ToLower(c.Name)] = true
		old, ok := have[strings.ToLower(c.Name)]
		if !ok {
			out = append(out, "ALTER TABLE "+qt+" ADD COLUMN "+im.db.columnDefinition(c))
			continue
		}
		if sameColumn(old, c) {
			continue
		}
		out = append(out, im.changeColumn(qt, c)...)
	}

	if im.dropColumns {
		for _, c := range current {
			if !wanted[strings.ToLower(c.Name)] {
				out = append(out, "ALTER TABLE "+qt+" DROP COLUMN "+im.db.QuoteName(c.Name))
			}
		}
	}
	return out
}

func (im *Importer) changeColumn(qt string, c Column) []string {
	switch im.db.ServerType() {
	case ServerMySQL:
		return []string{"ALTER TABLE " + qt + " MODIFY COLUMN " + im.db.columnDefinition(c)}
	case ServerPostgreSQL:
		qn := im.db.QuoteName(c.Name)
		null := " SET NOT NULL"
		if c.Null {
			null = " DROP NOT NULL"
		}
		out := []string{
			"ALTER TABLE " + qt + " ALTER COLUMN " + qn + " TYPE " + c.Type,
			"ALTER TABLE " + qt + " ALTER COLUMN " + qn + null,
		}
		if c.Default != nil {
			out = append(out, "ALTER TABLE "+qt+" ALTER COLUMN "+qn+" SET DEFAULT "+im.db.defaultValue(*c.Default))
		} else {
			out = append(out, "ALTER TABLE "+qt+" ALTER COLUMN "+qn+" DROP DEFAULT")
		}
		return out
	}
	im.db.log.Warn("Column change not supported, skipped", "table", qt, "column", c.Name, "server", im.db.ServerType())
	return nil
}

var serialTypes = map[string]string{"smallint": "smallserial", "integer": "serial", "bigint": "bigserial"}

func (d *Driver) columnDefinition(c Column) string {
	typ, dflt := c.Type, c.Default
	// Sequence defaults name the source table's sequence; a serial type
	// creates a fresh one.
	if d.serverType == ServerPostgreSQL && dflt != nil && strings.HasPrefix(*dflt, "nextval(") {
		if serial, ok := serialTypes[strings.ToLower(typ)]; ok {
			typ, dflt = serial, nil
		}
	}

	def := d.QuoteName(c.Name) + " " + typ
	if !c.Null {
		def += " NOT NULL"
	}
	if dflt != nil {
		def += " DEFAULT " + d.defaultValue(*dflt)
	}
	if d.serverType == ServerMySQL && strings.Contains(strings.ToLower(c.Extra), "auto_increment") {
		def += " AUTO_INCREMENT"
	}
	return def
}

var (
	numericDefault  = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	functionDefault = regexp.MustCompile(`(?i)^(CURRENT_TIMESTAMP|CURRENT_DATE|CURRENT_TIME|NULL|TRUE|FALSE)(\(\d*\))?$`)
)

// defaultValue renders a column default. MySQL reports defaults as bare
// values that need quoting; the other servers report SQL expressions.
func (d *Driver) defaultValue(v string) string {
	if d.serverType != ServerMySQL || numericDefault.MatchString(v) || functionDefault.MatchString(v) {
		return v
	}
	return d.Quote(v)
}

func (d *Driver) quoteNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = d.QuoteName(n)
	}
	return strings.Join(quoted, ", ")
}

func sameColumn(a, b Column) bool {
	if !strings.EqualFold(a.Type, b.Type) || a.Null != b.Null {
		return false
	}
	if (a.Default == nil) != (b.Default == nil) {
		return false
	}
	return a.Default == nil || *a.Default == *b.Default
}

type index struct {
	name    string
	unique  bool
	primary bool
	columns []string
}

type indexList []index

// groupKeys folds per-column key rows into indexes ordered by name, with
// columns in sequence order.
func groupKeys(keys []Key) indexList {
	sorted := slices.Clone(keys)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].Seq < sorted[j].Seq
	})

	var out indexList
	for _, k := range sorted {
		if n := len(out); n > 0 && out[n-1].name == k.Name {
			out[n-1].columns = append(out[n-1].columns, k.Column)
			continue
		}
		out = append(out, index{name: k.Name, unique: k.Unique, primary: k.Primary, columns: []string{k.Column}})
	}
	return out
}

func (l indexList) primary() []string {
	for _, ix := range l {
		if ix.primary {
			return ix.columns
		}
	}
	return nil
}

func (l indexList) secondary() indexList {
	var out indexList
	for _, ix := range l {
		if !ix.primary {
			out = append(out, ix)
		}
	}
	return out
}

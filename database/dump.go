package database

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/satishbabariya/dbkit/sqltext"
	"gopkg.in/yaml.v3"
)

// Format is a serialisation of a Dump.
type Format string

// Supported dump formats.
const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a name such as "yml" to its Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", invalidArgument("unknown dump format %q", name)
}

// Dump is the structure and data of a set of tables. Table names keep the
// #__ token so a dump can be loaded under any prefix.
type Dump struct {
	XMLName  xml.Name     `xml:"dbkit" yaml:"-"`
	Database DumpDatabase `xml:"database" yaml:"database"`
}

type DumpDatabase struct {
	Name      string           `xml:"name,attr" yaml:"name"`
	Structure []TableStructure `xml:"table_structure" yaml:"structure,omitempty"`
	Data      []TableData      `xml:"table_data" yaml:"data,omitempty"`
}

type TableStructure struct {
	Name   string   `xml:"name,attr" yaml:"name"`
	Fields []Column `xml:"field" yaml:"fields"`
	Keys   []Key    `xml:"key" yaml:"keys,omitempty"`
}

type TableData struct {
	Name string    `xml:"name,attr" yaml:"name"`
	Rows []DataRow `xml:"row" yaml:"rows"`
}

type DataRow struct {
	Fields []DataField `xml:"field" yaml:"fields"`
}

// DataField is one value of a row. Null marks SQL NULL, in which case Value
// is empty.
type DataField struct {
	Name  string `xml:"name,attr" yaml:"name"`
	Value string `xml:",chardata" yaml:"value,omitempty"`
	Null  bool   `xml:"null,attr,omitempty" yaml:"null,omitempty"`
}

// Encode serialises the dump.
func (dump *Dump) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(dump); err != nil {
			return nil, fmt.Errorf("encode yaml dump: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml dump: %w", err)
		}
		return buf.Bytes(), nil
	case FormatXML:
		out, err := xml.MarshalIndent(dump, "", " ")
		if err != nil {
			return nil, fmt.Errorf("encode xml dump: %w", err)
		}
		return append([]byte(xml.Header), append(out, '\n')...), nil
	}
	return nil, invalidArgument("unknown dump format %q", format)
}

// DecodeDump parses data in the given format.
func DecodeDump(data []byte, format Format) (*Dump, error) {
	dump := &Dump{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, dump)
	case FormatXML:
		err = xml.Unmarshal(data, dump)
	default:
		return nil, invalidArgument("unknown dump format %q", format)
	}
	if err != nil {
		return nil, &Error{Kind: ErrInvalidArgument, Message: "malformed " + string(format) + " dump", Cause: err}
	}
	return dump, nil
}

// tokenName turns a real table name back into its #__ form.
func (d *Driver) tokenName(table string) string {
	if d.opts.Prefix == "" || !strings.HasPrefix(table, d.opts.Prefix) {
		return table
	}
	return sqltext.DefaultPrefixToken + strings.TrimPrefix(table, d.opts.Prefix)
}

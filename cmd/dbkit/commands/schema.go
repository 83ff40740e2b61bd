package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/internal/ui"
	"github.com/spf13/cobra"
)

func newTablesCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withDriver(cmd, func(ctx context.Context, db *database.Driver) error {
				tables, err := db.TableList(ctx)
				if err != nil {
					return err
				}
				ui.PrintList(tables)
				return nil
			})
		},
	}
}

func columnRows(cols []database.Column) [][]string {
	rows := make([][]string, 0, len(cols))
	for _, c := range cols {
		def := "NULL"
		if c.Default != nil {
			def = *c.Default
		}
		null := "NO"
		if c.Null {
			null = "YES"
		}
		rows = append(rows, []string{c.Name, c.Type, null, c.Key, def, c.Extra, c.Comment})
	}
	return rows
}

var columnHeaders = []string{"Field", "Type", "Null", "Key", "Default", "Extra", "Comment"}

func newColumnsCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "columns TABLE",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withDriver(cmd, func(ctx context.Context, db *database.Driver) error {
				cols, err := db.TableColumns(ctx, args[0])
				if err != nil {
					return err
				}
				return ui.PrintTable(columnHeaders, columnRows(cols))
			})
		},
	}
}

func newDescribeCommand(g *globals) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "describe TABLE",
		Short: "Describe a table: columns, indexes and CREATE statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withDriver(cmd, func(ctx context.Context, db *database.Driver) error {
				doc, err := describe(ctx, db, args[0])
				if err != nil {
					return err
				}
				if raw {
					fmt.Fprint(ui.Out, doc)
					return nil
				}
				return ui.PrintMarkdown(doc)
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the markdown source")
	return cmd
}

// describe renders table as a markdown document.
func describe(ctx context.Context, db *database.Driver, table string) (string, error) {
	cols, err := db.TableColumns(ctx, table)
	if err != nil {
		return "", err
	}
	keys, err := db.TableKeys(ctx, table)
	if err != nil {
		return "", err
	}
	create, err := db.TableCreate(ctx, table)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n## Columns\n\n", db.ReplacePrefix(table))
	writeMarkdownTable(&b, columnHeaders, columnRows(cols))

	if len(keys) > 0 {
		b.WriteString("\n## Indexes\n\n")
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k.Name, k.Column, fmt.Sprint(k.Seq), yesNo(k.Unique), yesNo(k.Primary)})
		}
		writeMarkdownTable(&b, []string{"Name", "Column", "Seq", "Unique", "Primary"}, rows)
	}

	fmt.Fprintf(&b, "\n## Definition\n\n```sql\n%s\n```\n", create[table])
	return b.String(), nil
}

func writeMarkdownTable(b *strings.Builder, headers []string, rows [][]string) {
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/internal/ui"
	"github.com/spf13/cobra"
)

func newExportCommand(g *globals) *cobra.Command {
	var format string
	var output string
	var data bool
	var noStructure bool

	cmd := &cobra.Command{
		Use:   "export [TABLES...]",
		Short: "Export table structure and data as XML or YAML",
		Long: `Export the structure, and optionally the data, of the given tables or of
every table. Table names are written with the prefix replaced by #__ so the
document can be imported under another prefix.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := database.ParseFormat(format)
			if err != nil {
				return err
			}
			return g.withDriver(cmd, func(ctx context.Context, db *database.Driver) error {
				ex := database.NewExporter(db).
					From(args...).
					WithStructure(!noStructure).
					WithData(data).
					As(f)

				if output == "" || output == "-" {
					return ex.Export(ctx, ui.Out)
				}
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				if err := ex.Export(ctx, file); err != nil {
					file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				ui.PrintSuccess("Exported to %s", output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "xml", "document format (xml, yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().BoolVar(&data, "data", false, "include table rows")
	cmd.Flags().BoolVar(&noStructure, "no-structure", false, "leave out table structure")
	return cmd
}

func newImportCommand(g *globals) *cobra.Command {
	var format string
	var noStructure bool
	var noData bool
	var keepColumns bool

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an XML or YAML document written by export",
		Long: `Create the tables of the document that are missing, bring the columns of
existing tables in line with it and insert its rows in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			if format == "" {
				format = formatFromExt(file)
			}
			f, err := database.ParseFormat(format)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}

			return g.withDriver(cmd, func(ctx context.Context, db *database.Driver) error {
				im := database.NewImporter(db).
					From(raw).
					As(f).
					WithStructure(!noStructure).
					DropColumns(!keepColumns)

				if err := im.MergeStructure(ctx); err != nil {
					return err
				}
				if !noData {
					if err := im.ImportData(ctx); err != nil {
						return err
					}
				}
				ui.PrintSuccess("Imported %s", file)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "document format (xml, yaml), guessed from the file extension")
	cmd.Flags().BoolVar(&noStructure, "no-structure", false, "only create missing tables, leave existing ones alone")
	cmd.Flags().BoolVar(&noData, "no-data", false, "skip table rows")
	cmd.Flags().BoolVar(&keepColumns, "keep-columns", false, "keep columns missing from the document")
	return cmd
}

func formatFromExt(file string) string {
	switch filepath.Ext(file) {
	case ".yaml", ".yml":
		return string(database.FormatYAML)
	}
	return string(database.FormatXML)
}

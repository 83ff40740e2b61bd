package commands

import (
	"context"
	"fmt"
	"runtime"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/internal/config"
	"github.com/satishbabariya/dbkit/internal/ui"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func newDriversCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List the registered database drivers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := [][]string{}
			for _, name := range database.Drivers() {
				db, err := database.New(database.Options{Driver: name})
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, db.ServerType(), db.MinimumVersion()})
			}
			return ui.PrintTable([]string{"Driver", "Server", "Minimum version"}, rows)
		},
	}
}

func newVersionCommand(g *globals) *cobra.Command {
	var server bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(ui.Out, "dbkit version %s\n", Version)
			fmt.Fprintf(ui.Out, "  Git Commit: %s\n", GitCommit)
			fmt.Fprintf(ui.Out, "  Build Time: %s\n", BuildTime)
			fmt.Fprintf(ui.Out, "  Go Version: %s\n", runtime.Version())
			fmt.Fprintf(ui.Out, "  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			if !server {
				return nil
			}

			return g.withDriver(cmd, func(ctx context.Context, db *database.Driver) error {
				v, err := db.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(ui.Out, "  Server: %s %s\n", db.ServerType(), v)
				ok, err := db.IsMinimumVersion(ctx)
				if err != nil {
					return err
				}
				if !ok {
					ui.PrintWarning("%s needs at least %s", db.Name(), db.MinimumVersion())
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&server, "server", false, "also print the server version")
	return cmd
}

func newConfigCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save connection settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective connection settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			file := cfg.File
			if file == "" {
				file = "(none)"
			}
			o := cfg.Options
			return ui.PrintTable([]string{"Setting", "Value"}, [][]string{
				{"config", file},
				{"driver", o.Driver},
				{"host", o.Host},
				{"user", o.User},
				{"database", o.Database},
				{"prefix", o.Prefix},
			})
		},
	}

	var output string
	save := &cobra.Command{
		Use:   "save",
		Short: "Write the effective connection settings to a config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			path, err := config.Save(cfg.Options, output)
			if err != nil {
				return err
			}
			ui.PrintSuccess("Saved %s", path)
			return nil
		},
	}
	save.Flags().StringVarP(&output, "output", "o", "", "file to write (default ~/.config/dbkit/.dbkit.yaml)")

	cmd.AddCommand(show, save)
	return cmd
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/internal/debug"
	"github.com/satishbabariya/dbkit/internal/ui"
	"github.com/satishbabariya/dbkit/internal/watch"
	"github.com/satishbabariya/dbkit/sqltext"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func newSplitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "split FILE",
		Short: "Print the statements of an SQL script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}
			stmts := sqltext.SplitSQL(string(data))
			for i, s := range stmts {
				ui.PrintStep(i+1, len(stmts), ui.HighlightSQL(s))
			}
			return nil
		},
	}
}

func newPrefixCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "prefix FILE",
		Short: "Print an SQL script with #__ replaced by the table prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := g.options(cmd)
			if err != nil {
				return err
			}
			// The driver is never connected; it only supplies the dialect's
			// literal quotes.
			db, err := database.New(opts)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read script: %w", err)
			}
			fmt.Fprintln(ui.Out, db.ReplacePrefix(string(data)))
			return nil
		},
	}
}

func newExecCommand(g *globals) *cobra.Command {
	var watchFile bool
	var transaction bool

	cmd := &cobra.Command{
		Use:   "exec FILE",
		Short: "Run an SQL script",
		Long: `Run every statement of an SQL script in order. Statements returning rows
print them as a table. With --watch the script runs again whenever the file
changes, until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			return g.withDriver(cmd, func(ctx context.Context, db *database.Driver) error {
				run := func(ctx context.Context) error {
					return runScript(ctx, db, file, transaction)
				}
				if !watchFile {
					return run(ctx)
				}

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				w, err := watch.NewWatcher(run, debug.Logger(), file)
				if err != nil {
					return err
				}
				ui.PrintInfo("Watching %s, press Ctrl+C to stop", file)
				return w.Run(ctx)
			})
		},
	}

	cmd.Flags().BoolVar(&watchFile, "watch", false, "run again when the file changes")
	cmd.Flags().BoolVar(&transaction, "transaction", false, "run the script in one transaction")
	return cmd
}

func runScript(ctx context.Context, db *database.Driver, file string, transaction bool) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	stmts := db.SplitSQL(string(data))

	run := func(ctx context.Context) error {
		for i, sql := range stmts {
			ui.PrintStep(i+1, len(stmts), ui.HighlightSQL(sql))
			if err := runStatement(ctx, db, sql); err != nil {
				return err
			}
		}
		return nil
	}
	if transaction {
		err = db.Transaction(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return err
	}
	ui.PrintSuccess("Executed %d statements", len(stmts))
	return nil
}

func runStatement(ctx context.Context, db *database.Driver, sql string) error {
	if !sqltext.ReturnsRows(sql) {
		n, err := db.ExecuteUnprepared(ctx, sql)
		if err != nil {
			return err
		}
		fmt.Fprintf(ui.Out, "%d rows affected\n", n)
		return nil
	}

	if err := db.SetQuery(ctx, sql); err != nil {
		return err
	}
	it, err := db.Iterator(ctx)
	if err != nil {
		return err
	}
	defer it.Close()

	var headers []string
	var rows [][]string
	for _, row := range it.All() {
		if headers == nil {
			headers = row.Columns()
		}
		values := row.Num()
		line := make([]string, len(values))
		for i, v := range values {
			if v == nil {
				line[i] = "NULL"
			} else {
				line[i] = cast.ToString(v)
			}
		}
		rows = append(rows, line)
	}
	if err := it.Err(); err != nil {
		return err
	}
	if headers == nil {
		fmt.Fprintln(ui.Out, "0 rows")
		return nil
	}
	return ui.PrintTable(headers, rows)
}

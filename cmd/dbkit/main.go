// Command dbkit runs SQL scripts and moves schemas and data between databases.
package main

import (
	"fmt"
	"os"

	"github.com/satishbabariya/dbkit/cmd/dbkit/commands"
	_ "github.com/satishbabariya/dbkit/database/mysql"
	_ "github.com/satishbabariya/dbkit/database/postgres"
	_ "github.com/satishbabariya/dbkit/database/sqlite"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Command dragdo keeps a reorderable checklist in a jsonbox record.
//
// Running it with no arguments opens the interactive list; see
// `dragdo --help` for the scriptable subcommands.
package main

import (
	"os"

	"github.com/Makepad-fr/dragdo/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], cli.Options{}))
}

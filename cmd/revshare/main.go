// Command revshare manages a revenue-sharing table of payment pointers.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"
)

// EnvDataDir overrides the default data directory.
const EnvDataDir = "REVSHARE_PATH"

// EnvCaller sets the identity mutating commands act as.
const EnvCaller = "REVSHARE_CALLER"

var callerFlag = &cli.StringFlag{
	Name:    "as",
	EnvVars: []string{EnvCaller},
	Usage:   "identity to act as; must match the configured owner to mutate an owned table",
}

var dataDirFlag = &cli.StringFlag{
	Name:      "datadir",
	EnvVars:   []string{EnvDataDir},
	Usage:     "directory holding the table database and config file",
	TakesFile: true,
}

var configFlag = &cli.StringFlag{
	Name:      "config",
	Usage:     "config file path (default: <datadir>/config)",
	TakesFile: true,
}

func newApp() *cli.App {
	app := &cli.App{
		Name:  "revshare",
		Usage: "manage a weighted table of payment pointers",
		Description: `revshare keeps a table of payment pointers, each with an integer weight,
   and picks one of them for a caller-supplied number in proportion to the
   accumulated weights. Keys handed out by "add" stay valid after removals.`,
		Flags: []cli.Flag{dataDirFlag, configFlag, callerFlag},
		Commands: []*cli.Command{
			addCmd,
			removeCmd,
			pickCmd,
			listCmd,
			totalCmd,
			distributeCmd,
			exportCmd,
			importCmd,
			eventsCmd,
		},
	}

	sort.Sort(cli.CommandsByName(app.Commands))
	for _, c := range app.Commands {
		sort.Sort(cli.FlagsByName(c.Flags))
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "revshare:", err)
		os.Exit(1)
	}
}

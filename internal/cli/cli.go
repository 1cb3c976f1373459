package cli

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Search     *SearchCommand
	Domains    *DomainsCommand
	Import     *ImportCommand
	Add        *AddCommand
	Open       *OpenCommand
	Forget     *ForgetCommand
	Exclusions *ExclusionsCommand
	Status     *StatusCommand
	Prune      *PruneCommand
	Purge      *PurgeCommand
	Serve      *ServeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "recall"
	parser.LongDescription = "Local browsing history store with bounded relevance search and LLM context rendering."

	cmds := &commands{
		Search:     &SearchCommand{globals: &globals, version: version},
		Domains:    &DomainsCommand{globals: &globals, version: version},
		Import:     &ImportCommand{globals: &globals, version: version},
		Add:        &AddCommand{globals: &globals, version: version},
		Open:       &OpenCommand{globals: &globals, version: version},
		Forget:     &ForgetCommand{globals: &globals, version: version},
		Exclusions: &ExclusionsCommand{globals: &globals, version: version},
		Status:     &StatusCommand{globals: &globals, version: version},
		Prune:      &PruneCommand{globals: &globals, version: version},
		Purge:      &PurgeCommand{globals: &globals, version: version},
		Serve:      &ServeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("search", "Search stored visits", "Rank stored visits against a free-text query, with optional filters.", cmds.Search)
	parser.AddCommand("domains", "List the most visited domains", "List the most visited domains across stored visits.", cmds.Domains)
	parser.AddCommand("import", "Import history export files", "Merge browser history exports (JSON or JSONC, optionally gzip or zstd compressed) into the store.", cmds.Import)
	parser.AddCommand("add", "Record a visit by hand", "Record a single URL/title visit by hand.", cmds.Add)
	parser.AddCommand("open", "Print a stored visit", "Print the stored record for a URL.", cmds.Open)
	parser.AddCommand("forget", "Delete stored visits", "Delete stored visits by URL.", cmds.Forget)
	parser.AddCommand("exclusions", "List or add exclusion rules", "List exclusion rules, or add a domain or regex rule.", cmds.Exclusions)
	parser.AddCommand("status", "Show database statistics", "Show database statistics and configuration summary.", cmds.Status)
	parser.AddCommand("prune", "Apply retention pruning", "Remove visits older than the retention period.", cmds.Prune)
	parser.AddCommand("purge", "Delete ALL stored visits", "Delete ALL stored visits. Destructive operation with safety prompt.", cmds.Purge)
	parser.AddCommand("serve", "Run the HTTP API", "Run the HTTP API over the stored history until interrupted.", cmds.Serve)

	return parser, &globals, cmds
}

// Run is the main entry point for the recall CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// go-flags requires a subcommand, but --version is valid without one.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("recall %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}

	return nil
}

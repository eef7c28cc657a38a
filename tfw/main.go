// Command tfw manages a weekly-funded TFSA ledger and its benchmark
// comparisons.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/sgallant/tfsa/cmd"
)

// completion describes the command tree for shell completion. It runs and
// exits only when the shell asks for completions.
func completion() {
	sub := make(map[string]*complete.Command)
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{}
	}
	sub["topic"] = &complete.Command{Args: predict.Set{"readme", "schedule", "benchmarks", "returns", "data-formats"}}

	tfw := &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"data-dir":             predict.Dirs("*"),
			"holdings-file":        predict.Files("*.csv"),
			"crypto-holdings-file": predict.Files("*.csv"),
		},
	}
	tfw.Complete("tfw")
}

func main() {
	completion()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

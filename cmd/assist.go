package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/sgallant/tfsa/agent"
	"google.golang.org/genai"
)

// assistCmd is the subcommand for the AI assistant.
type assistCmd struct {
	suggest int
}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "start an interactive session with the AI assistant" }
func (*assistCmd) Usage() string {
	return `tfw assist [-suggest <week>] [initial prompt]

  Start an interactive session with the AI assistant over the ledger.
  With -suggest, ask for a one-shot purchase plan for the given week
  instead of opening the session.
`
}

func (c *assistCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.suggest, "suggest", 0, "Ask for a purchase plan for this week and exit.")
}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	if c.suggest > 0 {
		sys, err := LoadSystem()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
			return subcommands.ExitFailure
		}
		plan, err := agent.Suggest(ctx, client, sys, c.suggest)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Suggestion failed:", err)
			return subcommands.ExitFailure
		}
		printMarkdown(plan)
		return subcommands.ExitSuccess
	}

	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	analyst := agent.NewAnalyst()
	bookkeeper := agent.NewBookkeeper(LoadSystem)
	a := agent.New(os.Stdout, os.Stdin, analyst, bookkeeper)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

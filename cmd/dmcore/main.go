// DMCore is an adaptive action-resolution engine for solo tabletop
// roleplay: it classifies free-text actions, asks clarifying questions
// when intent is unclear, and resolves checks against a living world.
// Usage: dmcore [--version] [--plain] [--config <file>] [--campaign <file>] [--seed <n>] [--script <file>]
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/nathoo/dmcore/cli"
	"github.com/nathoo/dmcore/config"
	"github.com/nathoo/dmcore/engine"
	"github.com/nathoo/dmcore/infer"
	"github.com/nathoo/dmcore/loader"
	"github.com/nathoo/dmcore/store"
	"github.com/nathoo/dmcore/tui"
	"github.com/nathoo/dmcore/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	var configPath string
	var campaignPath string
	var scriptFile string
	var seed int64

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("dmcore %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--config requires a file path\n")
				os.Exit(1)
			}
			i++
			configPath = args[i]
		case "--campaign":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--campaign requires a file path\n")
				os.Exit(1)
			}
			i++
			campaignPath = args[i]
		case "--seed":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--seed requires a number\n")
				os.Exit(1)
			}
			i++
			v, err := strconv.ParseInt(args[i], 10, 64)
			if err != nil {
				fmt.Fprintf(os.Stderr, "--seed: %v\n", err)
				os.Exit(1)
			}
			seed = v
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		default:
			fmt.Fprintf(os.Stderr, "Usage: dmcore [--version] [--plain] [--config <file>] [--campaign <file>] [--seed <n>] [--script <file>]\n")
			os.Exit(1)
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if campaignPath == "" {
		campaignPath = cfg.Campaign
	}

	// Campaign defaults apply when there is no persisted state and on
	// /reset.
	defaults, encounters, err := loader.Load(campaignPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading campaign: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	eng := engine.New(st.LoadState(defaults))
	eng.History = st.LoadHistory()
	eng.EventLog = st.LoadEventLog()
	eng.Encounters = encounters
	eng.SuggestWait = cfg.SuggestTimeout()
	eng.Saver = st
	if seed != 0 {
		eng.RNG = engine.NewRNG(seed)
	}

	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		client, err := infer.New(context.Background(), cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer client.Close()
		eng.Suggester = client
	}

	resetState := func() *types.WorldState {
		ws, _, err := loader.Load(campaignPath)
		if err != nil {
			ws = defaults
		}
		return ws
	}

	// Script mode: open file, force plain, echo inputs.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		c := cli.New(eng)
		c.In = f
		c.EchoInput = true
		c.ResetState = resetState
		c.Run()
		return
	}

	// Use plain CLI if --plain flag or stdout is not a terminal.
	if plain || !isTerminal() {
		c := cli.New(eng)
		c.ResetState = resetState
		c.Run()
		return
	}

	if err := tui.Run(eng); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/pawsitivecheck/syncconsole/internal/cli"
	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/entrypoint"
	"github.com/pawsitivecheck/syncconsole/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

// command is implemented by every CLI subcommand.
type command interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	cfg := config.NewConfig()

	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		logger, err := logging.New(cfg.Log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		entrypoint.Run(cfg, logger, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "sync":
		cmd = cli.NewSyncCommand(cfg)
	case "status":
		cmd = cli.NewStatusCommand(cfg)
	case "jobs":
		cmd = cli.NewJobsCommand()
	case "history":
		cmd = cli.NewHistoryCommand(cfg)
	case "create-user":
		cmd = cli.NewCreateUserCommand(cfg)
	case "version":
		fmt.Printf("syncconsole %s (%s)\n", Version, Commit)
		return
	case "-h", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve        Start the sync console (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  sync         Run one sync job and wait for the result\n")
	fmt.Fprintf(os.Stderr, "  status       Show the admin API sync status\n")
	fmt.Fprintf(os.Stderr, "  jobs         List the available sync jobs\n")
	fmt.Fprintf(os.Stderr, "  history      Show recently finished sync runs\n")
	fmt.Fprintf(os.Stderr, "  create-user  Create a console account for AUTH_MODE=local\n")
	fmt.Fprintf(os.Stderr, "  version      Print version information\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}

package main

import (
	"fmt"
	"os"

	"github.com/mrlokans/session-catalog/internal/cli"
	"github.com/mrlokans/session-catalog/internal/config"
	"github.com/mrlokans/session-catalog/internal/entrypoint"
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
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	name := os.Args[1]
	args := os.Args[2:]

	var cmd command
	switch name {
	case "export-sessions":
		cmd = cli.NewExportSessionsCommand()
	case "learning-maps":
		cmd = cli.NewLearningMapsCommand()
	case "open-sessions":
		cmd = cli.NewOpenSessionsCommand()
	case "version":
		fmt.Printf("session-catalog %s (%s)\n", Version, Commit)
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
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve            Start the snapshot API and capacity scheduler (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  export-sessions  Export the session catalogue to a spreadsheet, Elasticsearch, Kafka or the snapshot store\n")
	fmt.Fprintf(os.Stderr, "  learning-maps    Render a calendar PNG per learning map\n")
	fmt.Fprintf(os.Stderr, "  open-sessions    Report seat availability per session type\n")
	fmt.Fprintf(os.Stderr, "  version          Print the version\n")
	fmt.Fprintf(os.Stderr, "\nUse '%s <command> -h' for help on a specific command.\n", os.Args[0])
}

package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/session-catalog/internal/config"
	"github.com/mrlokans/session-catalog/internal/exporters"
	"github.com/mrlokans/session-catalog/internal/importers"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
	"github.com/mrlokans/session-catalog/internal/utils"
)

// OpenSessionsCommand writes a seat availability report per session type.
type OpenSessionsCommand struct {
	catalogFlags
	cfg *config.Config

	OutputDir    string
	SessionTypes string
}

// NewOpenSessionsCommand creates a new OpenSessionsCommand
func NewOpenSessionsCommand() *OpenSessionsCommand {
	return &OpenSessionsCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *OpenSessionsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("open-sessions", flag.ExitOnError)
	cmd.register(fs, cmd.cfg)

	fs.StringVar(&cmd.OutputDir, "output", "./open_sessions", "Directory for the reports")
	fs.StringVar(&cmd.SessionTypes, "types", "", "Comma separated session types (default: the event profile's)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s open-sessions [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Report seat availability per session type to <output>/open_<type>.xlsx.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// ReportPath returns where the report for sessionType is written.
func (cmd *OpenSessionsCommand) ReportPath(sessionType string) string {
	return filepath.Join(cmd.OutputDir, "open_"+utils.SanitizeFilename(sessionType)+".xlsx")
}

// Run executes the open sessions command
func (cmd *OpenSessionsCommand) Run() error {
	client, profile, err := cmd.open(cmd.cfg)
	if err != nil {
		return err
	}

	types := splitCSV(cmd.SessionTypes)
	if len(types) == 0 {
		types = profile.SessionTypes
	}
	if len(types) == 0 {
		return fmt.Errorf("no session types given and event %s defines none", profile.Name)
	}

	if err := os.MkdirAll(cmd.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	normalizer := importers.NewNormalizer(profile.TimezoneOffset)
	normalizer.TrackCapacity = true

	fmt.Printf("🪑 Checking open seats for %s: %v\n", profile.Title, types)

	results := importers.FanOut(context.Background(), cmd.Workers, types, func(ctx context.Context, sessionType string) error {
		report := exporters.NewCapacityReport(cmd.ReportPath(sessionType), sessionType)
		result, err := importers.NewPipeline(client, normalizer, report).Run(ctx, rainfocus.Filters{rainfocus.FilterSessionType: sessionType})
		if err != nil {
			return err
		}
		if len(result.Export.Files) == 0 {
			fmt.Printf("   ⚠️  %s: no sessions, no report written\n", sessionType)
			return nil
		}
		summary := exporters.SummarizeCapacity(result.Sessions)
		fmt.Printf("   📄 %s: %d percent of %d sessions are full\n", result.Export.Files[0], summary.PercentFull(), summary.Sessions)
		if cmd.Verbose {
			printPipelineResult(result, true)
		}
		return nil
	}, nil)

	for _, f := range importers.Failures(results) {
		fmt.Printf("   ❌ %s: %v\n", f.Input, f.Err)
	}
	if failed := len(importers.Failures(results)); failed > 0 {
		return fmt.Errorf("%d of %d session types failed", failed, len(types))
	}
	fmt.Println("\n✅ Reports written")
	return nil
}

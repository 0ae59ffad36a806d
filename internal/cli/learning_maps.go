package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/mrlokans/session-catalog/internal/config"
	"github.com/mrlokans/session-catalog/internal/entities"
	"github.com/mrlokans/session-catalog/internal/exporters"
	"github.com/mrlokans/session-catalog/internal/importers"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
)

// LearningMapsCommand renders one calendar PNG per learning map.
type LearningMapsCommand struct {
	catalogFlags
	cfg *config.Config

	OutputDir string
	Category  string
	List      bool
}

// NewLearningMapsCommand creates a new LearningMapsCommand
func NewLearningMapsCommand() *LearningMapsCommand {
	return &LearningMapsCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *LearningMapsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("learning-maps", flag.ExitOnError)
	cmd.register(fs, cmd.cfg)

	fs.StringVar(&cmd.OutputDir, "output", "./learning_maps", "Directory for the calendar images, one subdirectory per category")
	fs.StringVar(&cmd.Category, "category", "", "Only render learning maps of this category (case-insensitive)")
	fs.BoolVar(&cmd.List, "list", false, "List learning maps without rendering")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s learning-maps [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Discover learning maps from the session catalogue and render a calendar\n")
		fmt.Fprintf(os.Stderr, "per map at <output>/<category>/<name>.png.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// selectMaps keeps maps of the requested category.
func selectMaps(maps []entities.LearningMap, category string) []entities.LearningMap {
	if category == "" {
		return maps
	}
	var out []entities.LearningMap
	for _, m := range maps {
		if strings.EqualFold(m.Category, category) {
			out = append(out, m)
		}
	}
	return out
}

// Run executes the learning maps command
func (cmd *LearningMapsCommand) Run() error {
	client, profile, err := cmd.open(cmd.cfg)
	if err != nil {
		return err
	}
	days, err := profile.Days()
	if err != nil {
		return err
	}

	ctx := context.Background()
	attrs, err := client.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch catalogue: %w", err)
	}
	maps, err := importers.LearningMapsFromCatalog(attrs)
	if err != nil {
		return err
	}
	maps = selectMaps(maps, cmd.Category)
	fmt.Printf("🗺️  Found %d learning maps for %s\n", len(maps), profile.Title)

	if cmd.List {
		for _, m := range maps {
			fmt.Printf("   %s (%s)\n", m, m.ID)
		}
		return nil
	}

	renderer := exporters.NewCalendarRenderer(cmd.OutputDir, days)
	normalizer := importers.NewNormalizer(profile.TimezoneOffset)

	var done atomic.Int32
	results := importers.FanOut(ctx, cmd.Workers, maps, func(ctx context.Context, m entities.LearningMap) error {
		calendar := renderer.For(m)
		result, err := importers.NewPipeline(client, normalizer, calendar).Run(ctx, rainfocus.Filters{rainfocus.FilterLearningMap: m.ID})
		if err != nil {
			return err
		}
		if len(result.Export.Files) == 0 {
			fmt.Printf("   ⚠️  %s: no sessions, nothing rendered\n", m)
			return nil
		}
		if cmd.Verbose {
			for _, s := range calendar.Skipped() {
				fmt.Printf("   ↪ %s: skipped %s (%s)\n", m, s.Code, s.Reason)
			}
		}
		fmt.Printf("   📄 %s: %d sessions drawn, %d skipped\n",
			result.Export.Files[0], result.Export.SessionsProcessed, result.Export.SessionsSkipped)
		return nil
	}, func(res importers.TaskResult[entities.LearningMap]) {
		n := done.Add(1)
		if res.Failed() {
			fmt.Printf("-- FAILED %s: %v --\n", res.Input, res.Err)
			return
		}
		fmt.Printf("-- DONE %d/%d --\n", n, len(maps))
	})

	failed := importers.Failures(results)
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d learning maps failed", len(failed), len(maps))
	}
	fmt.Println("\n✅ All learning maps rendered")
	return nil
}

package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrlokans/session-catalog/internal/config"
	"github.com/mrlokans/session-catalog/internal/database"
	"github.com/mrlokans/session-catalog/internal/database/snapshots"
	"github.com/mrlokans/session-catalog/internal/exporters"
	"github.com/mrlokans/session-catalog/internal/importers"
	"github.com/mrlokans/session-catalog/internal/rainfocus"
)

// ExportSessionsCommand exports the whole catalogue, or one session type,
// to a spreadsheet and optionally to Elasticsearch, Kafka and the snapshot
// store.
type ExportSessionsCommand struct {
	catalogFlags
	cfg *config.Config

	Output       string
	SessionType  string
	Elastic      bool
	ElasticURLs  string
	ElasticIndex string
	Kafka        bool
	KafkaBrokers string
	KafkaTopic   string
	Snapshot     bool
	DatabasePath string
	DryRun       bool
}

// NewExportSessionsCommand creates a new ExportSessionsCommand
func NewExportSessionsCommand() *ExportSessionsCommand {
	return &ExportSessionsCommand{cfg: config.NewConfig()}
}

// ParseFlags parses command line flags
func (cmd *ExportSessionsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export-sessions", flag.ExitOnError)
	cmd.register(fs, cmd.cfg)

	fs.StringVar(&cmd.Output, "output", "", "Spreadsheet path (default: <output dir>/sessions_<event>.xlsx)")
	fs.StringVar(&cmd.SessionType, "session-type", "", "Only export one session type, e.g. BRK")
	fs.BoolVar(&cmd.Elastic, "elastic", cmd.cfg.Elasticsearch.Enabled, "Also index sessions into Elasticsearch")
	fs.StringVar(&cmd.ElasticURLs, "elastic-addresses", strings.Join(cmd.cfg.Elasticsearch.Addresses, ","), "Comma separated Elasticsearch addresses")
	fs.StringVar(&cmd.ElasticIndex, "elastic-index", cmd.cfg.Elasticsearch.Index, "Elasticsearch index name")
	fs.BoolVar(&cmd.Kafka, "kafka", cmd.cfg.Kafka.Enabled, "Also publish sessions to Kafka")
	fs.StringVar(&cmd.KafkaBrokers, "kafka-brokers", strings.Join(cmd.cfg.Kafka.Brokers, ","), "Comma separated Kafka brokers")
	fs.StringVar(&cmd.KafkaTopic, "kafka-topic", cmd.cfg.Kafka.Topic, "Kafka topic")
	fs.BoolVar(&cmd.Snapshot, "snapshot", false, "Also store the run in the snapshot database")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.cfg.Database.Path, "Snapshot database path")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Fetch and normalize without writing anything")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export-sessions [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Fetch every session of an event and export it to a spreadsheet.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Export the default event to ./output/sessions_amsterdam-2024.xlsx:\n")
		fmt.Fprintf(os.Stderr, "  %s export-sessions\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  # Export breakouts and index them:\n")
		fmt.Fprintf(os.Stderr, "  %s export-sessions -session-type BRK -elastic\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Filters returns the search filters selected by the flags.
func (cmd *ExportSessionsCommand) Filters() rainfocus.Filters {
	filters := rainfocus.Filters{}
	if cmd.SessionType != "" {
		filters[rainfocus.FilterSessionType] = cmd.SessionType
	}
	return filters
}

// Run executes the export command
func (cmd *ExportSessionsCommand) Run() error {
	client, profile, err := cmd.open(cmd.cfg)
	if err != nil {
		return err
	}

	fmt.Printf("📅 %s\n", profile.Title)
	if cmd.DryRun {
		fmt.Println("🔍 DRY RUN MODE - No files will be written")
	}

	ctx := context.Background()
	filters := cmd.Filters()

	var sinks exporters.Multi
	var closers []func() error
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	if !cmd.DryRun {
		if cmd.Output == "" {
			cmd.Output = filepath.Join(cmd.cfg.Output.Dir, "sessions_"+profile.Name+".xlsx")
		}
		if err := os.MkdirAll(filepath.Dir(cmd.Output), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		sinks = append(sinks, exporters.NewSpreadsheetExporter(cmd.Output))

		if cmd.Elastic {
			indexer, err := exporters.NewElasticIndexer(splitCSV(cmd.ElasticURLs), cmd.ElasticIndex, profile.Name)
			if err != nil {
				return err
			}
			if err := indexer.Ping(ctx); err != nil {
				return err
			}
			if err := indexer.EnsureIndex(ctx); err != nil {
				return err
			}
			sinks = append(sinks, indexer)
		}

		if cmd.Kafka {
			publisher := exporters.NewKafkaPublisher(splitCSV(cmd.KafkaBrokers), cmd.KafkaTopic, profile.Name)
			closers = append(closers, publisher.Close)
			sinks = append(sinks, publisher)
		}

		if cmd.Snapshot {
			db, err := database.NewDatabase(cmd.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open snapshot database: %w", err)
			}
			closers = append(closers, db.Close)
			sinks = append(sinks, snapshots.NewExporter(snapshots.NewRepository(db.DB), profile.Name, filters.String()))
		}
	}

	var sink importers.Exporter
	if len(sinks) > 0 {
		sink = sinks
	}
	pipeline := importers.NewPipeline(client, importers.NewNormalizer(profile.TimezoneOffset), sink)

	fmt.Printf("\n📖 Fetching sessions (%s)...\n", filters)
	result, err := pipeline.Run(ctx, filters)
	if err != nil {
		return err
	}

	printPipelineResult(result, cmd.Verbose)
	if cmd.DryRun {
		fmt.Println("\n✅ Dry run complete. Use without -dry-run to export.")
		return nil
	}

	fmt.Println("\n✅ Export complete")
	for _, f := range result.Export.Files {
		fmt.Printf("   📄 %s\n", f)
	}
	return nil
}

func printPipelineResult(result importers.Result, verbose bool) {
	fmt.Printf("📚 Fetched %d items: %d sessions, %d rejected\n",
		result.Fetched, len(result.Sessions), len(result.Rejected))
	if result.Export.SessionsProcessed > 0 || result.Export.SessionsFailed > 0 {
		fmt.Printf("💾 Exported %d, skipped %d, failed %d\n",
			result.Export.SessionsProcessed, result.Export.SessionsSkipped, result.Export.SessionsFailed)
	}
	if len(result.Rejected) == 0 {
		return
	}
	fmt.Println("\n⚠️  Rejected records:")
	for i, r := range result.Rejected {
		if !verbose && i == 10 {
			fmt.Printf("   ... and %d more (use -verbose to list all)\n", len(result.Rejected)-10)
			break
		}
		fmt.Printf("   - %s: %v\n", r.Code, r.Err)
	}
}

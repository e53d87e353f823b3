package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"cc-insights-go/internal/actionable"
	"cc-insights-go/internal/aggregator"
	"cc-insights-go/internal/config"
	"cc-insights-go/internal/dataset"
	"cc-insights-go/internal/enrichment"
	"cc-insights-go/internal/logger"
	"cc-insights-go/internal/matcher"
	"cc-insights-go/internal/pipeline"
	"cc-insights-go/internal/report"
	"cc-insights-go/internal/storage"
)

const usage = `usage: cc-coach <command> [flags]

commands:
  validate   check every conversation folder under <root>/<date>
  run        enrich every conversation under <root>/<date>
  report     enrich a date batch and export an xlsx report
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		err = runValidate(os.Args[2:])
	case "run":
		err = runBatch(os.Args[2:])
	case "report":
		err = runReport(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	root := fs.String("root", "data", "dataset root directory")
	date := fs.String("date", "", "batch date (YYYY-MM-DD)")
	fs.Parse(args)
	if *date == "" {
		return fmt.Errorf("-date is required")
	}

	results, err := dataset.ValidateDate(*root, *date)
	if err != nil {
		return err
	}

	invalid := 0
	for _, res := range results {
		if res.Valid {
			fmt.Printf("VALID    %s\n", res.ConversationID)
			continue
		}
		invalid++
		fmt.Printf("INVALID  %s\n", res.ConversationID)
		for _, e := range res.Errors {
			fmt.Printf("         %s\n", e)
		}
	}
	fmt.Printf("\n%d conversations, %d invalid\n", len(results), invalid)
	if invalid > 0 {
		return fmt.Errorf("%d invalid conversations", invalid)
	}
	return nil
}

func runBatch(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	root := fs.String("root", "data", "dataset root directory")
	date := fs.String("date", "", "batch date (YYYY-MM-DD)")
	cfgPath := fs.String("config", "", "optional config file")
	fs.Parse(args)
	if *date == "" {
		return fmt.Errorf("-date is required")
	}

	p, store, _, err := newPipeline(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	res, records, err := p.RunBatch(context.Background(), *root, *date)
	if err != nil {
		return err
	}

	ins := aggregator.Aggregate(records)
	fmt.Printf("date %s: %d enriched, %d skipped, %d failed, %d phrase matches\n",
		res.Date, res.Enriched, res.Skipped, len(res.Failed), ins.TotalMatches)
	for _, card := range actionable.Generate(ins) {
		fmt.Printf("  insight: %s\n  action:  %s\n", card.Insight, card.Action)
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d conversations failed", len(res.Failed))
	}
	return nil
}

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	root := fs.String("root", "data", "dataset root directory")
	date := fs.String("date", "", "batch date (YYYY-MM-DD)")
	out := fs.String("out", "", "output xlsx path (default reports/<date>.xlsx)")
	cfgPath := fs.String("config", "", "optional config file")
	fs.Parse(args)
	if *date == "" {
		return fmt.Errorf("-date is required")
	}

	p, store, cfg, err := newPipeline(*cfgPath)
	if err != nil {
		return err
	}
	defer store.Close()

	_, records, err := p.RunBatch(context.Background(), *root, *date)
	if err != nil {
		return err
	}
	ins := aggregator.Aggregate(records)
	cards := actionable.Generate(ins)

	path := *out
	if path == "" {
		path = filepath.Join(cfg.Report.OutputDir, *date+".xlsx")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := report.Write(path, *date, records, ins, cards); err != nil {
		return err
	}
	fmt.Printf("report written to %s (%d conversations)\n", path, len(records))
	return nil
}

func newPipeline(cfgPath string) (*pipeline.Pipeline, storage.Storage, *config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}

	var store storage.Storage
	if cfg.Database.UseInMemory {
		store = storage.NewMemoryStorage()
	} else {
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			return nil, nil, nil, err
		}
	}

	m, err := matcher.New(cfg.Dictionary())
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New().WithField("component", "cc-coach")
	return pipeline.New(store, enrichment.NewBuilder(m), log), store, cfg, nil
}

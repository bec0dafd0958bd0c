package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"aram-stats/internal/config"
	"aram-stats/internal/database"
	"aram-stats/internal/db"
	"aram-stats/internal/engine"
	"aram-stats/internal/logger"
	"aram-stats/internal/metrics"
	"aram-stats/internal/normalize"
	"aram-stats/internal/repository"
	"aram-stats/internal/service"
	"aram-stats/internal/source"

	"github.com/rs/zerolog"
)

const usage = `usage: aramstats <command> [flags]

commands:
  import   [-name NAME] <path|url>     store a CSV in the dataset database
  datasets                             list stored datasets
  delete   <dataset-id>                remove a stored dataset
  report   [flags] <view>              print a statistics view

report views: overview, champions, items, boots, combos, runes, spells,
              synergy, detail, rows
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	log := logger.NewWithWriter(stderr, logger.ParseLevel(os.Getenv("LOG_LEVEL")))
	cfg, err := config.Load(log)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "import":
		err = runImport(ctx, cfg, log, rest, stdout)
	case "datasets":
		err = runDatasets(ctx, cfg, log, stdout)
	case "delete":
		err = runDelete(ctx, cfg, log, rest, stdout)
	case "report":
		err = runReport(ctx, cfg, log, rest, stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
		return 1
	}
	return 0
}

// app holds the wired service and the resources to release after a command.
type app struct {
	svc *service.StatsService
	db  *sql.DB
}

func (a *app) Close() {
	a.db.Close()
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	sqlDB, err := database.Open(cfg.DBPath, log)
	if err != nil {
		return nil, err
	}

	m, err := metrics.New()
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	svc := service.NewStatsService(
		cfg,
		normalize.New(log),
		engine.New(engine.NewCache(cfg.CacheMaxEntries), m, log),
		repository.NewDatasetRepository(sqlDB, db.New(sqlDB), log),
		source.NewHTTPFetcher(log),
		m,
		log,
	)
	return &app{svc: svc, db: sqlDB}, nil
}

func runImport(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	name := fs.String("name", "", "Dataset name (defaults to the location)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one path or URL")
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	ds, created, err := a.svc.Import(ctx, *name, fs.Arg(0))
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(stdout, "stored %s (%d rows) as %s\n", ds.Name, ds.RowCount, ds.ID)
	} else {
		fmt.Fprintf(stdout, "already stored as %s (%s)\n", ds.ID, ds.Name)
	}
	return nil
}

func runDatasets(ctx context.Context, cfg *config.Config, log zerolog.Logger, stdout io.Writer) error {
	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.svc.Datasets(ctx)
	if err != nil {
		return err
	}
	return renderDatasets(stdout, list)
}

func runDelete(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one dataset id")
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.svc.DeleteDataset(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "deleted %s\n", args[0])
	return nil
}

func runReport(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	datasetID := fs.String("dataset", "", "Stored dataset id to report on")
	location := fs.String("source", "", "CSV path or URL (defaults to DATA_PATH, or Postgres when DATABASE_URL is set)")
	slots := fs.String("slots", "", "Comma separated item slots for combos, e.g. item0,item1,item2")
	allow := fs.String("allow", "", "Comma separated item allow-list for the items view")
	champion := fs.String("champion", "", "Champion for synergy and detail")
	top := fs.Int("top", engine.DefaultTopN, "Number of synergy partners")
	offset := fs.Int("offset", 0, "First row for the rows view")
	limit := fs.Int("limit", 20, "Row count for the rows view")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one view")
	}
	view := fs.Arg(0)

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	svc := a.svc

	switch {
	case *datasetID != "":
		_, err = svc.LoadDataset(ctx, *datasetID)
	case *location != "":
		_, err = svc.LoadLocation(ctx, *location)
	default:
		_, err = svc.LoadStartup(ctx)
	}
	if err != nil {
		return err
	}

	switch view {
	case "overview":
		ov, err := svc.Overview(ctx)
		if err != nil {
			return err
		}
		return renderOverview(stdout, ov)
	case "champions":
		rows, err := svc.Champions(ctx)
		return renderStats(stdout, "champion", rows, err)
	case "items":
		rows, err := svc.Items(ctx, splitFlag(*allow))
		return renderStats(stdout, "item", rows, err)
	case "boots":
		rows, err := svc.Boots(ctx)
		return renderStats(stdout, "boots", rows, err)
	case "combos":
		rows, err := svc.CoreCombos(ctx, splitFlag(*slots))
		return renderStats(stdout, "core combo", rows, err)
	case "runes":
		rows, err := svc.Runes(ctx)
		return renderStats(stdout, "primary / secondary", rows, err)
	case "spells":
		rows, err := svc.Spells(ctx)
		return renderStats(stdout, "spell1 / spell2", rows, err)
	case "synergy":
		rows, err := svc.Synergy(ctx, *champion, *top)
		return renderStats(stdout, "teammate", rows, err)
	case "detail":
		d, err := svc.ChampionDetail(ctx, *champion)
		if err != nil {
			return err
		}
		return renderDetail(stdout, d)
	case "rows":
		page, err := svc.Rows(ctx, *offset, *limit)
		if err != nil {
			return err
		}
		return renderRows(stdout, page)
	default:
		return fmt.Errorf("unknown view %q", view)
	}
}

func splitFlag(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

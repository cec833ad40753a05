// Command loader imports the dangerous-goods catalog workbook into the
// relational store and emits a catalog-updated event per substance so
// the index worker refreshes the vector side.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazref/hazsearch/internal/bootstrap"
	"github.com/hazref/hazsearch/internal/config"
	"github.com/hazref/hazsearch/internal/infrastructure/catalog/xlsx"
	"github.com/hazref/hazsearch/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("loader", cfg.LogLevel)
	slog.SetDefault(logger)

	workbookPath := flag.String("workbook", cfg.CatalogWorkbookPath, "path to the catalog xlsx workbook")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, report, err := xlsx.ReadCatalog(*workbookPath)
	if err != nil {
		log.Fatalf("read catalog workbook: %v", err)
	}
	logger.Info("catalog workbook parsed",
		"path", *workbookPath,
		"parsed", report.Parsed,
		"skipped", report.Skipped,
	)

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	imported, err := app.ImportUC.Import(ctx, records)
	if err != nil {
		log.Fatalf("import catalog: %v", err)
	}
	logger.Info("catalog import completed", "imported", imported)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
)

func main() {
	var (
		backendFlag = flag.String("backend", "", "storage backend (file, memory, sqlite); defaults to DATA_BACKEND")
		fileFlag    = flag.String("file", "", "data file path for the file backend; defaults to DATA_FILE_PATH")
		dbFlag      = flag.String("db", "", "database path for the sqlite backend; defaults to SQLITE_DB_PATH")
		outFlag     = flag.String("out", ".", "output directory for exported files")
		formatFlag  = flag.String("format", "csv", "export format: csv, xlsx or all")
		sortFlag    = flag.String("sort", "date", "sort key: date, description, category or amount")
		dirFlag     = flag.String("dir", "desc", "sort direction: asc or desc")
	)
	flag.Parse()

	logger := cli.SetupLogger().WithComponent(applog.ComponentExport)
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	if *backendFlag != "" {
		cfg.DataBackend = *backendFlag
	}
	if *fileFlag != "" {
		cfg.DataFilePath = *fileFlag
	}
	if *dbFlag != "" {
		cfg.SQLiteDBPath = *dbFlag
	}

	formats, err := resolveFormats(*formatFlag)
	if err != nil {
		logger.Error("Invalid export format", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result := cli.OpenBackend(ctx, logger, cfg)
	defer func() {
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	}()

	expenses := export.SortExpenses(result.Store.GetAll(ctx),
		export.SortKey(*sortFlag), export.Direction(*dirFlag))

	stamp := time.Now().Format("2006-01-02")

	g, _ := errgroup.WithContext(ctx)
	for _, format := range formats {
		path := filepath.Join(*outFlag, fmt.Sprintf("expenses-%s.%s", stamp, format))
		g.Go(func() error {
			return writeFile(path, expenses, format)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Export failed",
			applog.FieldError, err,
			applog.FieldRecordCount, len(expenses))
		os.Exit(1)
	}

	logger.Info("Export complete",
		applog.FieldRecordCount, len(expenses),
		applog.FieldExportFmt, *formatFlag,
		"output_dir", *outFlag)
}

// resolveFormats expands the format flag into the list of formats to write.
func resolveFormats(s string) ([]export.Format, error) {
	if s == "all" {
		return []export.Format{export.FormatCSV, export.FormatXLSX}, nil
	}
	format, err := export.ParseFormat(s)
	if err != nil {
		return nil, err
	}
	return []export.Format{format}, nil
}

func writeFile(path string, expenses []core.Expense, format export.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(f, expenses, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/deanshub/fintrack/internal/api"
	"github.com/deanshub/fintrack/internal/config"
	"github.com/deanshub/fintrack/internal/ledger"
	"github.com/deanshub/fintrack/internal/logger"
	"github.com/deanshub/fintrack/internal/store"
)

const version = "1.0.0"

func main() {
	serveFlag := flag.Bool("serve", false, "Run the HTTP API server instead of converting files")
	dataFlag := flag.String("data", "", "Data directory (defaults to DATA_DIR or ./data)")
	categorizeFlag := flag.Bool("categorize", false, "Re-run auto-categorization over the whole ledger and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `fintrack - bank statement to ledger converter

Converts Isracard and Bank Hapoalim statement PDFs into a deduplicated,
auto-categorized transaction ledger stored as monthly JSON files.

Usage:
  fintrack [flags] <statement.pdf> [statement2.pdf ...]
  fintrack -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Ingest statements into the ledger
  fintrack 5702_20240315.pdf current_account_operations.pdf

  # Run the HTTP API
  fintrack -serve

  # Re-run categorization after editing category rules
  fintrack -categorize

Supported statements:
  NNNN_YYYYMMDD.pdf             - Isracard card statement (NNNN = card suffix)
  current_account_operations*   - Bank Hapoalim account statement
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("fintrack v%s\n", version)
		os.Exit(0)
	}
	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	cfg := config.Load()
	if *dataFlag != "" {
		cfg.DataDir = *dataFlag
	}

	st, err := store.NewFileStore(cfg.DataDir)
	if err != nil {
		fatalf("Error: %v\n", err)
	}

	if *serveFlag {
		runServer(cfg, st)
		return
	}

	if *categorizeFlag {
		categories, err := st.ReadCategories()
		if err != nil {
			fatalf("Error: %v\n", err)
		}
		changed, err := ledger.Recategorize(st, categories)
		if err != nil {
			fatalf("Error: %v\n", err)
		}
		fmt.Printf("Recategorized %d transaction(s)\n", changed)
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	for _, inputPath := range flag.Args() {
		if err := processFile(st, inputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

func processFile(st *store.FileStore, inputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if ext := strings.ToLower(filepath.Ext(inputPath)); ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	fmt.Printf("Processing: %s\n", inputPath)

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	result, err := ledger.ConvertDocument(data, filepath.Base(inputPath))
	if err != nil {
		return err
	}

	fmt.Printf("  Source: %s\n", result.Source)
	fmt.Printf("  Found %d transaction(s)\n", len(result.Transactions))
	for _, warning := range result.Warnings {
		fmt.Printf("  Warning: %s\n", warning)
	}

	categories, err := st.ReadCategories()
	if err != nil {
		return err
	}
	ingested, err := ledger.Ingest(st, categories, ledger.FromConversion(result))
	if err != nil {
		return err
	}

	fmt.Printf("  Added %d, skipped %d duplicate(s)\n", ingested.Added, ingested.Skipped)
	fmt.Println("  Done.")
	return nil
}

func runServer(cfg config.Config, st *store.FileStore) {
	log := logger.New(cfg.LogLevel)

	app := fiber.New(fiber.Config{
		AppName:   "fintrack",
		BodyLimit: cfg.MaxUploadSizeMB * 1024 * 1024,
	})

	h := &api.Handler{Store: st, Log: log}
	h.RegisterRoutes(app)

	log.Info().
		Str("port", cfg.Port).
		Str("data", st.Dir()).
		Msg("starting server")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

// Command signdict extracts structured sign entries from printed
// sign-language dictionary PDFs: images written under an alphabetical
// tree, entries stored in SQLite and optionally exported as NDJSON.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/senalab/signdict"
	"github.com/senalab/signdict/export"
	"github.com/senalab/signdict/store"
)

func main() {
	cmd := &cli.Command{
		Name:  "signdict",
		Usage: "Extract sign-language dictionary entries from PDFs",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "pdf",
				Usage:    "Input PDF file path (repeatable)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "output-dir",
				Aliases:  []string{"o"},
				Usage:    "Directory for extracted sign images",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database path",
				Value: "signdict.db",
			},
			&cli.StringFlag{
				Name:  "ndjson",
				Usage: "Write entries as NDJSON to this path",
			},
			&cli.IntFlag{
				Name:  "start-page",
				Usage: "First page to process (1-indexed)",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "end-page",
				Usage: "Last page to process (1-indexed, 0 = all)",
			},
			&cli.StringFlag{
				Name:  "language-code",
				Usage: "Sign language code",
				Value: "lsch",
			},
			&cli.StringFlag{
				Name:  "language-name",
				Usage: "Sign language name",
				Value: "Lengua de Señas Chilena",
			},
			&cli.StringFlag{
				Name:  "target-language",
				Usage: "Target spoken language code",
				Value: "es",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "Dictionary region",
			},
			&cli.StringFlag{
				Name:  "dict-version",
				Usage: "Dictionary version",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Extract without writing to the database",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "info",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	logger, err := buildLogger(cmd.String("log-level"))
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Initialise pdfium
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	defer pool.Close()

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	cfg := signdict.DefaultConfig()
	cfg.Logger = logger

	extractor := signdict.NewExtractorWithConfig(instance, cfg)

	writer, err := export.NewImageWriter(cmd.String("output-dir"), logger)
	if err != nil {
		return err
	}
	extractor.SetImageSaver(writer)

	startPage := cmd.Int("start-page") - 1
	endPage := cmd.Int("end-page") - 1

	merged := &signdict.Result{}
	for _, path := range cmd.StringSlice("pdf") {
		logger.Info("processing PDF", zap.String("path", path))

		result, err := extractor.ProcessFile(path, startPage, endPage)
		if err != nil {
			logger.Error("failed to process PDF", zap.String("path", path), zap.Error(err))
			continue
		}
		merged.Merge(result)
	}

	if len(merged.Entries) == 0 && len(merged.Errors) == 0 {
		return fmt.Errorf("no PDFs were successfully processed")
	}

	report := merged.Validate()
	logSummary(logger, report)

	if ndjsonPath := cmd.String("ndjson"); ndjsonPath != "" {
		if err := export.WriteNDJSONFile(ndjsonPath, merged); err != nil {
			return err
		}
		logger.Info("wrote NDJSON export", zap.String("path", ndjsonPath))
	}

	if cmd.Bool("dry-run") {
		logger.Info("dry-run mode: skipping database storage")
		return nil
	}

	return saveToDatabase(cmd, logger, merged, report)
}

func saveToDatabase(cmd *cli.Command, logger *zap.Logger, result *signdict.Result, report signdict.ValidationReport) error {
	db, err := store.Open(cmd.String("db"))
	if err != nil {
		return err
	}
	defer db.Close()

	dictID, err := db.UpsertDictionary(store.Dictionary{
		LanguageCode:   cmd.String("language-code"),
		LanguageName:   cmd.String("language-name"),
		TargetLanguage: cmd.String("target-language"),
		Region:         cmd.String("region"),
		Version:        cmd.String("dict-version"),
	})
	if err != nil {
		return err
	}

	saved, err := db.SaveResult(dictID, cmd.String("target-language"), result)
	if err != nil {
		return err
	}

	for _, path := range cmd.StringSlice("pdf") {
		if err := db.LogExtraction(dictID, path, report, cmd.Int("start-page"), cmd.Int("end-page")); err != nil {
			return err
		}
	}

	logger.Info("saved signs to database",
		zap.Int("signs", saved),
		zap.String("db", cmd.String("db")))
	return nil
}

func logSummary(logger *zap.Logger, report signdict.ValidationReport) {
	logger.Info("extraction summary",
		zap.Int("total_entries", report.TotalEntries),
		zap.Int("successful", report.Successful),
		zap.Int("failed", report.Failed),
		zap.String("success_rate", report.SuccessRate),
		zap.Int("without_images", report.EntriesWithoutImages),
		zap.Int("without_definition", report.EntriesWithoutDefinition),
		zap.Int("without_translations", report.EntriesWithoutTranslations))

	if len(report.DuplicateHeadwords) > 0 {
		logger.Warn("duplicate headword variants found",
			zap.Strings("headwords", report.DuplicateHeadwords))
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

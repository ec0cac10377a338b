package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Ayash-Bera/student-lookup/internal/config"
	"github.com/Ayash-Bera/student-lookup/internal/database"
	"github.com/Ayash-Bera/student-lookup/internal/store"
	"github.com/Ayash-Bera/student-lookup/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	file    = flag.String("file", "records.json", "JSON array export of student documents")
	drop    = flag.Bool("drop", false, "Drop the collection before importing")
	dryRun  = flag.Bool("dry-run", false, "Validate the export without writing to MongoDB")
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.InitLogger(cfg.Log.Level)
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Import failed")
		os.Exit(1)
	}
}

// run owns every connection it opens, so deferred closes run before main exits.
func run(cfg *config.Config, logger *logrus.Logger) error {
	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read export %s: %w", *file, err)
	}

	docs, rejected, err := store.DecodeExport(data)
	if err != nil {
		return err
	}
	for _, r := range rejected {
		logger.WithError(r.Err).WithField("index", r.Index).Warn("Skipping document")
	}

	logger.WithFields(logrus.Fields{
		"file":     *file,
		"valid":    len(docs),
		"rejected": len(rejected),
	}).Info("Export parsed")

	if *dryRun {
		logger.Info("DRY RUN: nothing written")
		return nil
	}

	if err := cfg.ValidateMongo(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Audit rows are not written by the importer, so Postgres stays closed.
	dbManager, err := database.NewManager(ctx, &database.Config{
		MongoURI: cfg.Mongo.URI,
		MongoDB:  cfg.Mongo.Database,
		RedisURL: cfg.Redis.URL,
		LogLevel: cfg.Log.Level,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database manager: %w", err)
	}
	defer dbManager.Close()

	gateway := store.NewMongoGateway(dbManager.Collection(cfg.Mongo.Collection), logger)

	if *drop {
		if err := gateway.Drop(ctx); err != nil {
			return err
		}
		logger.WithField("collection", cfg.Mongo.Collection).Info("Collection dropped")
	}

	inserted, err := gateway.InsertMany(ctx, docs)
	if err != nil {
		return err
	}

	// Cached lookups would hide the new documents until they expire.
	if dbManager.Redis != nil {
		cleared, err := database.NewCache(dbManager.Redis, logger).ClearLookupCache(ctx)
		if err != nil {
			logger.WithError(err).Warn("Failed to clear lookup cache")
		} else {
			logger.WithField("keys", cleared).Debug("Lookup cache cleared")
		}
	}

	logger.WithFields(logrus.Fields{
		"collection": cfg.Mongo.Collection,
		"inserted":   inserted,
	}).Info("Import completed")
	return nil
}

package main

import (
	"context"
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/shadowcyng/ecomlytics/database"
	"github.com/shadowcyng/ecomlytics/generator"
	"github.com/shadowcyng/ecomlytics/ingest"
)

// Stage 1+2 of the pipeline: generate a synthetic snapshot and load it
// into the analytics tables. Exits non-zero on any failure.
func main() {
	var (
		customers = flag.Int("customers", 0, "customer count (default from config)")
		products  = flag.Int("products", 0, "product count (default from config)")
		keep      = flag.Bool("keep", false, "keep existing rows instead of truncating first")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debugf("No .env file loaded: %v", err)
	}

	cfg := generator.DefaultConfig()
	if seedEnv := os.Getenv("SEED"); seedEnv != "" {
		seed, err := strconv.ParseInt(seedEnv, 10, 64)
		if err != nil {
			log.Fatalf("Invalid SEED value %q: %v", seedEnv, err)
		}
		cfg.Seed = seed
	}
	if *customers > 0 {
		cfg.CustomerCount = *customers
	}
	if *products > 0 {
		cfg.ProductCount = *products
	}

	gen, err := generator.New(cfg)
	if err != nil {
		log.Fatalf("Invalid generator configuration: %v", err)
	}

	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	ctx := context.Background()

	if err := ingest.CreateSchema(ctx, dbClient.DB); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	if !*keep {
		if err := ingest.Reset(ctx, dbClient.DB); err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	ds, err := gen.Generate()
	if err != nil {
		log.Fatalf("Data generation failed: %v", err)
	}

	if err := ingest.NewIngestor(dbClient.DB).Ingest(ctx, ds); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	log.Info("Generate and ingest completed")
}

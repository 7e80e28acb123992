package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/codefromthecrypt/routeguide/internal/adapters/postgres"
	"github.com/codefromthecrypt/routeguide/internal/core/domain"
	"github.com/codefromthecrypt/routeguide/internal/pkg/config"
)

// Loads the feature dataset JSON into postgres so the API can run with
// data.backend=postgres.
func main() {
	cfg, err := config.Load("routeguide-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	path := cfg.Data.Features
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}

	var features []domain.Feature
	if err := json.Unmarshal(data, &features); err != nil {
		log.Fatalf("parse %s: %v", path, err)
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	repo := postgres.NewFeatureRepo(db)
	if err := repo.UpsertBatch(ctx, features); err != nil {
		log.Fatalf("upsert features: %v", err)
	}

	log.Printf("ingested %d features from %s", len(features), path)
}

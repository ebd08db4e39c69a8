package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/mhartung/ablage/internal/cloudpath"
	"github.com/mhartung/ablage/internal/knowledge"
	"github.com/mhartung/ablage/internal/service"
	"github.com/mhartung/ablage/internal/storage"
)

// initHistory opens the move-history database with proper path expansion
// and runs pending migrations.
func initHistory(ctx context.Context) (service.History, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/ablage/history.db"
	}
	dbPath = cloudpath.ExpandPath(dbPath)

	history, err := storage.NewSQLiteHistory(dbPath)
	if err != nil {
		return nil, err
	}

	if err := history.Migrate(ctx); err != nil {
		_ = history.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return history, nil
}

// openKnowledge loads the knowledge store for a source directory. The
// file location follows the cloud detection rules unless overridden in
// the config.
func openKnowledge(sourceDir string) (*knowledge.Store, error) {
	path := viper.GetString("knowledge.path")
	if path == "" {
		detector := cloudpath.NewDetector(cloudpath.DefaultProviders())
		path = detector.KnowledgeFilePath(sourceDir)
	} else {
		path = cloudpath.ExpandPath(path)
	}

	store := knowledge.NewStore(path, knowledge.DefaultCategories(), knowledge.LegacyMigrations())
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("failed to load knowledge file: %w", err)
	}
	if err := store.EnsureDefaults(); err != nil {
		return nil, fmt.Errorf("failed to initialize categories: %w", err)
	}
	return store, nil
}

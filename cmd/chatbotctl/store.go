package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/socvr/chatbot-go/pkg/config"
	"github.com/socvr/chatbot-go/pkg/db"
	"github.com/socvr/chatbot-go/pkg/store"
	gormstore "github.com/socvr/chatbot-go/pkg/store/gorm"
	"github.com/socvr/chatbot-go/pkg/store/memdb"
)

const (
	storePostgres = "postgres"
	storeMemory   = "memory"
)

// openedStore is a store plus what the CLI needs around it
type openedStore struct {
	store.Store
	seeder store.Seeder
	close  func() error
}

func openStore(ctx context.Context, kind string, cfg *config.ChatbotConfig, migrate bool, log *zap.Logger) (*openedStore, error) {
	switch kind {
	case storeMemory:
		st, err := memdb.NewStore()
		if err != nil {
			return nil, fmt.Errorf("failed to create memory store: %w", err)
		}
		log.Warn("using the in-memory store; nothing is persisted")
		return &openedStore{Store: st, seeder: st, close: func() error { return nil }}, nil

	case storePostgres, "":
		if migrate {
			log.Info("running database migrations")
			if err := runMigrations(); err != nil {
				return nil, fmt.Errorf("migration failed: %w", err)
			}
		}

		database, err := db.Connect(db.Config{LogLevel: cfg.LogLevel})
		if err != nil {
			return nil, err
		}
		st := gormstore.NewStore(database)
		if err := st.Ping(ctx); err != nil {
			return nil, fmt.Errorf("database is not reachable: %w", err)
		}
		closeDB := func() error {
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}
		return &openedStore{Store: st, seeder: st, close: closeDB}, nil

	default:
		return nil, fmt.Errorf("unknown store %q (want %s or %s)", kind, storePostgres, storeMemory)
	}
}

func seedStore(ctx context.Context, seeder store.Seeder, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := store.LoadFixture(ctx, seeder, f); err != nil {
		return fmt.Errorf("failed to load fixture %s: %w", path, err)
	}
	return nil
}

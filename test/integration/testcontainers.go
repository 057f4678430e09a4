package integration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	chatbotdb "github.com/socvr/chatbot-go/db"
	"github.com/socvr/chatbot-go/pkg/db"
	"github.com/socvr/chatbot-go/pkg/store"
	gormstore "github.com/socvr/chatbot-go/pkg/store/gorm"
	"github.com/socvr/chatbot-go/pkg/store/memdb"
)

const (
	backendMemory   = "memory"
	backendPostgres = "postgres"
)

// TestContext holds the resources shared by every scenario
type TestContext struct {
	Backend     string
	DB          *gorm.DB
	Container   testcontainers.Container
	DatabaseURL string
	HTTPClient  *http.Client
}

// backingStore is a store the steps can both seed and query
type backingStore interface {
	store.Store
	store.Seeder
}

// NewTestContext prepares the backend selected by the environment. The
// in-memory store is used unless INTEGRATION_TEST is set, in which case a
// PostgreSQL container is started and migrated.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	tc := &TestContext{
		Backend:    backendMemory,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
	if os.Getenv("INTEGRATION_TEST") == "" {
		return tc, nil
	}

	log.Println("Using PostgreSQL testcontainer")
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("chatbot_test"),
		tcpostgres.WithUsername("chatbot"),
		tcpostgres.WithPassword("chatbot"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := runMigrations(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	database, err := db.Connect(db.Config{URL: connStr})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	tc.Backend = backendPostgres
	tc.DB = database
	tc.Container = pgContainer
	tc.DatabaseURL = connStr
	return tc, nil
}

// NewStore returns an empty store for a scenario
func (tc *TestContext) NewStore(ctx context.Context) (backingStore, error) {
	if tc.Backend == backendMemory {
		st, err := memdb.NewStore()
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	err := tc.DB.WithContext(ctx).Exec(`
		TRUNCATE users, user_permissions, permission_requests, reviewed_items, audit_messages RESTART IDENTITY CASCADE
	`).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reset database: %w", err)
	}
	return gormstore.NewStore(tc.DB), nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.DB != nil {
		if sqlDB, err := tc.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

func runMigrations(dbURL string) error {
	m, err := chatbotdb.NewMigrate(dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

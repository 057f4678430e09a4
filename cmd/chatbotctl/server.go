package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/socvr/chatbot-go/pkg/audit"
	"github.com/socvr/chatbot-go/pkg/command"
	"github.com/socvr/chatbot-go/pkg/config"
	"github.com/socvr/chatbot-go/pkg/eligibility"
	"github.com/socvr/chatbot-go/pkg/logging"
	"github.com/socvr/chatbot-go/pkg/resolution"
	"github.com/socvr/chatbot-go/pkg/server"
	"github.com/socvr/chatbot-go/pkg/server/endpoints"
)

const shutdownTimeout = 10 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8080
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the chatbot webhook server",
	Long: `Run the chatbot webhook server.

The postgres store requires DATABASE_URL. By default, database migrations are
run on startup. Use --no-migrate to skip.

The memory store keeps everything in process and is meant for trying the bot
out; use --seed to load users and requests from a YAML fixture.

The config file is watched. Changes to the eligibility thresholds and the log
level apply to the running server without a restart.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := serverOptions{}
		opts.host, _ = cmd.Flags().GetString("bind-address")
		opts.port, _ = cmd.Flags().GetString("port")
		opts.store, _ = cmd.Flags().GetString("store")
		opts.seed, _ = cmd.Flags().GetString("seed")
		opts.noMigrate, _ = cmd.Flags().GetBool("no-migrate")

		if err := runServer(cmd.Context(), opts); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().String("store", storePostgres, "backing store (postgres or memory)")
	serverCmd.Flags().String("seed", "", "YAML fixture of users and requests to load on start")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

type serverOptions struct {
	host      string
	port      string
	store     string
	seed      string
	noMigrate bool
}

func runServer(ctx context.Context, opts serverOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.WebhookSecret == "" {
		return errors.New("CHATBOT_WEBHOOK_SECRET environment variable is required")
	}

	log, level, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	st, err := openStore(ctx, opts.store, cfg, !opts.noMigrate, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	if opts.seed != "" {
		if err := seedStore(ctx, st.seeder, opts.seed); err != nil {
			return err
		}
		log.Info("loaded fixture", zap.String("path", opts.seed))
	}

	auditor, closeAudit, err := newAuditor(cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	resolver := resolution.New(st.Store, eligibility.New(cfg.Thresholds()),
		resolution.WithLogger(log),
		resolution.WithAuditor(auditor),
	)
	dispatcher, err := command.NewDispatcher(st.Store,
		command.Builtins(command.Deps{Resolver: resolver, Store: st.Store}),
		command.WithLogger(log),
		command.WithAuditor(auditor),
	)
	if err != nil {
		return err
	}

	s := server.NewServer(st.Store, dispatcher, cfg, log, opts.host, opts.port)
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go watchConfig(ctx, cfg.ConfigFilePath(), resolver, level, log)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// watchConfig swaps in a new rule engine and log level whenever the config
// file changes. Other settings need a restart.
func watchConfig(ctx context.Context, path string, resolver *resolution.Resolver, level zap.AtomicLevel, log *zap.Logger) {
	err := config.Watch(ctx, path,
		func(next *config.ChatbotConfig) {
			resolver.SetEngine(eligibility.New(next.Thresholds()))
			level.SetLevel(logging.ParseLevel(next.LogLevel))
			log.Info("configuration reloaded",
				zap.String("path", path),
				zap.Any("thresholds", next.Thresholds()),
			)
		},
		func(err error) {
			log.Warn("ignoring configuration change", zap.Error(err))
		},
	)
	if err != nil {
		log.Warn("configuration is not watched", zap.Error(err))
	}
}

func newAuditor(cfg *config.ChatbotConfig, log *zap.Logger) (audit.Auditor, func(), error) {
	if !cfg.AuditEnabled {
		return audit.Discard, func() {}, nil
	}
	auditStore, err := audit.NewStore(cfg.AuditDatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	closeAudit := func() {
		if auditStore != nil {
			_ = auditStore.Close()
		}
	}
	return audit.New(audit.NewLogger(), auditStore, log), closeAudit, nil
}

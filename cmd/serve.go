package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvngu/signalstock/internal/archive"
	"github.com/mvngu/signalstock/internal/bus"
	"github.com/mvngu/signalstock/internal/config"
	"github.com/mvngu/signalstock/internal/gateway"
	"github.com/mvngu/signalstock/internal/identity"
	"github.com/mvngu/signalstock/internal/respond"
	"github.com/mvngu/signalstock/internal/router"
	"github.com/mvngu/signalstock/internal/secrets"
	"github.com/mvngu/signalstock/internal/signalcli"
	"github.com/mvngu/signalstock/internal/stocks"
	"github.com/mvngu/signalstock/internal/store"
	"github.com/mvngu/signalstock/internal/store/pg"
	"github.com/mvngu/signalstock/internal/store/sqlite"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook, command router, stock handler and sender bridge",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func runServe() {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := bus.Connect(cfg.Nats.URL)
	if err != nil {
		slog.Error("failed to connect to nats", "url", cfg.Nats.URL, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	bridge, err := buildBridge(ctx, cfg, conn)
	if err != nil {
		slog.Error("failed to build identity bridge", "error", err)
		os.Exit(1)
	}

	usage, err := openUsageStore(cfg)
	if err != nil {
		// Usage logging is advisory; the pipeline runs without it.
		slog.Warn("usage store unavailable, usage logging disabled", "error", err)
		usage = nil
	} else {
		defer usage.Close()
	}

	var responder respond.Responder
	if cfg.Signal.Responder == "signal" {
		responder = respond.NewQueueResponder(conn, cfg.Nats.ResponsesSubject)
	} else {
		responder = respond.LogResponder{}
	}

	rtr := router.New(conn, cfg.Nats.StockSubject, responder, usage, cfg.Router)
	provider := stocks.NewYahooProvider(cfg.Stocks.BaseURL,
		time.Duration(cfg.Stocks.RequestTimeoutSeconds)*time.Second)
	stockHandler := stocks.NewHandler(provider, responder)
	outConsumer := respond.NewConsumer(bridge)

	srv := gateway.New(cfg, conn, rtr, stockHandler, outConsumer, bridge)
	if err := srv.Run(ctx); err != nil {
		slog.Error("gateway stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

// buildBridge constructs the identity bridge on top of the JetStream buckets.
func buildBridge(ctx context.Context, cfg *config.Config, conn *bus.Conn) (*identity.Bridge, error) {
	configs, err := archive.NewObjectStore(ctx, conn.JetStream(), cfg.Nats.ConfigBucket)
	if err != nil {
		return nil, err
	}
	secretStore, err := secrets.NewKVStore(ctx, conn.JetStream(), cfg.Nats.SecretBucket)
	if err != nil {
		return nil, err
	}
	transport := signalcli.NewTransport(signalcli.NewExecRunner(cfg.Signal.CLIPath))
	return identity.NewBridge(transport, configs, secretStore), nil
}

// openUsageStore picks Postgres when a DSN is configured, SQLite otherwise.
func openUsageStore(cfg *config.Config) (store.UsageStore, error) {
	if cfg.Database.PostgresDSN != "" {
		slog.Info("usage store: postgres")
		return pg.Open(cfg.Database.PostgresDSN)
	}
	path := config.ExpandHome(cfg.Database.SQLitePath)
	slog.Info("usage store: sqlite", "path", path)
	return sqlite.Open(path)
}

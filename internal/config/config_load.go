package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       18990,
			EnableCORS: true,
		},
		Nats: NatsConfig{
			URL:              "nats://localhost:4222",
			MessagesSubject:  "signal.messages",
			StockSubject:     "stock.requests",
			ResponsesSubject: "signal.responses",
			ConfigBucket:     "signal-configs",
			SecretBucket:     "signal-secrets",
		},
		Database: DatabaseConfig{
			SQLitePath: "~/.signalstock/usage.db",
		},
		Stocks: StocksConfig{
			RequestTimeoutSeconds: 10,
		},
		Signal: SignalConfig{
			CLIPath:   "signal-cli",
			Responder: "log",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars.
// A missing file is not an error — defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	envBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	envStr("SIGNALSTOCK_HOST", &c.Server.Host)
	envInt("SIGNALSTOCK_PORT", &c.Server.Port)
	envBool("SIGNALSTOCK_ENABLE_CORS", &c.Server.EnableCORS)

	envStr("SIGNALSTOCK_NATS_URL", &c.Nats.URL)
	envStr("SIGNALSTOCK_CONFIG_BUCKET", &c.Nats.ConfigBucket)
	envStr("SIGNALSTOCK_SECRET_BUCKET", &c.Nats.SecretBucket)

	// DSN comes from environment only (secret, never in the config file).
	envStr("SIGNALSTOCK_POSTGRES_DSN", &c.Database.PostgresDSN)
	envStr("SIGNALSTOCK_SQLITE_PATH", &c.Database.SQLitePath)

	envBool("SIGNALSTOCK_GROUP_ACK", &c.Router.GroupAck)
	envBool("SIGNALSTOCK_DEDUPE", &c.Router.DedupeMessages)
	envInt("SIGNALSTOCK_MAX_COMMANDS_PER_MINUTE", &c.Router.MaxCommandsPerMinute)

	envStr("SIGNALSTOCK_STOCKS_BASE_URL", &c.Stocks.BaseURL)

	envStr("SIGNALSTOCK_SIGNAL_CLI", &c.Signal.CLIPath)
	envStr("SIGNALSTOCK_RESPONDER", &c.Signal.Responder)
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return home + path[1:]
	}
	return path
}

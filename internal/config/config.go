package config

import "fmt"

// Config is the root configuration for the signalstock pipeline.
type Config struct {
	Server   ServerConfig   `json:"server"`
	Nats     NatsConfig     `json:"nats"`
	Database DatabaseConfig `json:"database,omitempty"`
	Router   RouterConfig   `json:"router"`
	Stocks   StocksConfig   `json:"stocks"`
	Signal   SignalConfig   `json:"signal"`
}

// ServerConfig configures the HTTP surface (webhook, registration, sender).
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// EnableCORS answers OPTIONS pre-flights with permissive cross-origin
	// headers. Kept as a toggle because callers disagree on whether the
	// webhook should speak browser CORS at all.
	EnableCORS bool `json:"enable_cors"`
}

// NatsConfig configures the JetStream substrate carrying the pipeline queues,
// the identity-config blobs, and the phone-number secret.
type NatsConfig struct {
	URL string `json:"url"`

	MessagesSubject  string `json:"messages_subject"`
	StockSubject     string `json:"stock_subject"`
	ResponsesSubject string `json:"responses_subject"`

	ConfigBucket string `json:"config_bucket"` // ObjectStore bucket for identity archives
	SecretBucket string `json:"secret_bucket"` // KeyValue bucket for secrets
}

// DatabaseConfig configures the usage-log store.
// PostgresDSN is NEVER read from the config file (secret) — only from env
// SIGNALSTOCK_POSTGRES_DSN. When unset, usage rows go to a local SQLite file.
type DatabaseConfig struct {
	PostgresDSN string `json:"-"`
	SQLitePath  string `json:"sqlite_path,omitempty"`
}

// RouterConfig tunes command dispatch behavior.
type RouterConfig struct {
	// GroupAck sends a transient "Processing ..." reply before the final one
	// when the command arrived in a group chat. Cosmetic; off by default.
	GroupAck bool `json:"group_ack"`
	// DedupeMessages drops redelivered queue messages by message ID.
	// Off by default: duplicate replies are tolerated downstream.
	DedupeMessages bool `json:"dedupe_messages"`
	// MaxCommandsPerMinute caps commands per sender. 0 = unlimited (default).
	MaxCommandsPerMinute int `json:"max_commands_per_minute"`
}

// StocksConfig configures the market-data provider.
type StocksConfig struct {
	BaseURL               string `json:"base_url,omitempty"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// SignalConfig configures the signal-cli bridge.
type SignalConfig struct {
	CLIPath string `json:"cli_path"`
	// Responder selects the reply delivery path: "signal" publishes to the
	// responses queue and sends through the verified identity, "log" only
	// logs the reply text.
	Responder string `json:"responder"`
}

// Addr returns the host:port the HTTP server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

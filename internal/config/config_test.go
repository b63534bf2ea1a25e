package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 18990 {
		t.Errorf("default port = %d, want 18990", cfg.Server.Port)
	}
	if cfg.Nats.MessagesSubject != "signal.messages" {
		t.Errorf("messages subject = %q", cfg.Nats.MessagesSubject)
	}
	if cfg.Router.GroupAck {
		t.Error("group_ack should default to off")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	data := `{
		// comments are allowed
		server: { port: 9000 },
		router: { group_ack: true },
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SIGNALSTOCK_PORT", "9100")
	t.Setenv("SIGNALSTOCK_POSTGRES_DSN", "postgres://test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("env should win over file: port = %d, want 9100", cfg.Server.Port)
	}
	if !cfg.Router.GroupAck {
		t.Error("group_ack from file not applied")
	}
	if cfg.Database.PostgresDSN != "postgres://test" {
		t.Errorf("dsn = %q", cfg.Database.PostgresDSN)
	}
}

func TestExpandHome(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := ExpandHome("~/x/y")
	if got != filepath.Join(home, "x", "y") {
		t.Errorf("ExpandHome = %q", got)
	}
	if ExpandHome("/abs/path") != "/abs/path" {
		t.Error("absolute path should pass through")
	}
}

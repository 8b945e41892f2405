package main

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		server:     "ws://localhost:5000/ws",
		statusBind: "127.0.0.1",
		maxBackoff: 30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"secure server", func(c *Config) { c.server = "wss://cards.example.com/ws" }, true},
		{"named player", func(c *Config) { c.player = "player2" }, true},
		{"status port", func(c *Config) { c.statusPort = 8080 }, true},
		{"http scheme", func(c *Config) { c.server = "http://localhost:5000" }, false},
		{"no host", func(c *Config) { c.server = "ws:///ws" }, false},
		{"bad url", func(c *Config) { c.server = "ws://%zz" }, false},
		{"spaced player", func(c *Config) { c.player = "player 1" }, false},
		{"negative port", func(c *Config) { c.statusPort = -1 }, false},
		{"huge port", func(c *Config) { c.statusPort = 70000 }, false},
		{"negative attempts", func(c *Config) { c.maxAttempts = -3 }, false},
		{"zero backoff", func(c *Config) { c.maxBackoff = 0 }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.modify(cfg)

			err := cfg.validate()
			if tc.ok && err != nil {
				t.Fatalf("validate() = %v, want nil", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("validate() = nil, want error")
			}
		})
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("KNOCKBOX_SERVER", "wss://table.example.com/ws")
	t.Setenv("KNOCKBOX_STATUS_PORT", "9090")
	t.Setenv("KNOCKBOX_LEGACY_EVENTS", "true")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.server != "wss://table.example.com/ws" {
		t.Errorf("server = %q", cfg.server)
	}
	if cfg.statusPort != 9090 {
		t.Errorf("statusPort = %d", cfg.statusPort)
	}
	if !cfg.legacy {
		t.Error("legacy-events not read from the environment")
	}
	if !cfg.reconnect {
		t.Error("reconnect default lost")
	}
}

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.0 kB"},
		{1500, "1.5 kB"},
		{2_500_000, "2.5 MB"},
	}

	for _, tc := range tests {
		if got := humanReadableSize(tc.bytes); got != tc.want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
db:
  host: localhost
  port: "5432"
  username: bot
  name: birthdays
  password: secret
telegram:
  token: "123:abc"
  channel_id: -1001234
  admin_ids: [42, 77]
birthday:
  timezone: Europe/Berlin
  check_at: "00:00"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.ChannelID != -1001234 {
		t.Errorf("channel_id = %d", cfg.Telegram.ChannelID)
	}
	if !cfg.IsAdmin(42) || cfg.IsAdmin(43) {
		t.Error("admin list not honored")
	}
	if cfg.Birthday.UpcomingLimit != 5 {
		t.Errorf("default upcoming_limit = %d, want 5", cfg.Birthday.UpcomingLimit)
	}
	if cfg.Location() == nil || cfg.Location().String() != "Europe/Berlin" {
		t.Errorf("location = %v", cfg.Location())
	}
}

func TestLoad_MissingToken(t *testing.T) {
	path := writeConfig(t, `
db:
  host: localhost
  name: birthdays
telegram:
  channel_id: -100
`)
	if _, err := Load(path); err == nil {
		t.Fatal("want error for missing token")
	}
}

func TestLoad_BadTimezone(t *testing.T) {
	path := writeConfig(t, `
db:
  host: localhost
  name: birthdays
telegram:
  token: x
  channel_id: -100
birthday:
  timezone: Atlantis/Nowhere
`)
	if _, err := Load(path); err == nil {
		t.Fatal("want error for unknown timezone")
	}
}

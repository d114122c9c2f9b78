package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DB_TYPE", "DATABASE_DSN", "TELEGRAM_BOT_TOKEN", "QUIZ_EXAM_DURATION", "QUIZ_BOT_TOKEN"} {
		t.Setenv(key, "")
	}
}

// TestLoadConfigDefaults verifies defaults apply when no config file exists.
func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver != "sqlite3" {
		t.Fatalf("expected sqlite3 driver, got %q", cfg.Database.Driver)
	}
	if cfg.Exam.Duration != time.Hour {
		t.Fatalf("expected 60m exam, got %s", cfg.Exam.Duration)
	}
	if cfg.Exam.SingleChoice.Count != 30 || cfg.Exam.MultiChoice.Points != 2 {
		t.Fatalf("unexpected exam rules: %+v", cfg.Exam)
	}
	if cfg.Practice.DefaultUser != "student01" {
		t.Fatalf("expected default user student01, got %q", cfg.Practice.DefaultUser)
	}
}

// TestLoadConfigFileAndEnv verifies file values load and env overrides them.
func TestLoadConfigFileAndEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	payload := `database:
  driver: sqlite3
  dsn: /tmp/bank.db
exam:
  duration: 90m
  fill_blank:
    count: 5
    points: 1
practice:
  allow_repeats: true
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUIZ_EXAM_DURATION", "45m")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.DSN != "/tmp/bank.db" {
		t.Fatalf("expected dsn from file, got %q", cfg.Database.DSN)
	}
	if cfg.Exam.Duration != 45*time.Minute {
		t.Fatalf("expected env override 45m, got %s", cfg.Exam.Duration)
	}
	if cfg.Exam.FillBlank.Count != 5 || cfg.Exam.FillBlank.Points != 1 {
		t.Fatalf("unexpected fill blank rule: %+v", cfg.Exam.FillBlank)
	}
	if cfg.Exam.SingleChoice.Count != 30 {
		t.Fatalf("expected default single choice count, got %d", cfg.Exam.SingleChoice.Count)
	}
	if !cfg.Practice.AllowRepeats {
		t.Fatalf("expected allow_repeats from file")
	}
	if cfg.Bot.Token != "123:abc" {
		t.Fatalf("expected token from env, got %q", cfg.Bot.Token)
	}
}

// TestLoadConfigRejectsUnknownDriver verifies driver validation.
func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database:\n  driver: mysql\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(dir)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "mysql") {
		t.Fatalf("expected driver in error, got %q", err.Error())
	}
}

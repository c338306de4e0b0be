package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Claude.Model != "claude-sonnet-4-5-20250929" {
		t.Fatalf("unexpected default model: %s", cfg.Claude.Model)
	}
	if cfg.Claude.MaxConversationTurns != 50 {
		t.Fatalf("unexpected default max turns: %d", cfg.Claude.MaxConversationTurns)
	}
	if cfg.Audio.SampleRate != 16000 {
		t.Fatalf("unexpected default sample rate: %d", cfg.Audio.SampleRate)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
claude:
  max_tokens: 4096
workspaces:
  demo:
    label: Demo
    cwd: /tmp/demo
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Claude.MaxTokens != 4096 {
		t.Fatalf("expected max_tokens 4096, got %d", cfg.Claude.MaxTokens)
	}
	if cfg.Workspaces["demo"].Cwd != "/tmp/demo" {
		t.Fatalf("unexpected workspace cwd: %+v", cfg.Workspaces["demo"])
	}
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WT_CLAUDE__MAX_TOKENS", "2048")
	t.Setenv("WT_STT__ENABLED", "true")

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Claude.MaxTokens != 2048 {
		t.Fatalf("expected env override max_tokens 2048, got %d", cfg.Claude.MaxTokens)
	}
	if !cfg.STT.Enabled {
		t.Fatalf("expected STT enabled via env override")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	if got := expandPath("~/projects/foo"); got != filepath.Join(home, "projects/foo") {
		t.Fatalf("expandPath mismatch: %s", got)
	}
	if got := expandPath("/abs/path"); got != "/abs/path" {
		t.Fatalf("expandPath should leave absolute paths untouched: %s", got)
	}
}

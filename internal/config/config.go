// Package config loads and validates the gateway's runtime configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config is the root configuration for the walkie-talkie gateway.
type Config struct {
	Server     ServerConfig               `yaml:"server"`
	Claude     ClaudeConfig               `yaml:"claude"`
	STT        STTConfig                  `yaml:"stt"`
	TTS        TTSConfig                  `yaml:"tts"`
	Audio      AudioConfig                `yaml:"audio"`
	VAD        VADConfig                  `yaml:"vad"`
	Safety     SafetyConfig               `yaml:"safety"`
	Workspaces map[string]WorkspaceConfig `yaml:"workspaces"`
	ProjwsPath string                     `yaml:"projws_path"`
}

// ServerConfig configures the HTTP/WebSocket listener.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ClaudeConfig configures the LLM backend.
type ClaudeConfig struct {
	APIKey               string `yaml:"api_key"`
	Model                string `yaml:"model"`
	MaxTokens            int    `yaml:"max_tokens"`
	MaxConversationTurns int    `yaml:"max_conversation_turns"`
}

// STTConfig configures speech-to-text.
type STTConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"api_key"`
	ModelSize string `yaml:"model_size"`
	Language  string `yaml:"language"`
}

// TTSConfig configures text-to-speech.
type TTSConfig struct {
	Enabled bool    `yaml:"enabled"`
	APIKey  string  `yaml:"api_key"`
	Model   string  `yaml:"model"`
	Voice   string  `yaml:"voice"`
	Speed   float64 `yaml:"speed"`
}

// AudioConfig configures the expected wire audio format.
type AudioConfig struct {
	SampleRate      int `yaml:"sample_rate"`
	Channels        int `yaml:"channels"`
	ChunkDurationMs int `yaml:"chunk_duration_ms"`
}

// VADConfig holds voice activity detection settings. They are decoded and
// defaulted, but nothing in the server reads them or sends them to the
// client; the server does not run VAD itself.
type VADConfig struct {
	Threshold            float64 `yaml:"threshold"`
	MinSpeechDurationMs  int     `yaml:"min_speech_duration_ms"`
	MinSilenceDurationMs int     `yaml:"min_silence_duration_ms"`
}

// SafetyConfig configures the sandbox and command filter.
type SafetyConfig struct {
	CommandTimeout  int      `yaml:"command_timeout"`
	BlockedCommands []string `yaml:"blocked_commands"`
}

// WorkspaceConfig describes one sandboxed project a session can switch into.
type WorkspaceConfig struct {
	Label string `yaml:"label"`
	Cwd   string `yaml:"cwd"`
}

// Defaults mirrors the defaults the gateway falls back to when a field is
// left unset in config.yaml. These match the original walkie-talkie
// server's pydantic-settings defaults.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8765},
		Claude: ClaudeConfig{
			Model:                "claude-sonnet-4-5-20250929",
			MaxTokens:            8192,
			MaxConversationTurns: 50,
		},
		STT: STTConfig{
			ModelSize: "base.en",
			Language:  "en",
		},
		TTS: TTSConfig{
			Model: "gpt-4o-mini-tts",
			Voice: "nova",
			Speed: 1.0,
		},
		Audio: AudioConfig{
			SampleRate:      16000,
			Channels:        1,
			ChunkDurationMs: 100,
		},
		VAD: VADConfig{
			Threshold:            0.5,
			MinSpeechDurationMs:  250,
			MinSilenceDurationMs: 800,
		},
		Safety: SafetyConfig{
			CommandTimeout:  30,
			BlockedCommands: []string{},
		},
		Workspaces: map[string]WorkspaceConfig{},
	}
}

func (c *Config) applyDefaults() {
	d := Defaults()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Claude.Model == "" {
		c.Claude.Model = d.Claude.Model
	}
	if c.Claude.MaxTokens == 0 {
		c.Claude.MaxTokens = d.Claude.MaxTokens
	}
	if c.Claude.MaxConversationTurns == 0 {
		c.Claude.MaxConversationTurns = d.Claude.MaxConversationTurns
	}
	if c.STT.ModelSize == "" {
		c.STT.ModelSize = d.STT.ModelSize
	}
	if c.STT.Language == "" {
		c.STT.Language = d.STT.Language
	}
	if c.TTS.Model == "" {
		c.TTS.Model = d.TTS.Model
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = d.TTS.Voice
	}
	if c.TTS.Speed == 0 {
		c.TTS.Speed = d.TTS.Speed
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.Channels == 0 {
		c.Audio.Channels = d.Audio.Channels
	}
	if c.Audio.ChunkDurationMs == 0 {
		c.Audio.ChunkDurationMs = d.Audio.ChunkDurationMs
	}
	if c.VAD.Threshold == 0 {
		c.VAD.Threshold = d.VAD.Threshold
	}
	if c.VAD.MinSpeechDurationMs == 0 {
		c.VAD.MinSpeechDurationMs = d.VAD.MinSpeechDurationMs
	}
	if c.VAD.MinSilenceDurationMs == 0 {
		c.VAD.MinSilenceDurationMs = d.VAD.MinSilenceDurationMs
	}
	if c.Safety.CommandTimeout == 0 {
		c.Safety.CommandTimeout = d.Safety.CommandTimeout
	}
	if c.Workspaces == nil {
		c.Workspaces = map[string]WorkspaceConfig{}
	}
	for name, ws := range c.Workspaces {
		ws.Cwd = expandPath(ws.Cwd)
		c.Workspaces[name] = ws
	}
}

// expandPath expands a leading ~ to the user's home directory, matching
// the original WorkspaceConfig path validator.
func expandPath(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads config from path (WT_CONFIG env var or "config.yaml" when
// path is empty), applies WT_-prefixed environment overrides, injects API
// keys from ANTHROPIC_API_KEY/OPENAI_API_KEY when not set explicitly, and
// derives workspaces from ProjwsPath when none are configured.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = os.Getenv("WT_CONFIG")
	}
	if strings.TrimSpace(path) == "" {
		path = "config.yaml"
	}

	raw := map[string]any{}
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadRaw(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		raw = loaded
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	applyEnvOverrides(raw, "WT", os.Environ())

	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, err
	}

	if cfg.Claude.APIKey == "" {
		cfg.Claude.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.TTS.APIKey == "" {
		cfg.TTS.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.STT.APIKey == "" {
		cfg.STT.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg.applyDefaults()

	if len(cfg.Workspaces) == 0 && cfg.ProjwsPath != "" {
		workspaces, err := loadProjws(cfg.ProjwsPath)
		if err != nil {
			return nil, fmt.Errorf("load projws: %w", err)
		}
		cfg.Workspaces = workspaces
	}

	return cfg, nil
}

// applyEnvOverrides mutates raw in place from WT_-prefixed environment
// variables, using "__" as the nested-key delimiter (e.g.
// WT_CLAUDE__MAX_TOKENS=4096 sets claude.max_tokens). WT_CONFIG is skipped,
// since it names the config file rather than a config key.
func applyEnvOverrides(raw map[string]any, prefix string, environ []string) {
	envPrefix := prefix + "_"
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		if key == envPrefix+"CONFIG" {
			continue
		}
		path := strings.Split(strings.TrimPrefix(key, envPrefix), "__")
		setNestedValue(raw, path, value)
	}
}

func setNestedValue(raw map[string]any, path []string, value string) {
	if len(path) == 0 {
		return
	}
	key := strings.ToLower(path[0])
	if len(path) == 1 {
		raw[key] = coerceEnvValue(value)
		return
	}
	child, ok := raw[key].(map[string]any)
	if !ok {
		child = map[string]any{}
	}
	setNestedValue(child, path[1:], value)
	raw[key] = child
}

func coerceEnvValue(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}

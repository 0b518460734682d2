package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Input      string           `yaml:"input"`
	Transcribe TranscribeConfig `yaml:"transcribe"`
	Repair     RepairConfig     `yaml:"repair"`
	Audio      AudioConfig      `yaml:"audio"`
	Record     RecordConfig     `yaml:"record"`
	LogLevel   string           `yaml:"log_level"`
}

// TranscribeConfig holds speech-to-text settings.
type TranscribeConfig struct {
	Backend   string `yaml:"backend"` // "whisper"
	ModelPath string `yaml:"model_path"`
	Language  string `yaml:"language"`
	BeamSize  int    `yaml:"beam_size"` // 0 = backend default
	Translate bool   `yaml:"translate"`
	Threads   uint   `yaml:"threads"` // 0 = backend default
}

// RepairConfig holds settings for the unreadable-container repair attempt.
type RepairConfig struct {
	Enabled        bool   `yaml:"enabled"`
	FFmpegPath     string `yaml:"ffmpeg_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// GetTimeoutDuration returns the remux timeout as a time.Duration.
func (r *RepairConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// AudioConfig holds expectations about the input audio.
type AudioConfig struct {
	// ExpectedSampleRate is the rate the engine performs best at.
	// Inputs at other rates are transcribed anyway, with a warning.
	ExpectedSampleRate uint32 `yaml:"expected_sample_rate"`
}

// RecordConfig holds microphone capture settings.
type RecordConfig struct {
	SampleRate uint32 `yaml:"sample_rate"`
	Channels   uint32 `yaml:"channels"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "wavscribe")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// DefaultModelsDir returns the default directory for model artifacts.
func DefaultModelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "wavscribe", "models")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Input: "audio.wav",
		Transcribe: TranscribeConfig{
			Backend:   "whisper",
			ModelPath: filepath.Join(DefaultModelsDir(), "ggml-base.en.bin"),
			Language:  "en",
		},
		Repair: RepairConfig{
			Enabled:        true,
			FFmpegPath:     "ffmpeg",
			TimeoutSeconds: 120,
		},
		Audio: AudioConfig{
			ExpectedSampleRate: 16000,
		},
		Record: RecordConfig{
			SampleRate: 16000,
			Channels:   1,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in paths is expanded to the user's home
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Input = expandTilde(cfg.Input)
	cfg.Transcribe.ModelPath = expandTilde(cfg.Transcribe.ModelPath)
	cfg.Repair.FFmpegPath = expandTilde(cfg.Repair.FFmpegPath)

	return cfg, nil
}

// LoadOrDefault loads the config from the given path, or falls back to
// the default config path when one exists, or to built-in defaults. The
// returned source is the file that was read, or "" when built-in
// defaults were used.
func LoadOrDefault(path string) (*Config, string, error) {
	if path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}

	defaultPath := DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := Load(defaultPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, defaultPath, nil
	}

	return Default(), "", nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input must not be empty")
	}

	switch c.Transcribe.Backend {
	case "whisper", "":
	default:
		return fmt.Errorf("transcribe.backend must be \"whisper\", got %q", c.Transcribe.Backend)
	}

	if c.Transcribe.ModelPath == "" {
		return fmt.Errorf("transcribe.model_path must not be empty")
	}

	if c.Transcribe.BeamSize < 0 {
		return fmt.Errorf("transcribe.beam_size must be >= 0, got %d", c.Transcribe.BeamSize)
	}

	if c.Repair.Enabled {
		if c.Repair.FFmpegPath == "" {
			return fmt.Errorf("repair.ffmpeg_path must not be empty when repair is enabled")
		}
		if c.Repair.TimeoutSeconds <= 0 {
			return fmt.Errorf("repair.timeout_seconds must be > 0, got %d", c.Repair.TimeoutSeconds)
		}
	}

	if c.Audio.ExpectedSampleRate == 0 {
		return fmt.Errorf("audio.expected_sample_rate must be > 0")
	}

	if c.Record.SampleRate == 0 {
		return fmt.Errorf("record.sample_rate must be > 0")
	}

	switch c.Record.Channels {
	case 1, 2:
	default:
		return fmt.Errorf("record.channels must be 1 or 2, got %d", c.Record.Channels)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a config log level string to a slog.Level.
// Unknown values fall back to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

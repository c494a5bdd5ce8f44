package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const appName = "countdown"

type Config struct {
	DataDir       string
	DBPath        string
	StoreDir      string
	SettingsPath  string
	TemplatesPath string
	SummariesDir  string
	PluginsPath   string
	LogPath       string
	SessionID     string
	WebhookURL    string
	LogLevel      string
	SoundEnabled  bool
	TickInterval  time.Duration
}

// Env mirrors the COUNTDOWN_* environment variables.
type Env struct {
	DataDir      string        `env:"COUNTDOWN_DATA_DIR"`
	SessionID    string        `env:"COUNTDOWN_SESSION" envDefault:"default"`
	WebhookURL   string        `env:"COUNTDOWN_WEBHOOK_URL"`
	LogLevel     string        `env:"COUNTDOWN_LOG_LEVEL" envDefault:"warn"`
	SoundEnabled bool          `env:"COUNTDOWN_SOUND" envDefault:"true"`
	TickInterval time.Duration `env:"COUNTDOWN_TICK" envDefault:"1s"`
}

// ParseEnv loads Env from the process environment.
func ParseEnv() (Env, error) {
	var out Env
	if err := env.Parse(&out); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return out, nil
}

func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:       dataDir,
		DBPath:        filepath.Join(dataDir, "countdown.db"),
		StoreDir:      filepath.Join(dataDir, "store"),
		SettingsPath:  filepath.Join(dataDir, "settings.yaml"),
		TemplatesPath: filepath.Join(dataDir, "templates.yaml"),
		SummariesDir:  filepath.Join(dataDir, "summaries"),
		PluginsPath:   filepath.Join(dataDir, "plugins", "plugins.json"),
		LogPath:       filepath.Join(dataDir, "countdown.log"),
		SessionID:     "default",
		LogLevel:      "warn",
		SoundEnabled:  true,
		TickInterval:  time.Second,
	}, nil
}

// FromEnv builds a Config from the environment. A non-empty dataDir overrides
// COUNTDOWN_DATA_DIR.
func FromEnv(dataDir string) (Config, error) {
	e, err := ParseEnv()
	if err != nil {
		return Config{}, err
	}
	if dataDir == "" {
		dataDir = e.DataDir
	}
	if dataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve user config dir: %w", err)
		}
		dataDir = filepath.Join(base, appName)
	}
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionID = e.SessionID
	cfg.WebhookURL = e.WebhookURL
	cfg.LogLevel = e.LogLevel
	cfg.SoundEnabled = e.SoundEnabled
	if e.TickInterval > 0 {
		cfg.TickInterval = e.TickInterval
	}
	return cfg, nil
}

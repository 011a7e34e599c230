package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents runtime configuration for the service.
type Config struct {
	Server    ServerConfig              `json:"server"`
	History   HistoryConfig             `json:"history"`
	Auth      AuthConfig                `json:"auth"`
	Databases map[string]DatabaseConfig `json:"databases"`
	Redis     RedisConfig               `json:"redis"`
	Chat      ChatConfig                `json:"chat"`
	Providers map[string]ProviderConfig `json:"providers"`
}

type ServerConfig struct {
	Address     string `json:"address"`
	Development bool   `json:"development"`
}

// HistoryConfig selects the history backend. "file" stores one JSON
// document per scope under Dir; "sql" stores rows in the configured
// database.
type HistoryConfig struct {
	Backend string `json:"backend"`
	Dir     string `json:"dir"`
}

type AuthConfig struct {
	Enabled       bool `json:"enabled"`
	TokenTTLHours int  `json:"token_ttl_hours"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// ChatConfig names the completion provider used for replies.
type ChatConfig struct {
	Provider string `json:"provider"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

// Load reads configuration from the provided path (defaults to config.json).
// Relative storage paths are resolved against the config file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	baseDir := filepath.Dir(absPath)
	applyDefaults(&cfg, baseDir)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config, baseDir string) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":5001"
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = "file"
	}
	if cfg.History.Dir == "" {
		cfg.History.Dir = "data/history"
	}
	if !filepath.IsAbs(cfg.History.Dir) {
		cfg.History.Dir = filepath.Join(baseDir, cfg.History.Dir)
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	if cfg.Chat.Provider == "" {
		cfg.Chat.Provider = "openai"
	}
	for name, db := range cfg.Databases {
		if db.DSN != "" && db.DSN != ":memory:" && !filepath.IsAbs(db.DSN) {
			db.DSN = filepath.Join(baseDir, db.DSN)
			cfg.Databases[name] = db
		}
	}
}

func validate(cfg *Config) error {
	switch cfg.History.Backend {
	case "file", "sql":
	default:
		return fmt.Errorf("unsupported history backend: %s", cfg.History.Backend)
	}
	if _, ok := cfg.Providers[cfg.Chat.Provider]; !ok {
		return fmt.Errorf("provider %s not configured", cfg.Chat.Provider)
	}
	return nil
}

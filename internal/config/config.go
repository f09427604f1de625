// Package config manages the application configuration file. The config is a
// JSON document created with defaults on first load; API credentials are
// never written to disk and are read from the environment instead.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// DataConfig holds corpus and storage locations.
type DataConfig struct {
	Dir       string `json:"dir"`        // corpus source root
	DBPath    string `json:"db_path"`    // SQLite database file
	PhotosDir string `json:"photos_dir"` // public destination for voice photos
}

// EmbeddingConfig holds embedding provider settings. APIKey is populated from
// the OPENAI_API_KEY environment variable, not from the config file; when it
// is empty the service runs with the deterministic fallback embedder only.
type EmbeddingConfig struct {
	Endpoint  string `json:"endpoint"`
	ModelName string `json:"model_name"`
	Dimension int    `json:"dimension"`
	APIKey    string `json:"-"`
}

// SearchConfig holds similarity search settings.
type SearchConfig struct {
	DefaultLimit int `json:"default_limit"`
}

// InteractionsConfig holds the feedback forwarding settings. An empty
// WebhookURL disables forwarding. The URL is taken from the
// INTERACTIONS_WEBHOOK_URL environment variable when set.
type InteractionsConfig struct {
	WebhookURL string `json:"webhook_url"`
}

// Config is the root application configuration.
type Config struct {
	Server       ServerConfig       `json:"server"`
	Data         DataConfig         `json:"data"`
	Embedding    EmbeddingConfig    `json:"embedding"`
	Search       SearchConfig       `json:"search"`
	Interactions InteractionsConfig `json:"interactions"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: "0.0.0.0:8080"},
		Data: DataConfig{
			Dir:       "./data",
			DBPath:    "./data/askpalestine.db",
			PhotosDir: "./public/photos",
		},
		Embedding: EmbeddingConfig{
			Endpoint:  "https://api.openai.com/v1",
			ModelName: "text-embedding-3-small",
			Dimension: 1536,
		},
		Search:       SearchConfig{DefaultLimit: 5},
		Interactions: InteractionsConfig{},
	}
}

// ConfigManager loads and persists the configuration file.
type ConfigManager struct {
	path string
	mu   sync.RWMutex
	cfg  *Config
}

// NewConfigManager creates a ConfigManager for the given file path.
func NewConfigManager(path string) (*ConfigManager, error) {
	if path == "" {
		return nil, fmt.Errorf("config path must not be empty")
	}
	return &ConfigManager{path: path}, nil
}

// Load reads the config file, creating it with defaults if it does not exist.
// Environment overrides (OPENAI_API_KEY, INTERACTIONS_WEBHOOK_URL) are
// applied after the file is read.
func (cm *ConfigManager) Load() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cfg := DefaultConfig()

	data, err := os.ReadFile(cm.path)
	switch {
	case os.IsNotExist(err):
		if err := writeConfigFile(cm.path, cfg); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("failed to read config: %w", err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	cm.cfg = cfg
	return nil
}

// Get returns the current configuration. Load must have been called.
func (cm *ConfigManager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.cfg
}

// Save persists the current configuration to disk atomically.
func (cm *ConfigManager) Save() error {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.cfg == nil {
		return fmt.Errorf("config not loaded")
	}
	return writeConfigFile(cm.path, cm.cfg)
}

// applyDefaults fills zero-valued fields so a hand-edited partial config
// file still yields a usable configuration.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = def.Data.Dir
	}
	if cfg.Data.DBPath == "" {
		cfg.Data.DBPath = def.Data.DBPath
	}
	if cfg.Data.PhotosDir == "" {
		cfg.Data.PhotosDir = def.Data.PhotosDir
	}
	if cfg.Embedding.Endpoint == "" {
		cfg.Embedding.Endpoint = def.Embedding.Endpoint
	}
	if cfg.Embedding.ModelName == "" {
		cfg.Embedding.ModelName = def.Embedding.ModelName
	}
	if cfg.Embedding.Dimension <= 0 {
		cfg.Embedding.Dimension = def.Embedding.Dimension
	}
	if cfg.Search.DefaultLimit <= 0 {
		cfg.Search.DefaultLimit = def.Search.DefaultLimit
	}
}

func applyEnvOverrides(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	}
	if url := os.Getenv("INTERACTIONS_WEBHOOK_URL"); url != "" {
		cfg.Interactions.WebhookURL = url
	}
}

// writeConfigFile writes cfg as indented JSON via a temp file rename.
func writeConfigFile(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

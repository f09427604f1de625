package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func newTestManager(t *testing.T) (*ConfigManager, string) {
	t.Helper()
	path := tempConfigPath(t)
	cm, err := NewConfigManager(path)
	if err != nil {
		t.Fatalf("NewConfigManager: %v", err)
	}
	return cm, path
}

func TestNewConfigManager_EmptyPath(t *testing.T) {
	if _, err := NewConfigManager(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoad_CreatesDefaultOnMissing(t *testing.T) {
	cm, path := newTestManager(t)
	if err := cm.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// File should be created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	cfg := cm.Get()
	if cfg == nil {
		t.Fatal("Get returned nil")
	}

	// Verify defaults
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("Dimension = %d, want 1536", cfg.Embedding.Dimension)
	}
	if cfg.Embedding.ModelName != "text-embedding-3-small" {
		t.Errorf("ModelName = %q, want text-embedding-3-small", cfg.Embedding.ModelName)
	}
	if cfg.Search.DefaultLimit != 5 {
		t.Errorf("DefaultLimit = %d, want 5", cfg.Search.DefaultLimit)
	}
	if cfg.Data.DBPath != "./data/askpalestine.db" {
		t.Errorf("DBPath = %q, want ./data/askpalestine.db", cfg.Data.DBPath)
	}
	if cfg.Data.Dir != "./data" {
		t.Errorf("Dir = %q, want ./data", cfg.Data.Dir)
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	cm, path := newTestManager(t)

	custom := map[string]interface{}{
		"server": map[string]string{"addr": "127.0.0.1:9999"},
		"search": map[string]int{"default_limit": 10},
	}
	data, _ := json.Marshal(custom)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := cm.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := cm.Get()
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("Addr = %q, want 127.0.0.1:9999", cfg.Server.Addr)
	}
	if cfg.Search.DefaultLimit != 10 {
		t.Errorf("DefaultLimit = %d, want 10", cfg.Search.DefaultLimit)
	}
	// Unspecified fields fall back to defaults
	if cfg.Embedding.Dimension != 1536 {
		t.Errorf("Dimension = %d, want 1536", cfg.Embedding.Dimension)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	cm, path := newTestManager(t)
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := cm.Load(); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test-123")
	t.Setenv("INTERACTIONS_WEBHOOK_URL", "https://example.com/hook")

	cm, _ := newTestManager(t)
	if err := cm.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := cm.Get()
	if cfg.Embedding.APIKey != "sk-test-123" {
		t.Errorf("APIKey = %q, want sk-test-123", cfg.Embedding.APIKey)
	}
	if cfg.Interactions.WebhookURL != "https://example.com/hook" {
		t.Errorf("WebhookURL = %q, want https://example.com/hook", cfg.Interactions.WebhookURL)
	}
}

func TestAPIKeyNeverPersisted(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-secret")

	cm, path := newTestManager(t)
	if err := cm.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cm.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("config file is empty")
	}
	if strings.Contains(string(data), "sk-secret") {
		t.Error("API key was written to the config file")
	}
}

func TestSave_WithoutLoad(t *testing.T) {
	cm, _ := newTestManager(t)
	if err := cm.Save(); err == nil {
		t.Fatal("expected error for Save before Load")
	}
}

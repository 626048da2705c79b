// # internal/config/config_test.go
package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	content := `
base_url = "https://example.com/docs"
output_dir = "./site"
graph_dir = "images"
parent_dir = "../"
coloured_edges = true
save_graphs = true

[exclude]
dirs = ["vendor"]
entities = ["legacy_*"]

[export]
workers = 4

[render]
binary = "fdp"
rate_per_sec = 20.0
burst = 8
cache_size = 64
`
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BaseURL != "https://example.com/docs" {
		t.Errorf("Expected BaseURL https://example.com/docs, got %s", cfg.BaseURL)
	}
	if cfg.OutputDir != "./site" {
		t.Errorf("Expected OutputDir ./site, got %s", cfg.OutputDir)
	}
	if cfg.GraphDir != "images" {
		t.Errorf("Expected GraphDir images, got %s", cfg.GraphDir)
	}
	if len(cfg.Exclude.Entities) != 1 || cfg.Exclude.Entities[0] != "legacy_*" {
		t.Errorf("Unexpected Exclude.Entities: %v", cfg.Exclude.Entities)
	}
	if cfg.Export.Workers != 4 {
		t.Errorf("Expected 4 export workers, got %d", cfg.Export.Workers)
	}
	if cfg.Render.Binary != "fdp" {
		t.Errorf("Expected render binary fdp, got %s", cfg.Render.Binary)
	}
	if cfg.Render.CacheSize != 64 {
		t.Errorf("Expected cache size 64, got %d", cfg.Render.CacheSize)
	}
}

func TestLoadDefaults(t *testing.T) {
	content := `coloured_edges = false`
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	tmpfile.Write([]byte(content))
	tmpfile.Close()

	cfg, _ := Load(tmpfile.Name())
	if cfg.BaseURL != ".." {
		t.Errorf("Expected default base_url .., got %s", cfg.BaseURL)
	}
	if cfg.OutputDir != "./doc" {
		t.Errorf("Expected default output_dir ./doc, got %s", cfg.OutputDir)
	}
	if cfg.GraphDir != "graphs" {
		t.Errorf("Expected default graph_dir graphs, got %s", cfg.GraphDir)
	}
	if cfg.Render.Burst != 4 {
		t.Errorf("Expected default burst 4, got %d", cfg.Render.Burst)
	}
	if cfg.Render.CacheSize != 256 {
		t.Errorf("Expected default cache size 256, got %d", cfg.Render.CacheSize)
	}
	if cfg.ColouredEdges {
		t.Error("Expected coloured_edges false from file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.ColouredEdges {
		t.Error("Expected coloured_edges true by default")
	}
	if !cfg.SaveGraphs {
		t.Error("Expected save_graphs true by default")
	}
	if cfg.OutputDir != "./doc" {
		t.Errorf("Expected output_dir ./doc, got %s", cfg.OutputDir)
	}
}

func TestLoadError(t *testing.T) {
	_, err := Load("nonexistent.toml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}

	tmpfile, _ := os.CreateTemp("", "badconfig*.toml")
	defer os.Remove(tmpfile.Name())
	tmpfile.Write([]byte("bad = toml = format"))
	tmpfile.Close()

	_, err = Load(tmpfile.Name())
	if err == nil {
		t.Error("Expected error for malformed TOML")
	}
}

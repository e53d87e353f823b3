package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Server.Port)
	}
	if !cfg.Database.UseInMemory {
		t.Fatalf("expected in-memory database by default")
	}
	if len(cfg.Dictionary()) != 5 {
		t.Fatalf("dictionary categories = %d, want 5", len(cfg.Dictionary()))
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 9090
dataset:
  root: /data/conversations
  date: "2026-01-15"
categories:
  - id: compliance_violations
    display_name: Compliance Violations
    phrases: ["legal action"]
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Dataset.Root != "/data/conversations" || cfg.Dataset.Date != "2026-01-15" {
		t.Fatalf("dataset = %+v", cfg.Dataset)
	}
	dict := cfg.Dictionary()
	if len(dict) != 1 || dict[0].ID != "compliance_violations" {
		t.Fatalf("dictionary = %+v", dict)
	}
}

func TestLoad_InvalidCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
categories:
  - id: ""
    phrases: []
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

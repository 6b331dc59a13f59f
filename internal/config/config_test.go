// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/lak-lang/lakc/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("non-existent file", func(t *testing.T) {
		cfg, err := config.Load("non-existent-file.json", false)
		if err != nil {
			t.Errorf("expected no error for non-existent file, got %v", err)
		}
		if cfg == nil {
			t.Fatalf("expected non-nil config")
		}
		if cfg.TargetTriple != config.Default().TargetTriple {
			t.Errorf("expected default target triple, got %q", cfg.TargetTriple)
		}
	})

	t.Run("directory error", func(t *testing.T) {
		tmpDir := t.TempDir()
		_, err := config.Load(tmpDir, false)
		if err == nil {
			t.Errorf("expected error for directory, got nil")
		}
	})

	t.Run("empty config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.json")

		if err := os.WriteFile(configFile, []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		cfg, err := config.Load(configFile, false)
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if cfg.TargetTriple != config.Default().TargetTriple {
			t.Errorf("expected default target triple for an empty object, got %q", cfg.TargetTriple)
		}
	})

	t.Run("partial config", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.json")

		testConfig := config.Config{
			TargetTriple: "aarch64-apple-darwin",
			Codegen: config.Codegen_t{
				DisableOverflowChecks: true,
			},
		}
		data, err := json.Marshal(testConfig)
		if err != nil {
			t.Fatalf("failed to marshal test config: %v", err)
		}
		if err := os.WriteFile(configFile, data, 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		cfg, err := config.Load(configFile, false)
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if cfg.TargetTriple != "aarch64-apple-darwin" {
			t.Errorf("expected overridden target triple, got %q", cfg.TargetTriple)
		}
		if !cfg.Codegen.DisableOverflowChecks {
			t.Errorf("expected DisableOverflowChecks to be true")
		}
		// Field left unset in the file should keep the default.
		if cfg.Diagnostics.Style != config.Default().Diagnostics.Style {
			t.Errorf("expected default diagnostics style, got %q", cfg.Diagnostics.Style)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.json")

		if err := os.WriteFile(configFile, []byte("invalid json"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		cfg, err := config.Load(configFile, true)
		if err != nil {
			t.Errorf("expected no error for invalid JSON, got %v", err)
		}
		if cfg.TargetTriple != config.Default().TargetTriple {
			t.Errorf("expected default config for invalid JSON, got %q", cfg.TargetTriple)
		}
	})
}

func TestCopyNonZeroFields(t *testing.T) {
	t.Run("copy only non-zero fields", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.json")

		testConfig := config.Config{
			OptPipeline: "default<O2>",
		}
		data, err := json.Marshal(testConfig)
		if err != nil {
			t.Fatalf("failed to marshal test config: %v", err)
		}
		if err := os.WriteFile(configFile, data, 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		cfg, err := config.Load(configFile, true)
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if cfg.OptPipeline != "default<O2>" {
			t.Errorf("expected overridden opt pipeline, got %q", cfg.OptPipeline)
		}
		if cfg.Codegen.DisableOverflowChecks {
			t.Errorf("expected DisableOverflowChecks to remain false (default)")
		}
	})
}

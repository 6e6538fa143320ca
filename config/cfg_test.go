package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"pageflow/common"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Rendering.UnresolvedText != "?" {
		t.Errorf("UnresolvedText = %q, want %q", cfg.Rendering.UnresolvedText, "?")
	}
	if cfg.Document.PageCache.Mode != common.PageCacheModeNone {
		t.Errorf("PageCache.Mode = %v, want none", cfg.Document.PageCache.Mode)
	}
	if !cfg.Document.Outline || !cfg.Document.Destinations {
		t.Error("outline and destinations should be enabled by default")
	}
	if !strings.HasSuffix(cfg.Reporting.Destination, "pageflow-report-test.zip") {
		t.Errorf("report destination %q was not expanded", cfg.Reporting.Destination)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
document:
  output_name_template: '{{ .Title }}/{{ .ID }}'
  file_name_transliterate: true
  outline: false
  page_cache:
    mode: file
    dir: ` + tmpDir + `
rendering:
  indent: 0
  unresolved_text: "??"
logging:
  console:
    level: debug
  file:
    level: debug
    destination: ` + filepath.Join(tmpDir, "logs", "test.log") + `
    mode: append
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Document.OutputNameTemplate != "{{ .Title }}/{{ .ID }}" {
		t.Errorf("template should not be expanded, got %q", cfg.Document.OutputNameTemplate)
	}
	if !cfg.Document.FileNameTransliterate {
		t.Error("FileNameTransliterate not set")
	}
	if cfg.Document.Outline {
		t.Error("Outline should be disabled")
	}
	if !cfg.Document.Destinations {
		t.Error("Destinations should keep default value")
	}
	if cfg.Document.PageCache.Mode != common.PageCacheModeFile || cfg.Document.PageCache.Dir != tmpDir {
		t.Errorf("unexpected page cache config %+v", cfg.Document.PageCache)
	}
	if cfg.Rendering.Indent != 0 || cfg.Rendering.UnresolvedText != "??" {
		t.Errorf("unexpected rendering config %+v", cfg.Rendering)
	}
	if cfg.Logging.FileLogger.Mode != "append" {
		t.Errorf("FileLogger.Mode = %q, want append", cfg.Logging.FileLogger.Mode)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "logs")); err != nil {
		t.Errorf("log directory should be created by sanitizer: %v", err)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "invalid_yaml",
			content: `version: 1
document:
  outline: true
  invalid indent
`,
		},
		{
			name: "unknown_field",
			content: `version: 1
unknown_field: value
`,
		},
		{
			name: "invalid_version",
			content: `version: 2
`,
		},
		{
			name: "unknown_cache_mode",
			content: `version: 1
document:
  page_cache:
    mode: disk
`,
		},
		{
			name: "cache_dir_without_file_mode",
			content: `version: 1
document:
  page_cache:
    mode: memory
    dir: /tmp
`,
		},
		{
			name: "empty_unresolved_text",
			content: `version: 1
rendering:
  unresolved_text: ""
`,
		},
		{
			name: "indent_out_of_range",
			content: `version: 1
rendering:
  indent: 12
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := LoadConfiguration(configPath); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("nonexistent_file", func(t *testing.T) {
		if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	cfg := &Config{}
	if err := decode(data, cfg); err != nil {
		t.Fatalf("prepared config cannot be decoded: %v", err)
	}
	if _, err := finish(cfg); err != nil {
		t.Errorf("prepared config is not valid: %v", err)
	}
}

func TestDump(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Document.PageCache.Mode = common.PageCacheModeMemory

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	out := string(data)
	for _, want := range []string{"version: 1", "mode: memory", "unresolved_text:"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump does not contain %q:\n%s", want, out)
		}
	}

	loaded := &Config{}
	if err := decode(data, loaded); err != nil {
		t.Fatalf("dumped config cannot be loaded back: %v", err)
	}
	if _, err := finish(loaded); err != nil {
		t.Fatalf("dumped config is not valid: %v", err)
	}
	if loaded.Document.PageCache.Mode != common.PageCacheModeMemory {
		t.Errorf("cache mode lost in round trip: %v", loaded.Document.PageCache.Mode)
	}
}

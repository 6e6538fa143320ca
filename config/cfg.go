package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"pageflow/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	PageCacheConfig struct {
		Mode common.PageCacheMode `yaml:"mode"`
		// directory for cache database when mode is "file", system
		// temporary directory if empty
		Dir string `yaml:"dir,omitempty"`
	}

	DocumentConfig struct {
		OutputNameTemplate    string          `yaml:"output_name_template"`
		FileNameTransliterate bool            `yaml:"file_name_transliterate"`
		Outline               bool            `yaml:"outline"`
		Destinations          bool            `yaml:"destinations"`
		Extensions            bool            `yaml:"extensions"`
		PageCache             PageCacheConfig `yaml:"page_cache"`
	}

	RenderingConfig struct {
		FixZip         bool   `yaml:"fix_zip"`
		Indent         int    `yaml:"indent" validate:"min=0,max=8"`
		UnresolvedText string `yaml:"unresolved_text" validate:"required"`
		Compress       bool   `yaml:"compress"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig  `yaml:"document"`
		Rendering RenderingConfig `yaml:"rendering"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

// decode superimposes YAML data over cfg. Unknown keys are errors.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return nil
}

// finish sanitizes and validates complete configuration.
func finish(cfg *Config) (*Config, error) {
	if err := gencfg.Sanitize(cfg); err != nil {
		return nil, err
	}
	if err := gencfg.Validate(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Document.PageCache.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *PageCacheConfig) check() error {
	if len(c.Dir) > 0 && c.Mode != common.PageCacheModeFile {
		return fmt.Errorf("page cache directory %q requires page cache mode %q, got %q", c.Dir, common.PageCacheModeFile, c.Mode)
	}
	return nil
}

// LoadConfiguration expands embedded configuration template and superimposes
// values from file at path (if any) on top of it.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg := &Config{}
	if err := decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}

	if len(path) > 0 {
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}

	if cfg, err = finish(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

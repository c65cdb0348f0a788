package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tristendillon/checklist/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "checklist.yaml"

type Config struct {
	// Root is the library's top-level package directory.
	Root string `yaml:"root"`
	// Namespace overrides the library namespace; defaults to the base name of Root.
	Namespace   string      `yaml:"namespace,omitempty"`
	Walk        Walk        `yaml:"walk"`
	Source      Source      `yaml:"source"`
	Permissions Permissions `yaml:"permissions"`
	Generated   Generated   `yaml:"generated"`
	Registry    Registry    `yaml:"registry"`
	Cache       Cache       `yaml:"cache"`
	Watch       Watch       `yaml:"watch"`
}

type Walk struct {
	SkipDirs []string `yaml:"skip_dirs"`
	Exclude  []string `yaml:"exclude,omitempty"`
}

type Source struct {
	Extension string   `yaml:"extension"`
	Marker    string   `yaml:"marker"`
	TestDirs  []string `yaml:"test_dirs"`
}

type Permissions struct {
	Extensions []string `yaml:"extensions"`
}

type Generated struct {
	SourceExtension   string `yaml:"source_extension"`
	ArtifactExtension string `yaml:"artifact_extension"`
}

type Registry struct {
	MarkersOnly bool `yaml:"markers_only"`
}

type Cache struct {
	MaxEntries int `yaml:"max_entries"`
}

type Watch struct {
	Debounce time.Duration `yaml:"debounce"`
}

func Default() *Config {
	return &Config{
		Root: "skbio",
		Walk: Walk{
			SkipDirs: []string{"data", "__pycache__"},
		},
		Source: Source{
			Extension: ".py",
			Marker:    "__init__.py",
			TestDirs:  []string{"tests"},
		},
		Permissions: Permissions{
			Extensions: []string{".py", ".pyx", ".h", ".c"},
		},
		Generated: Generated{
			SourceExtension:   ".pyx",
			ArtifactExtension: ".c",
		},
		Cache: Cache{
			MaxEntries: 4096,
		},
		Watch: Watch{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Load reads the config at path. An empty path looks for checklist.yaml in
// the working directory and falls back to Default when there is none.
func Load(path string) (*Config, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working dir: %w", err)
		}
		candidate := filepath.Join(wd, FileName)
		if _, err := os.Stat(candidate); err != nil {
			logger.Debug("No config file found, using default config")
			return Default(), nil
		}
		path = candidate
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	logger.Debug("Config file found: %s", path)
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

// Parse decodes yaml on top of Default, so omitted keys keep their defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root must not be empty")
	}
	exts := map[string]string{
		"source.extension":             c.Source.Extension,
		"generated.source_extension":   c.Generated.SourceExtension,
		"generated.artifact_extension": c.Generated.ArtifactExtension,
	}
	for key, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%s must start with a dot, got %q", key, ext)
		}
	}
	for _, ext := range c.Permissions.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("permissions.extensions must start with a dot, got %q", ext)
		}
	}
	if c.Source.Marker == "" {
		return fmt.Errorf("source.marker must not be empty")
	}
	if c.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
	}
	return nil
}

// NamespaceFor returns the library namespace for the tree rooted at root.
func (c *Config) NamespaceFor(root string) string {
	if c.Namespace != "" {
		return c.Namespace
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(filepath.Clean(root))
	}
	return filepath.Base(abs)
}

// Save writes c as yaml to path. An existing file is only replaced when force is set.
func (c *Config) Save(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists", path)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

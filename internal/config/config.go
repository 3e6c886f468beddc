package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Embedding holds word2vec training settings.
type Embedding struct {
	Dim          int    `yaml:"dim"`
	Window       int    `yaml:"window"`
	MinCount     int    `yaml:"min_count"`
	Negative     int    `yaml:"negative"`
	Epochs       int    `yaml:"epochs"`
	Seed         uint64 `yaml:"seed"`
	Architecture string `yaml:"architecture"`
}

// Recommend holds query-time settings.
type Recommend struct {
	K          int `yaml:"k"`
	SampleSize int `yaml:"sample_size"`
}

// Config is the in-memory representation of ~/.vavi/vavi.yaml.
type Config struct {
	ModelDir    string    `yaml:"model_dir"`
	ImagesDir   string    `yaml:"images_dir"`
	CatalogPath string    `yaml:"catalog_path,omitempty"`
	LogLevel    string    `yaml:"log_level"`
	Embedding   Embedding `yaml:"embedding"`
	Recommend   Recommend `yaml:"recommend"`
}

// VaviDir returns the absolute path to ~/.vavi/.
func VaviDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".vavi"), nil
}

// ConfigPath returns the absolute path to ~/.vavi/vavi.yaml.
func ConfigPath() (string, error) {
	dir, err := VaviDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "vavi.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the configuration used when no vavi.yaml exists.
func DefaultConfig() (*Config, error) {
	dir, err := VaviDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		ModelDir:  filepath.Join(dir, "models"),
		ImagesDir: filepath.Join(dir, "images"),
		LogLevel:  "info",
		Embedding: Embedding{
			Dim:          100,
			Window:       5,
			MinCount:     1,
			Negative:     5,
			Epochs:       5,
			Seed:         1,
			Architecture: "cbow",
		},
		Recommend: Recommend{
			K:          5,
			SampleSize: 3,
		},
	}, nil
}

// Load reads and parses ~/.vavi/vavi.yaml. Keys missing from the file keep their
// defaults; environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing vavi.yaml yields the defaults.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg, err = DefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save marshals cfg and writes it to ~/.vavi/vavi.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case c.ModelDir == "":
		return errors.New("model_dir is empty")
	case c.Embedding.Dim <= 0:
		return fmt.Errorf("embedding.dim must be positive, got %d", c.Embedding.Dim)
	case c.Embedding.Window <= 0:
		return fmt.Errorf("embedding.window must be positive, got %d", c.Embedding.Window)
	case c.Embedding.MinCount != 1:
		return fmt.Errorf("embedding.min_count must be 1, got %d", c.Embedding.MinCount)
	case c.Embedding.Epochs < 1:
		return fmt.Errorf("embedding.epochs must be at least 1, got %d", c.Embedding.Epochs)
	case c.Recommend.K <= 0:
		return fmt.Errorf("recommend.k must be positive, got %d", c.Recommend.K)
	case c.Recommend.SampleSize <= 0:
		return fmt.Errorf("recommend.sample_size must be positive, got %d", c.Recommend.SampleSize)
	}
	return nil
}

// finish applies environment overrides and expands ~ in paths.
func finish(cfg *Config) error {
	overrides := []struct {
		key string
		dst *string
	}{
		{"VAVI_MODEL_DIR", &cfg.ModelDir},
		{"VAVI_IMAGES_DIR", &cfg.ImagesDir},
		{"VAVI_CATALOG_PATH", &cfg.CatalogPath},
		{"VAVI_LOG_LEVEL", &cfg.LogLevel},
	}
	for _, o := range overrides {
		v, err := GetConfigValue(o.key)
		if err != nil {
			return err
		}
		if v != "" {
			*o.dst = v
		}
	}
	seed, err := GetConfigValue("VAVI_SEED")
	if err != nil {
		return err
	}
	if seed != "" {
		n, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid VAVI_SEED %q: %w", seed, err)
		}
		cfg.Embedding.Seed = n
	}

	for _, p := range []*string{&cfg.ModelDir, &cfg.ImagesDir, &cfg.CatalogPath} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

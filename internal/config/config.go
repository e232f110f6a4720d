package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the project configuration file looked up in the
// documentation root.
const DefaultFileName = "vydoc.yaml"

// EnvDBPath overrides the database path when set.
const EnvDBPath = "VYDOC_DB_PATH"

// Config holds project-level build settings
type Config struct {
	// Workers is the number of parallel parse workers.
	Workers int `yaml:"workers"`

	// BatchSize is the number of documents persisted per transaction.
	BatchSize int `yaml:"batch_size"`

	// SourceExtensions lists the document file extensions to index.
	SourceExtensions []string `yaml:"source_extensions"`

	// DBPath is the SQLite database location. Empty means a per-project
	// database under the user cache directory.
	DBPath string `yaml:"db_path"`

	// AddContractNames controls whether rendered signatures show the
	// fully qualified name or just the local one.
	AddContractNames bool `yaml:"add_contract_names"`
}

// Default returns the configuration used when no vydoc.yaml is present.
func Default() *Config {
	return &Config{
		Workers:          runtime.NumCPU(),
		BatchSize:        50,
		SourceExtensions: []string{".rst", ".txt"},
		AddContractNames: true,
	}
}

// Load reads the configuration for a documentation root. A missing
// vydoc.yaml is not an error; defaults apply. VYDOC_DB_PATH takes
// precedence over the file's db_path.
func Load(rootPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(rootPath, DefaultFileName))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if env := os.Getenv(EnvDBPath); env != "" {
		cfg.DBPath = env
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", c.BatchSize)
	}
	if len(c.SourceExtensions) == 0 {
		return errors.New("source_extensions must not be empty")
	}
	return nil
}

// DatabasePath resolves the database location for a documentation root,
// creating the parent directory if needed.
func (c *Config) DatabasePath(rootPath string) (string, error) {
	if c.DBPath != "" {
		return c.DBPath, nil
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}

	dir := filepath.Join(cacheDir, "vydoc", "indices")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create index directory: %w", err)
	}

	name := filepath.Base(filepath.Clean(rootPath))
	if name == "." || name == string(filepath.Separator) {
		name = "default"
	}
	return filepath.Join(dir, name+".db"), nil
}

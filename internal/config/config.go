package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigEnv overrides the config file location when set
const ConfigEnv = "INVOICER_CONFIG"

type Config struct {
	// Storage settings
	Storage StorageConfig `yaml:"storage"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Seller info printed on exported documents
	Seller SellerConfig `yaml:"seller"`

	// Log settings
	Log LogConfig `yaml:"log"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlcipher" (encrypted) or "sqlite"
	Path   string `yaml:"path"`   // Path to the database file
}

type InvoiceConfig struct {
	NumberPrefix string `yaml:"number_prefix"` // Invoice number prefix (e.g., "INV")
	Currency     string `yaml:"currency"`      // ISO 4217 code used for display
	OutputDir    string `yaml:"output_dir"`    // Directory for exported files
}

type SellerConfig struct {
	Name    string `yaml:"name"`
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
	Email   string `yaml:"email"`
}

type LogConfig struct {
	Level      string `yaml:"level"` // debug, info, warn, error
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "invoicer")
}

// DefaultConfigPath returns $INVOICER_CONFIG or ~/.config/invoicer/config.yaml
func DefaultConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(ConfigEnv)); p != "" {
		return p
	}
	return filepath.Join(baseDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := baseDir()

	return &Config{
		Storage: StorageConfig{
			Driver: "sqlcipher",
			Path:   filepath.Join(dir, "invoicer.db"),
		},
		Invoice: InvoiceConfig{
			NumberPrefix: "INV",
			Currency:     "EGP",
			OutputDir:    filepath.Join(dir, "exports"),
		},
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(dir, "invoicer.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse YAML over the defaults so missing keys keep their default value
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for database, exports, logs)
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Storage.Path),
		c.Invoice.OutputDir,
	}
	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}

	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}

	return nil
}

package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mmcdole/swingset/internal/domain"
	"github.com/mmcdole/swingset/internal/geo"
	"github.com/mmcdole/swingset/internal/lifecycle"
	"github.com/spf13/viper"
)

const appName = "swingset"

// Config holds all application configuration
type Config struct {
	Storage   StorageConfig   `mapstructure:"storage"`
	Lifecycle LifecycleConfig `mapstructure:"lifecycle"`
	Home      HomeConfig      `mapstructure:"home"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// StorageConfig selects the storage driver and where it keeps its data
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // "bolt", "sqlite" or "memory"
	Path   string `mapstructure:"path"`
}

// LifecycleConfig holds the background loop intervals
type LifecycleConfig struct {
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
	AutoSaveInterval    time.Duration `mapstructure:"autosave_interval"`
}

// HomeConfig is the reference point for distance sorting
type HomeConfig struct {
	Coordinates string `mapstructure:"coordinates"` // "lat,lon"; empty disables distance
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultSort string `mapstructure:"default_sort"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Listen string `mapstructure:"listen"` // e.g. "127.0.0.1:9464"; empty disables
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: "bolt",
			Path:   filepath.Join(defaultDataPath(), "playgrounds.db"),
		},
		Lifecycle: LifecycleConfig{
			MaintenanceInterval: lifecycle.DefaultMaintenanceInterval,
			AutoSaveInterval:    lifecycle.DefaultAutoSaveInterval,
		},
		UI: UIConfig{
			DefaultSort: string(domain.SortByDateAdded),
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), appName+".log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// LoadConfig loads configuration from the default config directory and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigPath())
}

// LoadConfigFrom loads config.yaml from dir (a missing file is fine) and
// applies SWINGSET_* environment overrides, e.g. SWINGSET_STORAGE_DRIVER.
func LoadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Environment variable overrides
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(DefaultConfigPath(), cfg)
}

// SaveConfigTo writes cfg as dir/config.yaml with snake_case keys
func SaveConfigTo(dir string, cfg *Config) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, cfg)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// setDefaults registers every key so env overrides and Unmarshal see them
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.path", cfg.Storage.Path)

	v.SetDefault("lifecycle.maintenance_interval", cfg.Lifecycle.MaintenanceInterval.String())
	v.SetDefault("lifecycle.autosave_interval", cfg.Lifecycle.AutoSaveInterval.String())

	v.SetDefault("home.coordinates", cfg.Home.Coordinates)

	v.SetDefault("ui.default_sort", cfg.UI.DefaultSort)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	v.SetDefault("metrics.listen", cfg.Metrics.Listen)
}

// Validate checks values that would otherwise fail later at startup
func (c *Config) Validate() error {
	if _, err := c.SortKey(); err != nil {
		return fmt.Errorf("ui.default_sort: %w", err)
	}
	if _, err := c.HomePoint(); err != nil {
		return fmt.Errorf("home.coordinates: %w", err)
	}
	if c.Lifecycle.MaintenanceInterval < 0 || c.Lifecycle.AutoSaveInterval < 0 {
		return fmt.Errorf("lifecycle: intervals must not be negative")
	}
	return nil
}

// SortKey returns the configured default sort key
func (c *Config) SortKey() (domain.SortKey, error) {
	if c.UI.DefaultSort == "" {
		return domain.SortByDateAdded, nil
	}
	return domain.ParseSortKey(c.UI.DefaultSort)
}

// HomePoint returns the configured reference point, or nil when unset
func (c *Config) HomePoint() (*domain.Coordinates, error) {
	if strings.TrimSpace(c.Home.Coordinates) == "" {
		return nil, nil
	}
	p, err := geo.ParseCoordinates(c.Home.Coordinates)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// LifecycleOptions converts the lifecycle section for lifecycle.New
func (c *Config) LifecycleOptions() lifecycle.Options {
	return lifecycle.Options{
		MaintenanceInterval: c.Lifecycle.MaintenanceInterval,
		AutoSaveInterval:    c.Lifecycle.AutoSaveInterval,
	}
}

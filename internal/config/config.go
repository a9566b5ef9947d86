package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config application configuration structure
type Config struct {
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Admin   AdminConfig   `yaml:"admin" mapstructure:"admin"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
}

// StorageConfig mock store parameters
type StorageConfig struct {
	// Driver selects the persistence backend: "file" (JSON, default) or "sqlite".
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path points at an existing store. When empty a scratch path is derived
	// from ScratchDir, Prefix and the current test identifier.
	Path       string `yaml:"path" mapstructure:"path"`
	ScratchDir string `yaml:"scratch_dir" mapstructure:"scratch_dir"`
	Prefix     string `yaml:"prefix" mapstructure:"prefix"`
}

// LogConfig log configuration
type LogConfig struct {
	Level       string        `yaml:"level" mapstructure:"level"`
	FileLogging FileLogConfig `yaml:"file_logging" mapstructure:"file_logging"`
}

// FileLogConfig file log configuration
type FileLogConfig struct {
	Enable     bool   `yaml:"enable" mapstructure:"enable"`
	Path       string `yaml:"path" mapstructure:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
}

// AdminConfig admin HTTP API configuration
type AdminConfig struct {
	Enable bool   `yaml:"enable" mapstructure:"enable"`
	Port   int    `yaml:"port" mapstructure:"port"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// OutputConfig controls CLI output style
type OutputConfig struct {
	Mode    string `yaml:"mode" mapstructure:"mode"`
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
}

// LoadConfig load configuration
// If v is nil, a new viper instance will be created
func LoadConfig(configPath string, v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v)

	v.SetEnvPrefix("MOCKREST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("mockrest")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mockrest")
		v.AddConfigPath("/etc/mockrest")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Config file loaded: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	applyDefaults(&config, v)

	return &config, nil
}

// applyDefaults fills zero-value fields from viper, which carries the
// defaults as well as any values bound from command line flags.
func applyDefaults(cfg *Config, v *viper.Viper) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = v.GetString("storage.driver")
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = v.GetString("storage.path")
	}
	if cfg.Storage.ScratchDir == "" {
		cfg.Storage.ScratchDir = v.GetString("storage.scratch_dir")
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = v.GetString("storage.prefix")
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = v.GetString("log.level")
	}
	cfg.Log.FileLogging.Enable = v.GetBool("log.file_logging.enable")
	cfg.Log.FileLogging.Compress = v.GetBool("log.file_logging.compress")
	if cfg.Log.FileLogging.Path == "" {
		cfg.Log.FileLogging.Path = v.GetString("log.file_logging.path")
	}
	if cfg.Log.FileLogging.MaxSizeMB == 0 {
		cfg.Log.FileLogging.MaxSizeMB = v.GetInt("log.file_logging.max_size_mb")
	}
	if cfg.Log.FileLogging.MaxBackups == 0 {
		cfg.Log.FileLogging.MaxBackups = v.GetInt("log.file_logging.max_backups")
	}
	if cfg.Log.FileLogging.MaxAgeDays == 0 {
		cfg.Log.FileLogging.MaxAgeDays = v.GetInt("log.file_logging.max_age_days")
	}

	cfg.Admin.Enable = v.GetBool("admin.enable")
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = v.GetInt("admin.port")
	}
	if cfg.Admin.Path == "" {
		cfg.Admin.Path = v.GetString("admin.path")
	}

	if cfg.Output.Mode == "" {
		cfg.Output.Mode = v.GetString("output.mode")
	}
	cfg.Output.NoColor = v.GetBool("output.no_color")
}

// setDefaults set default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.scratch_dir", os.TempDir())
	v.SetDefault("storage.prefix", "site_test_rest")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file_logging.enable", false)
	v.SetDefault("log.file_logging.path", "./mockrest.log")
	v.SetDefault("log.file_logging.max_size_mb", 10)
	v.SetDefault("log.file_logging.max_backups", 5)
	v.SetDefault("log.file_logging.max_age_days", 30)
	v.SetDefault("log.file_logging.compress", true)

	v.SetDefault("admin.enable", false)
	v.SetDefault("admin.port", 38990)
	v.SetDefault("admin.path", "/api")

	v.SetDefault("output.mode", "console")
	v.SetDefault("output.no_color", false)
}

// Validate checks configuration invariants and normalizes defaults.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Driver)) {
	case "", "file", "json":
		c.Storage.Driver = "file"
	case "sqlite", "sqlite3":
		c.Storage.Driver = "sqlite"
	default:
		return fmt.Errorf("storage driver must be file or sqlite")
	}
	if strings.TrimSpace(c.Storage.ScratchDir) == "" {
		return fmt.Errorf("storage scratch_dir cannot be empty")
	}
	if strings.TrimSpace(c.Storage.Prefix) == "" {
		return fmt.Errorf("storage prefix cannot be empty")
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	if c.Log.FileLogging.Enable {
		if c.Log.FileLogging.Path == "" {
			return fmt.Errorf("log file path cannot be empty when file logging is enabled")
		}
		if c.Log.FileLogging.MaxSizeMB < 1 {
			return fmt.Errorf("log file max size must be at least 1MB")
		}
		if c.Log.FileLogging.MaxBackups < 0 {
			return fmt.Errorf("log file max backups cannot be negative")
		}
		if c.Log.FileLogging.MaxAgeDays < 0 {
			return fmt.Errorf("log file max age cannot be negative")
		}
	}

	if c.Admin.Enable {
		if c.Admin.Port < 1 || c.Admin.Port > 65535 {
			return fmt.Errorf("invalid admin port: %d (must be 1-65535)", c.Admin.Port)
		}
		if !strings.HasPrefix(c.Admin.Path, "/") {
			return fmt.Errorf("admin path must start with '/'")
		}
	}

	switch strings.ToLower(c.Output.Mode) {
	case "", "console", "json":
		if c.Output.Mode == "" {
			c.Output.Mode = "console"
		}
	default:
		return fmt.Errorf("output mode must be 'console' or 'json'")
	}

	return nil
}

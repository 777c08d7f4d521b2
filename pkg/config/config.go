package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	dserrors "github.com/yairfalse/driftscan/internal/errors"
)

// Config represents the complete driftscan configuration
type Config struct {
	Environment   string              `mapstructure:"environment"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Collectors    CollectorsConfig    `mapstructure:"collectors"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Retention     RetentionConfig     `mapstructure:"retention"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Output        OutputConfig        `mapstructure:"output"`
}

// StorageConfig contains report store configuration
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// CollectorsConfig contains all collector configurations
type CollectorsConfig struct {
	Terraform TerraformConfig `mapstructure:"terraform"`
	Docker    DockerConfig    `mapstructure:"docker"`
}

// TerraformConfig contains Terraform collector configuration
type TerraformConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Binary  string `mapstructure:"binary"`
	Dir     string `mapstructure:"dir"`
}

// DockerConfig contains Docker collector configuration
type DockerConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Binary     string `mapstructure:"binary"`
	NameFilter string `mapstructure:"name_filter"`
}

// NotificationsConfig contains webhook notification configuration
type NotificationsConfig struct {
	WebhookURL   string `mapstructure:"webhook_url"`
	AlwaysNotify bool   `mapstructure:"always_notify"`
}

// RetentionConfig contains report retention configuration
type RetentionConfig struct {
	Days int `mapstructure:"days"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting configuration
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "production",
		Storage: StorageConfig{
			Path: "~/.driftscan/drift.db",
		},
		Collectors: CollectorsConfig{
			Terraform: TerraformConfig{
				Enabled: true,
				Binary:  "terraform",
				Dir:     ".",
			},
			Docker: DockerConfig{
				Enabled: true,
				Binary:  "docker",
			},
		},
		Notifications: NotificationsConfig{
			WebhookURL:   "",
			AlwaysNotify: false,
		},
		Retention: RetentionConfig{
			Days: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format:  "table",
			NoColor: false,
		},
	}
}

// Load loads configuration from the given file, the default search
// paths and the environment. An explicit file that cannot be read is
// an error; a missing default file is not.
func Load(configFile string) (*Config, error) {
	config := DefaultConfig()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".driftscan"))
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("DRIFTSCAN")
	viper.AutomaticEnv()

	viper.BindEnv("environment", "DRIFTSCAN_ENVIRONMENT", "ENVIRONMENT")
	viper.BindEnv("storage.path", "DRIFTSCAN_DB_PATH")
	viper.BindEnv("notifications.webhook_url", "DRIFTSCAN_WEBHOOK_URL", "SLACK_WEBHOOK_URL")
	viper.BindEnv("logging.level", "DRIFTSCAN_LOG_LEVEL", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if configFile != "" {
			return nil, dserrors.ConfigFileError(configFile, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, dserrors.ConfigFileError(viper.ConfigFileUsed(), err)
		}
		// No config file is fine - defaults and environment apply.
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.ExpandPaths(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage path is required")
	}

	if c.Retention.Days <= 0 {
		return fmt.Errorf("retention days must be positive")
	}

	if !c.Collectors.Terraform.Enabled && !c.Collectors.Docker.Enabled {
		return fmt.Errorf("at least one collector must be enabled")
	}

	return nil
}

// ExpandPaths expands home directory paths
func (c *Config) ExpandPaths() error {
	var err error
	c.Storage.Path, err = expandPath(c.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to expand storage path: %w", err)
	}

	c.Collectors.Terraform.Dir, err = expandPath(c.Collectors.Terraform.Dir)
	if err != nil {
		return fmt.Errorf("failed to expand terraform dir: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}

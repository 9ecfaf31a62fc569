package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds the crashmon configuration
type Config struct {
	CrasherPath   string        `mapstructure:"crasher_path"`
	SocketDir     string        `mapstructure:"socket_dir"`
	Timeout       time.Duration `mapstructure:"timeout"`
	LogLevel      string        `mapstructure:"log_level"`
	ReportEnabled bool          `mapstructure:"report_enabled"`
	ReportFile    string        `mapstructure:"report_file"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	// Set defaults
	viper.SetDefault("crasher_path", "crasher")
	viper.SetDefault("socket_dir", os.TempDir())
	viper.SetDefault("timeout", 30*time.Second)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("report_enabled", true)
	viper.SetDefault("report_file", filepath.Join(getHomeDir(), ".crashmon", "report.log"))

	// Set config file location
	configDir := filepath.Join(getHomeDir(), ".crashmon")
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)

	// Read config file (ignore error if file doesn't exist)
	_ = viper.ReadInConfig() // nolint:errcheck // config file is optional

	// Override with environment variables
	viper.SetEnvPrefix("CRASHMON")
	viper.AutomaticEnv()

	// Map env var names to config keys (errors are unlikely and safe to ignore)
	_ = viper.BindEnv("crasher_path", "CRASHMON_CRASHER_PATH") // nolint:errcheck // errors are unlikely here
	_ = viper.BindEnv("socket_dir", "CRASHMON_SOCKET_DIR")     // nolint:errcheck // errors are unlikely here
	_ = viper.BindEnv("log_level", "CRASHMON_LOG_LEVEL")       // nolint:errcheck // errors are unlikely here
	_ = viper.BindEnv("timeout", "CRASHMON_TIMEOUT")           // nolint:errcheck // errors are unlikely here
	_ = viper.BindEnv("report_file", "CRASHMON_REPORT_FILE")   // nolint:errcheck // errors are unlikely here

	// Unmarshal into Config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Expand ~ in paths
	cfg.CrasherPath = expandPath(cfg.CrasherPath)
	cfg.SocketDir = expandPath(cfg.SocketDir)
	cfg.ReportFile = expandPath(cfg.ReportFile)

	return &cfg, nil
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home := getHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

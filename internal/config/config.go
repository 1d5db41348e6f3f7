package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds user preferences and server settings
type Config struct {
	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging

	// Client
	MirrorPath   string        `yaml:"mirror_path" json:"mirror_path"`     // Local mirror database
	ServerURL    string        `yaml:"server_url" json:"server_url"`       // Remote store base URL
	PollInterval time.Duration `yaml:"poll_interval" json:"poll_interval"` // Live subscription refresh period

	// Server
	ListenAddr  string        `yaml:"listen_addr" json:"listen_addr"`
	DatabaseURL string        `yaml:"database_url" json:"database_url"`
	PaletteSync bool          `yaml:"palette_sync" json:"palette_sync"` // Allow category settings documents
	SessionTTL  time.Duration `yaml:"session_ttl" json:"session_ttl"`
}

// Dir returns the ideabox home directory (~/.ideabox, or $IDEABOX_HOME)
func Dir() (string, error) {
	if dir := os.Getenv("IDEABOX_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ideabox"), nil
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	dir, _ := Dir()
	logPath, mirrorPath := "", ""
	if dir != "" {
		logPath = filepath.Join(dir, "logs", "ideabox.log")
		mirrorPath = filepath.Join(dir, "mirror.db")
	}

	return &Config{
		LogLevel:     getEnv("IDEABOX_LOG_LEVEL", "INFO"),
		LogFile:      getEnv("IDEABOX_LOG_FILE", logPath),
		LogConsole:   getEnv("IDEABOX_LOG_CONSOLE", "false") == "true",
		MirrorPath:   getEnv("IDEABOX_MIRROR", mirrorPath),
		ServerURL:    getEnv("IDEABOX_SERVER_URL", "http://localhost:8080"),
		PollInterval: getEnvDuration("IDEABOX_POLL_INTERVAL", 5*time.Second),
		ListenAddr:   getEnv("IDEABOX_LISTEN_ADDR", ":8080"),
		DatabaseURL:  getEnv("DATABASE_URL", "postgres://localhost:5432/ideabox?sslmode=disable"),
		PaletteSync:  getEnvBool("IDEABOX_PALETTE_SYNC", true),
		SessionTTL:   getEnvDuration("IDEABOX_SESSION_TTL", 30*24*time.Hour),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	parsed, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	parsed, err := time.ParseDuration(os.Getenv(key))
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

// Path returns the location of config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads config from config.yaml, falling back to defaults
func Load() (*Config, error) {
	configPath, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(configPath)
}

// LoadFile loads config from path. A missing file yields the defaults.
func LoadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}

	return cfg, nil
}

// Save saves config to config.yaml
func (c *Config) Save() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(configPath)
}

// SaveFile writes config to path
func (c *Config) SaveFile(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all contact-radar configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Directory DirectoryConfig `yaml:"directory"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Addr           string  `yaml:"addr"`
	SessionSecret  string  `yaml:"session_secret"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"` // 0 disables limiting
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// DirectoryConfig points at the workbook the directory is loaded from.
// An empty Workbook starts the service with an empty directory.
type DirectoryConfig struct {
	Workbook           string `yaml:"workbook"`
	ContactsSheet      string `yaml:"contacts_sheet"`
	OrganizationsSheet string `yaml:"organizations_sheet"`
}

type RankingConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

type JobsConfig struct {
	UploadDir string `yaml:"upload_dir"`
	OutputDir string `yaml:"output_dir"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":9595",
			SessionSecret:  "dev-session-secret-change-me",
			RateLimitRPS:   20,
			RateLimitBurst: 40,
		},
		Directory: DirectoryConfig{
			ContactsSheet:      "Contacts",
			OrganizationsSheet: "Organizations",
		},
		Ranking: RankingConfig{
			DefaultLimit: 5,
			MaxLimit:     100,
		},
		Jobs: JobsConfig{
			UploadDir: "uploads",
			OutputDir: "output",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults (a blank path skips the file), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if wb := os.Getenv("CONTACTS_WORKBOOK"); wb != "" {
		c.Directory.Workbook = wb
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		c.Server.SessionSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if limit := os.Getenv("NEAREST_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			c.Ranking.DefaultLimit = n
		}
	}
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.SessionSecret == "" {
		return fmt.Errorf("server.session_secret is required")
	}
	if c.Server.RateLimitRPS < 0 || c.Server.RateLimitBurst < 0 {
		return fmt.Errorf("server rate limit must not be negative")
	}
	if c.Ranking.DefaultLimit <= 0 {
		return fmt.Errorf("ranking.default_limit must be positive, got %d", c.Ranking.DefaultLimit)
	}
	if c.Ranking.MaxLimit < c.Ranking.DefaultLimit {
		return fmt.Errorf("ranking.max_limit (%d) is below default_limit (%d)", c.Ranking.MaxLimit, c.Ranking.DefaultLimit)
	}
	if c.Directory.ContactsSheet == "" {
		return fmt.Errorf("directory.contacts_sheet is required")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}

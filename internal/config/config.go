package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the huddle CLI.
type Config struct {
	DatabasePath string `split_words:"true"`
	ExportDir    string `split_words:"true"`
	LogLevel     string `split_words:"true"`
	LogFile      string `split_words:"true"`

	// IdleCheckInterval is how often the idle auto-lock watcher wakes up.
	IdleCheckInterval time.Duration `split_words:"true"`

	S3Bucket       string `split_words:"true"`
	S3Region       string `split_words:"true"`
	S3BaseEndpoint string `split_words:"true"`
	S3AccessKey    string `split_words:"true"`
	S3SecretKey    string `split_words:"true"`
	S3Prefix       string `split_words:"true"`

	// UploadURL is a WebDAV or presigned prefix exports are PUT under when
	// no bucket is configured.
	UploadURL string `split_words:"true"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "huddle.db"
	c.ExportDir = "exports"
	c.LogLevel = "warn"
	c.IdleCheckInterval = 15 * time.Second
	c.S3Region = "us-east-1"
}

// Load builds a Config from defaults, the JSON file named by -c/-config,
// HUDDLE_* environment variables and flags, in that order. args excludes
// the program name.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("config: database path is empty")
	}
	if c.ExportDir == "" {
		return fmt.Errorf("config: export dir is empty")
	}
	if c.IdleCheckInterval <= 0 {
		return fmt.Errorf("config: idle check interval must be positive, got %s", c.IdleCheckInterval)
	}
	return nil
}

// UploadEnabled reports whether exports should leave the machine.
func (c *Config) UploadEnabled() bool {
	return c.S3Bucket != "" || c.UploadURL != ""
}

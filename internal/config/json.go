package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/huddlekeeper/internal/flagx"
	"github.com/dmitrijs2005/huddlekeeper/internal/timex"
)

// jsonConfig is a DTO used only for JSON unmarshalling. Empty fields leave
// the current value alone.
type jsonConfig struct {
	DatabasePath      string         `json:"database_path"`
	ExportDir         string         `json:"export_dir"`
	LogLevel          string         `json:"log_level"`
	LogFile           string         `json:"log_file"`
	IdleCheckInterval timex.Duration `json:"idle_check_interval"`
	UploadURL         string         `json:"upload_url"`
	S3                struct {
		Bucket       string `json:"bucket"`
		Region       string `json:"region"`
		BaseEndpoint string `json:"base_endpoint"`
		AccessKey    string `json:"access_key"`
		SecretKey    string `json:"secret_key"`
		Prefix       string `json:"prefix"`
	} `json:"s3"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.ExportDir, jc.ExportDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.UploadURL, jc.UploadURL)
	setString(&cfg.S3Bucket, jc.S3.Bucket)
	setString(&cfg.S3Region, jc.S3.Region)
	setString(&cfg.S3BaseEndpoint, jc.S3.BaseEndpoint)
	setString(&cfg.S3AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3Prefix, jc.S3.Prefix)
	if jc.IdleCheckInterval.Duration != 0 {
		cfg.IdleCheckInterval = jc.IdleCheckInterval.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

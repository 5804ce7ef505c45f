package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// fileConfig is the on-disk JSON shape. Empty fields leave the current
// value untouched.
type fileConfig struct {
	DBPath     string `json:"db_path"`
	UploadDir  string `json:"upload_dir"`
	ListenAddr string `json:"listen_addr"`
	ServerURL  string `json:"server_url"`
	LogLevel   string `json:"log_level"`
	LogFormat  string `json:"log_format"`
	LogFile    string `json:"log_file"`
}

func parseJSON(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&c.DBPath, fc.DBPath)
	overlay(&c.UploadDir, fc.UploadDir)
	overlay(&c.ListenAddr, fc.ListenAddr)
	overlay(&c.ServerURL, fc.ServerURL)
	overlay(&c.LogLevel, fc.LogLevel)
	overlay(&c.LogFormat, fc.LogFormat)
	overlay(&c.LogFile, fc.LogFile)
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Package config resolves runtime settings for both the API server and the
// terminal client: built-in defaults, then a .env file and the process
// environment, then an optional JSON file, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sadopc/myway/internal/store"
)

// Config holds runtime settings.
//
// Fields:
//   - DBPath: SQLite database file.
//   - UploadDir: directory for uploaded resource files.
//   - ListenAddr: bind address for `myway serve`.
//   - ServerURL: when set, the terminal client talks to this API instead
//     of opening the database itself.
//   - LogLevel / LogFormat / LogFile: logging setup. An empty LogFile means
//     stderr for the server and a file next to the database for the TUI.
type Config struct {
	DBPath     string
	UploadDir  string
	ListenAddr string
	ServerURL  string
	LogLevel   string
	LogFormat  string
	LogFile    string
}

// LoadDefaults fills c with local development defaults.
func (c *Config) LoadDefaults() error {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return fmt.Errorf("default db path: %w", err)
	}
	c.DBPath = dbPath
	c.UploadDir = filepath.Join(filepath.Dir(dbPath), "uploads")
	c.ListenAddr = ":3001"
	c.ServerURL = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.LogFile = ""
	return nil
}

// Load builds a Config from args (without the program name).
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.LoadDefaults(); err != nil {
		return nil, err
	}

	envFile := lookupArg(args, "-env", "--env")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}
	applyEnv(cfg)

	if path := lookupArg(args, "-c", "--c", "-config", "--config"); path != "" {
		if err := parseJSON(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.ListenAddr = ":" + v
	}
	if v := os.Getenv("MYWAY_SERVER"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
}

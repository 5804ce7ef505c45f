package config

import (
	"flag"
	"io"
	"strings"
)

// parseFlags overlays command-line flags onto c.
//
//	-db string          SQLite database path
//	-uploads string     upload directory
//	-addr string        listen address for serve
//	-server string      API base URL for the terminal client
//	-log-level string   debug, info, warn, error
//	-log-format string  text or json
//	-log-file string    log destination
//	-c, -config string  JSON config file (read earlier)
//	-env string         .env file (read earlier)
func parseFlags(c *Config, args []string) error {
	fs := flag.NewFlagSet("myway", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.DBPath, "db", c.DBPath, "SQLite database path")
	fs.StringVar(&c.UploadDir, "uploads", c.UploadDir, "upload directory")
	fs.StringVar(&c.ListenAddr, "addr", c.ListenAddr, "listen address")
	fs.StringVar(&c.ServerURL, "server", c.ServerURL, "API base URL")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "log file")

	var ignored string
	fs.StringVar(&ignored, "c", "", "JSON config file")
	fs.StringVar(&ignored, "config", "", "JSON config file")
	fs.StringVar(&ignored, "env", "", ".env file")

	return fs.Parse(args)
}

// lookupArg returns the value of the first flag in names found in args,
// accepting both "-x value" and "-x=value".
func lookupArg(args []string, names ...string) string {
	for i, a := range args {
		for _, n := range names {
			if a == n && i+1 < len(args) {
				return args[i+1]
			}
			if v, ok := strings.CutPrefix(a, n+"="); ok {
				return v
			}
		}
	}
	return ""
}

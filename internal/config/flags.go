package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/huddlekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string   database file
//	-o string   export directory
//	-l string   log level
//
// Only these flags are looked at; flagx.FilterArgs drops the rest so -c and
// unknown arguments do not fail parsing.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-o", "-l"})

	fs := flag.NewFlagSet("huddle", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "database file")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "export directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

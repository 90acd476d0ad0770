package command

import (
	"flag"
	"io"
	"log/slog"

	"github.com/joeycumines/one-shot-planner/internal/config"
	"github.com/joeycumines/one-shot-planner/internal/logging"
)

// logFlags are the logging flags shared by the planning commands.
type logFlags struct {
	file  string
	level string
}

func (f *logFlags) setup(fs *flag.FlagSet) {
	fs.StringVar(&f.file, "log-file", "", "Write JSON logs to this file (rotated by size)")
	fs.StringVar(&f.level, "log-level", "", "Log level: debug, info, warn, error")
}

// resolveLogConfig builds a logger from flags and config. Flags win over
// config (and its env vars), which win over defaults. Without a log file,
// text records go to stderr. The caller must close the returned closer.
func resolveLogConfig(flags logFlags, cfg *config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	schema := config.DefaultSchema()

	levelStr := flags.level
	if levelStr == "" {
		levelStr = schema.Resolve(cfg, "log.level")
	}
	level, err := logging.ParseLevel(levelStr)
	if err != nil {
		return nil, nil, err
	}

	path := flags.file
	if path == "" {
		path = schema.Resolve(cfg, "log.file")
	}

	maxSizeMB := schema.ResolveInt(cfg, "log.max-size-mb")
	if maxSizeMB <= 0 {
		maxSizeMB = logging.DefaultMaxSizeMB
	}
	maxFiles := schema.ResolveInt(cfg, "log.max-files")
	if maxFiles < 0 {
		maxFiles = logging.DefaultMaxFiles
	}

	return logging.New(logging.Options{
		Level:     level,
		File:      path,
		MaxSizeMB: maxSizeMB,
		MaxFiles:  maxFiles,
		Fallback:  stderr,
	})
}

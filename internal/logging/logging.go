package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Level      string
	Format     string // "json" or "text"
	WithCaller bool
	// Out defaults to stderr.
	Out io.Writer
}

// Init configures the global zerolog logger.
func Init(cfg Config) error {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	var w io.Writer = out
	if cfg.Format == "text" {
		w = zerolog.ConsoleWriter{Out: out}
	}
	logger := zerolog.New(w).With().Timestamp()
	if cfg.WithCaller {
		logger = logger.Caller()
	}
	log.Logger = logger.Logger()

	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/datakit-go/datakit/util"
)

// Recognized encoding and destination names.
const (
	FormatJSON    = "json"
	FormatConsole = "console"

	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

// Config controls the level, encoding, and destination of a Logger.
type Config struct {
	Level   string `yaml:"level" mapstructure:"level"`
	Format  string `yaml:"format" mapstructure:"format"`
	Output  string `yaml:"output" mapstructure:"output"`
	NoColor bool   `yaml:"no_color" mapstructure:"no_color"`
}

// ApplyDefaults fills unset fields: info level, console encoding, stdout.
func (c *Config) ApplyDefaults() {
	c.Level = util.Coalesce(c.Level, "info")
	c.Format = util.Coalesce(c.Format, FormatConsole)
	c.Output = util.Coalesce(c.Output, OutputStdout)
}

// Validate reports the first unrecognized field value.
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Level)); err != nil || c.Level == "" {
		return fmt.Errorf("logging.level: unknown level %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case FormatJSON, FormatConsole:
	default:
		return fmt.Errorf("logging.format: want %q or %q, got %q", FormatJSON, FormatConsole, c.Format)
	}
	switch strings.ToLower(c.Output) {
	case OutputStdout, OutputStderr:
	default:
		return fmt.Errorf("logging.output: want %q or %q, got %q", OutputStdout, OutputStderr, c.Output)
	}
	return nil
}

// writer builds the destination a Logger writes to.
func (c *Config) writer() io.Writer {
	var out io.Writer = os.Stdout
	if strings.EqualFold(c.Output, OutputStderr) {
		out = os.Stderr
	}
	if strings.EqualFold(c.Format, FormatConsole) {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.TimeOnly, NoColor: c.NoColor}
	}
	return out
}

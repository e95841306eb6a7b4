package base

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every syncman subcommand.
type Command struct {
	UI  cli.Ui
	Log hclog.Logger

	// LogOutput receives log lines when a command switches to JSON logging.
	// Default: os.Stderr.
	LogOutput io.Writer
}

// ConfigureLogger applies the -log-level and -log-json flags and returns the
// logger the command should use.
func (c *Command) ConfigureLogger(level string, jsonFormat bool) (hclog.Logger, error) {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	if !jsonFormat {
		c.Log.SetLevel(lvl)
		return c.Log, nil
	}

	out := c.LogOutput
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       c.Log.Name(),
		Level:      lvl,
		JSONFormat: true,
		Output:     out,
	}), nil
}

package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var validLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Config defines console logging configuration.
type Config struct {
	// Log level, e.g. info, debug
	Level string `mapstructure:"level" yaml:"level"`
	// Logging format, either text or json
	Format string `mapstructure:"format" yaml:"format"`
}

// CommandLineFormatter prints only the message, for output meant to be read by a person at a terminal.
type CommandLineFormatter struct{}

func (f *CommandLineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return []byte(fmt.Sprintf("%s\n", entry.Message)), nil
}

// ConfigureCliLogging sets up message-only logging on stdout.
func ConfigureCliLogging() {
	stdLogger.SetFormatter(new(CommandLineFormatter))
	stdLogger.SetOutput(os.Stdout)
}

// Configure applies the given config to the global logger.
func Configure(c Config) error {
	if err := validate(c); err != nil {
		return err
	}
	level, err := logrus.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return errors.WithStack(err)
	}
	stdLogger.SetLevel(level)
	stdLogger.SetOutput(os.Stdout)
	switch c.Format {
	case "json":
		stdLogger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		stdLogger.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true})
	}
	return nil
}

// Validate reports an unknown level or format.
func (c Config) Validate() error {
	return validate(c)
}

func validate(c Config) error {
	if _, err := logrus.ParseLevel(strings.ToLower(c.Level)); err != nil {
		return errors.Errorf("unknown level: %s", c.Level)
	}
	if !validLogFormats[c.Format] {
		return errors.Errorf("unknown log format: %s. Valid formats are text, json", c.Format)
	}
	return nil
}

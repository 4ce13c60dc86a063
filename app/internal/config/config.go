package config

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config - всё, что задаётся из командной строки.
type Config struct {
	Driver   string
	DSN      string
	Table    string
	Addr     string
	Width    int
	Height   int
	LogLevel string
	LogFile  string
}

// Default: in-memory sqlite, таблица users, окно 80x24.
func Default() Config {
	return Config{
		Driver:   "sqlite",
		DSN:      ":memory:",
		Table:    "users",
		Addr:     ":8080",
		Width:    80,
		Height:   24,
		LogLevel: "info",
		LogFile:  "usersgrid.log",
	}
}

func (c Config) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres":
	default:
		return errors.Errorf("unsupported driver %q", c.Driver)
	}
	if c.DSN == "" {
		return errors.New("a DSN is required")
	}
	if c.Table == "" {
		return errors.New("a table is required")
	}
	if c.Width < 40 || c.Height < 12 {
		return errors.Errorf("window %dx%d is too small", c.Width, c.Height)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log level")
	}
	return nil
}

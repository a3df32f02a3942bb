package main

import (
	"io"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// Config holds defaults that flags and environment variables may override.
type Config struct {
	LogLevel string `toml:"log_level"`
	Workers  int    `toml:"workers"`
	Depth    int    `toml:"depth"`
	Color    bool   `toml:"color"`
	Format   string `toml:"format"`
}

func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Workers:  runtime.NumCPU(),
		Depth:    1,
		Color:    true,
		Format:   "json",
	}
}

// loadConfig reads a TOML config file over the defaults. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrapf(err, "could not load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.validate()
}

// applyFlags lets explicitly set global flags (or their environment variables) win over the
// config file.
func (cfg *Config) applyFlags(c *cli.Context) error {
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	return cfg.validate()
}

func (cfg *Config) validate() error {
	if _, err := levelOption(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	switch cfg.Format {
	case "json", "cbor":
	default:
		return errors.Errorf("unknown export format %q", cfg.Format)
	}
	return nil
}

func levelOption(name string) (level.Option, error) {
	switch strings.ToLower(name) {
	case "debug":
		return level.AllowDebug(), nil
	case "info":
		return level.AllowInfo(), nil
	case "warn":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	default:
		return nil, errors.Errorf("unknown log level %q", name)
	}
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	opt, err := levelOption(lvl)
	if err != nil {
		return nil, err
	}
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC), nil
}

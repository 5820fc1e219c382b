package config

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/amin-mir/gap-buffer/internal/config/loader"
	"github.com/amin-mir/gap-buffer/internal/demo"
	"github.com/amin-mir/gap-buffer/internal/engine/gapbuffer"
	"github.com/amin-mir/gap-buffer/internal/logging"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "GAPBUF_"

// Output formats for the demo.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds all gapbuf settings.
type Config struct {
	Buffer  BufferConfig  `toml:"buffer"`
	Logging LoggingConfig `toml:"logging"`
	Demo    DemoConfig    `toml:"demo"`
}

// BufferConfig configures new gap buffers.
type BufferConfig struct {
	GapSize int `toml:"gap_size"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// DemoConfig configures the reference scenario.
type DemoConfig struct {
	LabelPrefix string `toml:"label_prefix"`
	Count       int    `toml:"count"`
	Format      string `toml:"format"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Buffer:  BufferConfig{GapSize: gapbuffer.DefaultGapSize},
		Logging: LoggingConfig{Level: "info"},
		Demo:    DemoConfig{LabelPrefix: "h", Count: 7, Format: FormatText},
	}
}

// Load builds a Config from defaults and the given loaders, applied in
// order, then validates it.
func Load(loaders ...loader.Loader) (*Config, error) {
	merged := map[string]any{}
	for _, l := range loaders {
		layer, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, layer)
	}

	cfg := Default()
	if err := cfg.Apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads defaults, the TOML file at path (if it exists), the
// environment and then overrides, in that order.
func LoadFile(path string, overrides ...loader.Loader) (*Config, error) {
	loaders := []loader.Loader{}
	if path != "" {
		loaders = append(loaders, loader.NewTOMLLoader(path))
	}
	loaders = append(loaders, loader.NewEnvLoader(EnvPrefix))
	loaders = append(loaders, overrides...)
	return Load(loaders...)
}

// Apply overlays the known settings found in data. Unknown keys are ignored.
func (c *Config) Apply(data map[string]any) error {
	settings := []struct {
		path []string
		set  func(any) error
	}{
		{[]string{"buffer", "gap_size"}, intSetter(&c.Buffer.GapSize)},
		{[]string{"logging", "level"}, stringSetter(&c.Logging.Level)},
		{[]string{"demo", "label_prefix"}, stringSetter(&c.Demo.LabelPrefix)},
		{[]string{"demo", "count"}, intSetter(&c.Demo.Count)},
		{[]string{"demo", "format"}, stringSetter(&c.Demo.Format)},
	}

	for _, s := range settings {
		v, ok := loader.Lookup(data, s.path)
		if !ok {
			continue
		}
		if err := s.set(v); err != nil {
			return &SettingError{Path: joinPath(s.path), Value: v, Err: err}
		}
	}
	return nil
}

// Validate reports every setting outside its allowed values.
func (c *Config) Validate() error {
	var errs ValidationErrors
	invalid := func(path string, value any, reason string) {
		errs = append(errs, &SettingError{
			Path:  path,
			Value: value,
			Err:   fmt.Errorf("%w: %s", ErrValidationFailed, reason),
		})
	}

	if c.Buffer.GapSize < 1 {
		invalid("buffer.gap_size", c.Buffer.GapSize, "must be at least 1")
	}
	if _, ok := logging.LookupLogLevel(c.Logging.Level); !ok {
		invalid("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}
	if c.Demo.Count < demo.MinCount {
		invalid("demo.count", c.Demo.Count, fmt.Sprintf("must be at least %d", demo.MinCount))
	}
	if c.Demo.Format != FormatText && c.Demo.Format != FormatJSON {
		invalid("demo.format", c.Demo.Format, "must be text or json")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// WriteTOML writes the settings as a TOML document.
func (c *Config) WriteTOML(w io.Writer) error {
	enc := toml.NewEncoder(w)
	return enc.Encode(c)
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() logging.LogLevel {
	return logging.ParseLogLevel(c.Logging.Level)
}

func intSetter(dst *int) func(any) error {
	return func(v any) error {
		switch n := v.(type) {
		case int64:
			*dst = int(n)
		case int:
			*dst = n
		case float64:
			if n != float64(int(n)) {
				return fmt.Errorf("%w: %v is not an integer", ErrTypeMismatch, n)
			}
			*dst = int(n)
		case string:
			i, err := strconv.Atoi(n)
			if err != nil {
				return fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, n)
			}
			*dst = i
		default:
			return fmt.Errorf("%w: want integer, got %T", ErrTypeMismatch, v)
		}
		return nil
	}
}

func stringSetter(dst *string) func(any) error {
	return func(v any) error {
		switch s := v.(type) {
		case string:
			*dst = s
		case int64, bool:
			// A TOML value such as label_prefix = 1 is decoded as a number.
			*dst = fmt.Sprint(s)
		default:
			return fmt.Errorf("%w: want string, got %T", ErrTypeMismatch, v)
		}
		return nil
	}
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}

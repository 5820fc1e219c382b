package loader

import (
	"os"
	"strings"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string              // e.g. "GAPBUF_"
	mapping map[string][]string // env var -> config path
	environ func() []string
}

// NewEnvLoader creates an environment loader with the default mapping.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(prefix),
		environ: os.Environ,
	}
}

func defaultEnvMapping(prefix string) map[string][]string {
	return map[string][]string{
		prefix + "GAP_SIZE":          {"buffer", "gap_size"},
		prefix + "LOG_LEVEL":         {"logging", "level"},
		prefix + "DEMO_FORMAT":       {"demo", "format"},
		prefix + "DEMO_COUNT":        {"demo", "count"},
		prefix + "DEMO_LABEL_PREFIX": {"demo", "label_prefix"},
	}
}

// AddMapping maps an environment variable to a dot-separated config path.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = strings.Split(configPath, ".")
}

// Load reads prefixed variables. Mapped variables land at their mapped
// path; others map GAPBUF_SECTION_SOME_KEY to section.some_key.
// Values stay strings; package config converts them to the type of the
// setting. Empty values count as set.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
			if path == nil {
				continue
			}
		}
		setByPath(config, path, value)
	}

	return config, nil
}

// envToPath converts GAPBUF_DEMO_LABEL_PREFIX to [demo label_prefix].
func (l *EnvLoader) envToPath(env string) []string {
	section, key, ok := strings.Cut(strings.TrimPrefix(env, l.prefix), "_")
	if !ok || section == "" || key == "" {
		return nil
	}
	return []string{strings.ToLower(section), strings.ToLower(key)}
}

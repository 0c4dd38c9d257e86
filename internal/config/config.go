package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/dshills/follow/internal/config/loader"
)

// includeDepth bounds nested @include directives in config files.
const includeDepth = 8

// Config is the merged view of all configuration layers.
type Config struct {
	mu   sync.RWMutex
	data map[string]any

	// configErrors holds type errors met while reading sections, first
	// error per path.
	configErrors map[string]error
}

// New merges layers, lowest priority first, into a Config. The layers are
// copied, never modified.
func New(layers ...map[string]any) *Config {
	data := make(map[string]any)
	for _, l := range layers {
		data = loader.DeepMerge(data, loader.Clone(l))
	}
	return &Config{data: data}
}

// Default returns the built-in defaults layer.
func Default() map[string]any {
	return map[string]any{
		"follow": map[string]any{
			"path":         "",
			"lines":        10,
			"readAll":      false,
			"pollInterval": "1s",
			"bufferLength": 4096,
			"notify":       false,
		},
		"logging": map[string]any{
			"level":  "info",
			"format": "text",
			"file":   "",
		},
		"output": map[string]any{
			"sink":   SinkStdout,
			"prefix": false,
			"color":  ColorAuto,
			"kafka": map[string]any{
				"brokers":      []any{},
				"topic":        "",
				"writeTimeout": "10s",
			},
		},
	}
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is a TOML or YAML config file. Empty means none; a named file
	// that does not exist is an error.
	File string

	// EnvFile is a dotenv file. A missing file is skipped.
	// Default: ".env"
	EnvFile string

	// Overrides is the highest priority layer, usually built from flags
	// with loader.SetByPath.
	Overrides map[string]any

	// FS reads the config file.
	// Default: the OS file system
	FS loader.FileSystem
}

// Load builds a Config from defaults, the config file, the dotenv file,
// the environment and the overrides.
func Load(opts LoadOptions) (*Config, error) {
	layers := []map[string]any{Default()}

	if opts.File != "" {
		fsys := opts.FS
		if fsys == nil {
			fsys = loader.DefaultFS()
		}
		if _, err := fsys.Stat(opts.File); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, opts.File)
			}
			return nil, fmt.Errorf("checking config file %s: %w", opts.File, err)
		}
		data, err := loader.LoadWithIncludes(loader.ForPath(fsys, opts.File), opts.File, includeDepth)
		if err != nil {
			return nil, err
		}
		layers = append(layers, data)
	}

	env := loader.NewEnvLoader(loader.EnvPrefix)

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := readDotenv(envFile)
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		layers = append(layers, env.LoadVars(dotenv))
	}

	envData, err := env.Load()
	if err != nil {
		return nil, err
	}
	layers = append(layers, envData, opts.Overrides)

	return New(layers...), nil
}

func readDotenv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return vars, nil
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.GetByPath(c.data, path)
}

// Set sets a value at the given path.
func (c *Config) Set(path string, value any) error {
	if path == "" || strings.HasPrefix(path, ".") || strings.HasSuffix(path, ".") {
		return fmt.Errorf("invalid setting path %q", path)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	loader.SetByPath(c.data, path, value)
	return nil
}

// Merged returns a copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return loader.Clone(c.data)
}

// GetString returns a string value at the given path. Numbers and
// booleans are formatted back to text, since YAML and TOML read an
// unquoted 20261018 or 42 as a number.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(val), nil
	}
	return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
}

// GetInt returns an integer value at the given path. Floats are accepted
// when they hold a whole number.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val == float64(int(val)) {
			return int(val), nil
		}
	}
	return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, ErrSettingNotFound
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration at the given path. Strings use
// time.ParseDuration syntax; bare numbers are seconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, ErrSettingNotFound
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("string %q", val)}
		}
		return d, nil
	case int:
		return time.Duration(val) * time.Second, nil
	case int64:
		return time.Duration(val) * time.Second, nil
	case float64:
		return time.Duration(val * float64(time.Second)), nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// GetStringSlice returns a string slice at the given path. A single string
// is split on commas, as environment variables carry lists that way.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, ErrSettingNotFound
	}

	switch val := v.(type) {
	case []string:
		return val, nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
			}
			result[i] = s
		}
		return result, nil
	case string:
		var result []string
		for part := range strings.SplitSeq(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				result = append(result, part)
			}
		}
		return result, nil
	default:
		return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
	}
}

// ConfigErrors returns the type errors met while reading sections.
func (c *Config) ConfigErrors() map[string]error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.configErrors == nil {
		return nil
	}
	return maps.Clone(c.configErrors)
}

// ClearConfigErrors clears any stored configuration errors.
func (c *Config) ClearConfigErrors() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configErrors = nil
}

// recordConfigError keeps the first error seen for path.
func (c *Config) recordConfigError(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.configErrors == nil {
		c.configErrors = make(map[string]error)
	}
	if _, exists := c.configErrors[path]; !exists {
		c.configErrors[path] = err
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case time.Duration:
		return "duration"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

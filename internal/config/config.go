package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fresh-editor/fresh/internal/config/layer"
	"github.com/fresh-editor/fresh/internal/config/loader"
)

// Config provides unified, layered access to Fresh's configuration (spec
// §2.3): built-in defaults, a project TOML file, and CLI flag overrides,
// merged by field presence with CLI taking precedence.
type Config struct {
	mu sync.RWMutex

	layers *layer.Manager

	projectConfigDir string

	cliOverrides map[string]any
}

// Option configures a Config instance.
type Option func(*Config)

// WithProjectConfigDir sets the directory a project config file (named
// config.toml) is loaded from.
func WithProjectConfigDir(dir string) Option {
	return func(c *Config) {
		c.projectConfigDir = dir
	}
}

// WithCLIOverrides sets the outermost layer from parsed CLI flags (spec §6:
// working-directory, config path, log-level overrides), keyed by the same
// dotted setting paths Get/Set use.
func WithCLIOverrides(overrides map[string]any) Option {
	return func(c *Config) {
		c.cliOverrides = overrides
	}
}

// New creates a new Config instance with the given options.
func New(opts ...Option) *Config {
	c := &Config{
		layers: layer.NewManager(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load loads the defaults, project file, and CLI override layers, in
// ascending priority order.
func (c *Config) Load(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d := layer.NewLayerWithData("defaults", layer.SourceBuiltin, layer.PriorityBuiltin, defaultConfig())
	c.layers.AddLayer(d)

	if c.projectConfigDir != "" {
		if err := c.loadProjectSettings(); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if len(c.cliOverrides) > 0 {
		cli := layer.NewLayerWithData("cli", layer.SourceArgs, layer.PriorityArgs, c.cliOverrides)
		c.layers.AddLayer(cli)
	}

	return nil
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	merged := c.layers.Merge()
	return layer.GetByPath(merged, path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", ErrSettingNotFound
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
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
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
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

// Set sets a value at the given path in the project layer (or creates it,
// for settings changed at runtime without a backing file).
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	l := c.layers.GetLayer("project")
	if l == nil {
		l = layer.NewLayer("project", layer.SourceWorkspace, layer.PriorityWorkspace)
		c.layers.AddLayer(l)
	}
	layer.SetByPath(l.Data, path, value)
	c.layers.Invalidate()
	return nil
}

// Merged returns the fully merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Merge()
}

// loadProjectSettings loads <projectConfigDir>/config.toml, if present.
func (c *Config) loadProjectSettings() error {
	settingsPath := filepath.Join(c.projectConfigDir, "config.toml")

	tomlLoader := loader.NewTOMLLoader(settingsPath)
	data, err := tomlLoader.Load()
	if err != nil {
		return err
	}
	if data == nil {
		return os.ErrNotExist
	}

	l := layer.NewLayerWithData("project", layer.SourceWorkspace, layer.PriorityWorkspace, data)
	c.layers.AddLayer(l)
	return nil
}

// defaultConfig returns Fresh's built-in default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"tabWidth":   4,
			"lineEnding": "lf",
		},
		"view": map[string]any{
			"textWidth": 0, // 0 selects no-wrap mode (spec 4.F)
		},
		"logging": map[string]any{
			"level": "info",
		},
		"plugin": map[string]any{
			"enabled": true,
		},
	}
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case []string:
		return "[]string"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return "unknown"
	}
}
